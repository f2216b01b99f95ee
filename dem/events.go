// This file contains the typed game events the parser emits for well-known
// event names. Each is materialized from the raw key mapping.

package dem

import "github.com/cskit/demparse/dem/demcore"

// PlayerDeath models the player_death event.
type PlayerDeath struct {
	UserID        int
	Attacker      int
	Assister      int
	AssistedFlash bool
	Weapon        string
	Headshot      bool
	Penetrated    int
	NoScope       bool
	ThruSmoke     bool
	AttackerBlind bool
	Dominated     int
	Revenge       int
	Distance      float64
}

// NewPlayerDeath materializes a player_death event from its raw fields.
func NewPlayerDeath(e *RawGameEvent) *PlayerDeath {
	return &PlayerDeath{
		UserID:        e.Int("userid"),
		Attacker:      e.Int("attacker"),
		Assister:      e.Int("assister"),
		AssistedFlash: e.Bool("assistedflash"),
		Weapon:        e.String("weapon"),
		Headshot:      e.Bool("headshot"),
		Penetrated:    e.Int("penetrated"),
		NoScope:       e.Bool("noscope"),
		ThruSmoke:     e.Bool("thrusmoke"),
		AttackerBlind: e.Bool("attackerblind"),
		Dominated:     e.Int("dominated"),
		Revenge:       e.Int("revenge"),
		Distance:      e.Float("distance"),
	}
}

// PlayerHurt models the player_hurt event.
type PlayerHurt struct {
	UserID    int
	Attacker  int
	Health    int
	Armor     int
	DmgHealth int
	DmgArmor  int
	HitGroup  int
	Weapon    string
}

// NewPlayerHurt materializes a player_hurt event from its raw fields.
func NewPlayerHurt(e *RawGameEvent) *PlayerHurt {
	return &PlayerHurt{
		UserID:    e.Int("userid"),
		Attacker:  e.Int("attacker"),
		Health:    e.Int("health"),
		Armor:     e.Int("armor"),
		DmgHealth: e.Int("dmg_health"),
		DmgArmor:  e.Int("dmg_armor"),
		HitGroup:  e.Int("hitgroup"),
		Weapon:    e.String("weapon"),
	}
}

// WeaponFire models the weapon_fire event.
type WeaponFire struct {
	UserID   int
	Weapon   string
	Silenced bool
}

// NewWeaponFire materializes a weapon_fire event from its raw fields.
func NewWeaponFire(e *RawGameEvent) *WeaponFire {
	return &WeaponFire{
		UserID:   e.Int("userid"),
		Weapon:   e.String("weapon"),
		Silenced: e.Bool("silenced"),
	}
}

// RoundStart models the round_start event.
type RoundStart struct {
	Objective string
	FragLimit int
	TimeLimit int
}

// NewRoundStart materializes a round_start event from its raw fields.
func NewRoundStart(e *RawGameEvent) *RoundStart {
	return &RoundStart{
		Objective: e.String("objective"),
		FragLimit: e.Int("fraglimit"),
		TimeLimit: e.Int("timelimit"),
	}
}

// RoundEnd models the round_end event.
type RoundEnd struct {
	Winner      demcore.Team
	Reason      int
	Message     string
	Legacy      int
	PlayerCount int
	NoMusic     int
}

// NewRoundEnd materializes a round_end event from its raw fields.
func NewRoundEnd(e *RawGameEvent) *RoundEnd {
	return &RoundEnd{
		Winner:      demcore.Team(e.Int("winner")),
		Reason:      e.Int("reason"),
		Message:     e.String("message"),
		Legacy:      e.Int("legacy"),
		PlayerCount: e.Int("player_count"),
		NoMusic:     e.Int("nomusic"),
	}
}

// PlayerSpawn models the player_spawn event.
type PlayerSpawn struct {
	UserID  int
	TeamNum demcore.Team
}

// NewPlayerSpawn materializes a player_spawn event from its raw fields.
func NewPlayerSpawn(e *RawGameEvent) *PlayerSpawn {
	return &PlayerSpawn{
		UserID:  e.Int("userid"),
		TeamNum: demcore.Team(e.Int("teamnum")),
	}
}

// PlayerFootstep models the player_footstep event.
type PlayerFootstep struct {
	UserID int
}

// NewPlayerFootstep materializes a player_footstep event from its raw
// fields.
func NewPlayerFootstep(e *RawGameEvent) *PlayerFootstep {
	return &PlayerFootstep{UserID: e.Int("userid")}
}

// GrenadeDetonate models the *_detonate / smokegrenade_expired events.
type GrenadeDetonate struct {
	UserID   int
	EntityID int
	Position demcore.Vector
}

// NewGrenadeDetonate materializes a grenade detonate event from its raw
// fields.
func NewGrenadeDetonate(e *RawGameEvent) *GrenadeDetonate {
	return &GrenadeDetonate{
		UserID:   e.Int("userid"),
		EntityID: e.Int("entityid"),
		Position: demcore.Vector{X: e.Float("x"), Y: e.Float("y"), Z: e.Float("z")},
	}
}

// BombPlanted models the bomb_planted event.
type BombPlanted struct {
	UserID int

	// Site is the bombsite entity index the bomb was planted at; -1 if it
	// could not be resolved.
	Site int
}

// BombDefused models the bomb_defused event.
type BombDefused struct {
	UserID int
	Site   int
}

// PlayerLeftBuyZone models the parser-synthesized player_left_buyzone
// event.
type PlayerLeftBuyZone struct {
	EntityID int
	Team     demcore.Team
	Position demcore.Vector
}

// GrenadeProjectileThrow models the parser-synthesized
// grenade_projectile_throw event.
type GrenadeProjectileThrow struct {
	Projectile *GrenadeProjectile
}

// GrenadeProjectileDestroyed models the parser-synthesized
// grenade_projectile_destroyed event.
type GrenadeProjectileDestroyed struct {
	Projectile *GrenadeProjectile
}
