// This file contains the equipment instance and grenade projectile types.

package dem

import (
	"github.com/cskit/demparse/dem/demcore"
	"github.com/cskit/demparse/dem/demeq"
)

// Equipment is one piece of equipment held or thrown by a player.
type Equipment struct {
	// Type of the equipment
	Type demeq.Weapon

	// EntityID of the weapon entity; -1 if it never entered the PVS.
	EntityID int

	// OwnerEntityID is the entity id of the owning player; -1 if unowned.
	OwnerEntityID int

	// OriginalString is the network name the equipment was resolved from.
	OriginalString string
}

// NewEquipment returns an equipment instance of the given type, without
// entity bindings.
func NewEquipment(typ demeq.Weapon) Equipment {
	return Equipment{Type: typ, EntityID: -1, OwnerEntityID: -1}
}

// GrenadeProjectile is a thrown grenade flying through the world.
//
// Thrower and owner are stored as entity ids and resolved lazily so the
// projectile does not pin a player across respawns.
type GrenadeProjectile struct {
	// EntityID of the projectile entity
	EntityID int

	// WeaponType of the projectile, resolved via the model precache.
	WeaponType demeq.Weapon

	// WeaponInstance is the equipment the projectile was thrown from.
	WeaponInstance Equipment

	// ThrowerEntityID is the entity id of the throwing player; -1 if
	// unresolved.
	ThrowerEntityID int

	// OwnerEntityID is the entity id of the owning player; -1 if
	// unresolved.
	OwnerEntityID int

	// ThrowerInfo and OwnerInfo hold the userinfo records when only those
	// could be resolved (player entity not in the PVS).
	ThrowerInfo *PlayerInfo
	OwnerInfo   *PlayerInfo

	// Trajectory is the projectile's flight path, one sample per position
	// change.
	Trajectory []demcore.Vector
}

// NewGrenadeProjectile returns a projectile for the given entity id with
// unresolved references.
func NewGrenadeProjectile(entityID int) *GrenadeProjectile {
	return &GrenadeProjectile{
		EntityID:        entityID,
		ThrowerEntityID: -1,
		OwnerEntityID:   -1,
	}
}
