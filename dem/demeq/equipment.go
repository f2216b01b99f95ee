// Package demeq models the equipment (weapon) taxonomy of the game and the
// mapping from network names and server classes to equipment kinds.
package demeq

import "strings"

// Weapon identifies a piece of equipment.
type Weapon int

// Class is a coarse equipment category.
type Class int

// Possible values of Class.
const (
	ClassUnknown Class = iota
	ClassPistols
	ClassSMG
	ClassHeavy
	ClassRifle
	ClassEquipment
	ClassGrenade
)

// Possible values of Weapon.
const (
	WeaponUnknown Weapon = 0

	// Pistols
	WeaponP2000        Weapon = 1
	WeaponGlock        Weapon = 2
	WeaponP250         Weapon = 3
	WeaponDeagle       Weapon = 4
	WeaponFiveSeven    Weapon = 5
	WeaponDualBerettas Weapon = 6
	WeaponTec9         Weapon = 7
	WeaponCZ           Weapon = 8
	WeaponUSP          Weapon = 9
	WeaponRevolver     Weapon = 10

	// SMGs
	WeaponMP7   Weapon = 101
	WeaponMP9   Weapon = 102
	WeaponBizon Weapon = 103
	WeaponMac10 Weapon = 104
	WeaponUMP   Weapon = 105
	WeaponP90   Weapon = 106
	WeaponMP5   Weapon = 107

	// Heavy
	WeaponSawedOff Weapon = 201
	WeaponNova     Weapon = 202
	WeaponMag7     Weapon = 203
	WeaponXM1014   Weapon = 204
	WeaponM249     Weapon = 205
	WeaponNegev    Weapon = 206

	// Rifles
	WeaponGalil  Weapon = 301
	WeaponFamas  Weapon = 302
	WeaponAK47   Weapon = 303
	WeaponM4A4   Weapon = 304
	WeaponM4A1   Weapon = 305
	WeaponScout  Weapon = 306
	WeaponSG553  Weapon = 307
	WeaponAUG    Weapon = 308
	WeaponAWP    Weapon = 309
	WeaponScar20 Weapon = 310
	WeaponG3SG1  Weapon = 311

	// Equipment
	WeaponZeus      Weapon = 401
	WeaponKevlar    Weapon = 402
	WeaponHelmet    Weapon = 403
	WeaponBomb      Weapon = 404
	WeaponKnife     Weapon = 405
	WeaponDefuseKit Weapon = 406
	WeaponWorld     Weapon = 407

	// Grenades
	WeaponDecoy      Weapon = 501
	WeaponMolotov    Weapon = 502
	WeaponIncendiary Weapon = 503
	WeaponFlash      Weapon = 504
	WeaponSmoke      Weapon = 505
	WeaponHE         Weapon = 506
)

// Class returns the coarse category of the weapon.
func (w Weapon) Class() Class {
	switch {
	case w >= WeaponP2000 && w <= WeaponRevolver:
		return ClassPistols
	case w >= WeaponMP7 && w <= WeaponMP5:
		return ClassSMG
	case w >= WeaponSawedOff && w <= WeaponNegev:
		return ClassHeavy
	case w >= WeaponGalil && w <= WeaponG3SG1:
		return ClassRifle
	case w >= WeaponZeus && w <= WeaponWorld:
		return ClassEquipment
	case w >= WeaponDecoy && w <= WeaponHE:
		return ClassGrenade
	}
	return ClassUnknown
}

// IsGrenade tells if the weapon is a throwable grenade.
func (w Weapon) IsGrenade() bool {
	return w.Class() == ClassGrenade
}

// names maps weapons to their display names.
var names = map[Weapon]string{
	WeaponAK47:         "AK-47",
	WeaponAUG:          "AUG",
	WeaponAWP:          "AWP",
	WeaponBizon:        "PP-Bizon",
	WeaponBomb:         "C4",
	WeaponDeagle:       "Desert Eagle",
	WeaponDecoy:        "Decoy Grenade",
	WeaponDualBerettas: "Dual Berettas",
	WeaponFamas:        "FAMAS",
	WeaponFiveSeven:    "Five-SeveN",
	WeaponFlash:        "Flashbang",
	WeaponG3SG1:        "G3SG1",
	WeaponGalil:        "Galil AR",
	WeaponGlock:        "Glock-18",
	WeaponHE:           "HE Grenade",
	WeaponP2000:        "P2000",
	WeaponIncendiary:   "Incendiary Grenade",
	WeaponM249:         "M249",
	WeaponM4A4:         "M4A4",
	WeaponMac10:        "MAC-10",
	WeaponMag7:         "MAG-7",
	WeaponMolotov:      "Molotov",
	WeaponMP7:          "MP7",
	WeaponMP5:          "MP5-SD",
	WeaponMP9:          "MP9",
	WeaponNegev:        "Negev",
	WeaponNova:         "Nova",
	WeaponP250:         "P250",
	WeaponP90:          "P90",
	WeaponSawedOff:     "Sawed-Off",
	WeaponScar20:       "SCAR-20",
	WeaponSG553:        "SG 553",
	WeaponSmoke:        "Smoke Grenade",
	WeaponScout:        "SSG 08",
	WeaponZeus:         "Zeus x27",
	WeaponTec9:         "Tec-9",
	WeaponUMP:          "UMP-45",
	WeaponXM1014:       "XM1014",
	WeaponM4A1:         "M4A1",
	WeaponCZ:           "CZ75 Auto",
	WeaponUSP:          "USP-S",
	WeaponWorld:        "World",
	WeaponRevolver:     "R8 Revolver",
	WeaponKevlar:       "Kevlar Vest",
	WeaponHelmet:       "Kevlar + Helmet",
	WeaponDefuseKit:    "Defuse Kit",
	WeaponKnife:        "Knife",
	WeaponUnknown:      "UNKNOWN",
}

// String returns the display name of the weapon.
func (w Weapon) String() string {
	if name, ok := names[w]; ok {
		return name
	}
	return "UNKNOWN"
}

// byName maps network entity / item names to weapons.
var byName = map[string]Weapon{
	"ak47":                    WeaponAK47,
	"aug":                     WeaponAUG,
	"awp":                     WeaponAWP,
	"bizon":                   WeaponBizon,
	"c4":                      WeaponBomb,
	"deagle":                  WeaponDeagle,
	"decoy":                   WeaponDecoy,
	"decoygrenade":            WeaponDecoy,
	"decoyprojectile":         WeaponDecoy,
	"decoy_projectile":        WeaponDecoy,
	"elite":                   WeaponDualBerettas,
	"famas":                   WeaponFamas,
	"fiveseven":               WeaponFiveSeven,
	"flashbang":               WeaponFlash,
	"g3sg1":                   WeaponG3SG1,
	"galil":                   WeaponGalil,
	"galilar":                 WeaponGalil,
	"glock":                   WeaponGlock,
	"hegrenade":               WeaponHE,
	"hkp2000":                 WeaponP2000,
	"incgrenade":              WeaponIncendiary,
	"incendiarygrenade":       WeaponIncendiary,
	"m249":                    WeaponM249,
	"m4a1":                    WeaponM4A4,
	"mac10":                   WeaponMac10,
	"mag7":                    WeaponMag7,
	"molotov":                 WeaponMolotov,
	"molotovgrenade":          WeaponMolotov,
	"molotovprojectile":       WeaponMolotov,
	"molotov_projectile":      WeaponMolotov,
	"mp7":                     WeaponMP7,
	"mp5sd":                   WeaponMP5,
	"mp9":                     WeaponMP9,
	"negev":                   WeaponNegev,
	"nova":                    WeaponNova,
	"p250":                    WeaponP250,
	"p90":                     WeaponP90,
	"sawedoff":                WeaponSawedOff,
	"scar20":                  WeaponScar20,
	"sg556":                   WeaponSG553,
	"smokegrenade":            WeaponSmoke,
	"smokegrenadeprojectile":  WeaponSmoke,
	"smokegrenade_projectile": WeaponSmoke,
	"ssg08":                   WeaponScout,
	"taser":                   WeaponZeus,
	"tec9":                    WeaponTec9,
	"ump45":                   WeaponUMP,
	"xm1014":                  WeaponXM1014,
	"m4a1_silencer":           WeaponM4A1,
	"m4a1_silencer_off":       WeaponM4A1,
	"cz75a":                   WeaponCZ,
	"usp":                     WeaponUSP,
	"usp_silencer":            WeaponUSP,
	"usp_silencer_off":        WeaponUSP,
	"world":                   WeaponWorld,
	"worldspawn":              WeaponWorld,
	"inferno":                 WeaponIncendiary,
	"revolver":                WeaponRevolver,
	"vest":                    WeaponKevlar,
	"vesthelm":                WeaponHelmet,
	"defuser":                 WeaponDefuseKit,

	// These don't exist and/or used to crash the game with the give command
	"scar17":        WeaponUnknown,
	"sensorgrenade": WeaponUnknown,
	"mp5navy":       WeaponUnknown,
	"p228":          WeaponUnknown,
	"scout":         WeaponUnknown,
	"sg550":         WeaponUnknown,
	"sg552":         WeaponUnknown,
	"tmp":           WeaponUnknown,
}

// alternatives maps weapons to their loadout alternatives, used when
// resolving a player's inventory. The mapping is one way: the values have
// no entry of their own.
var alternatives = map[Weapon]Weapon{
	WeaponP2000:     WeaponUSP,
	WeaponP250:      WeaponCZ,
	WeaponFiveSeven: WeaponCZ,
	WeaponTec9:      WeaponCZ,
	WeaponDeagle:    WeaponRevolver,
	WeaponMP7:       WeaponMP5,
	WeaponM4A4:      WeaponM4A1,
}

// Alternative returns the loadout alternative of the weapon, or
// WeaponUnknown if it has none.
func Alternative(w Weapon) Weapon {
	return alternatives[w]
}

// ByName returns the weapon for a network entity / item name,
// e.g. "weapon_ak47", "smokegrenadeprojectile" or "knife_karambit".
func ByName(name string) Weapon {
	name = strings.TrimPrefix(name, "weapon_")
	if strings.Contains(name, "knife") || strings.Contains(name, "bayonet") {
		return WeaponKnife
	}
	return byName[name]
}

// Same tells if two weapons are the same for thrown-grenade accounting;
// molotov and incendiary are interchangeable.
func Same(a, b Weapon) bool {
	return a == b ||
		(a == WeaponIncendiary && b == WeaponMolotov) ||
		(b == WeaponIncendiary && a == WeaponMolotov)
}
