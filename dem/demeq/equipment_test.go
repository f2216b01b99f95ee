package demeq

import "testing"

func TestByName(t *testing.T) {
	cases := []struct {
		name     string
		expected Weapon
	}{
		{"ak47", WeaponAK47},
		{"weapon_ak47", WeaponAK47},
		{"weapon_knife_karambit", WeaponKnife},
		{"bayonet", WeaponKnife},
		{"smokegrenadeprojectile", WeaponSmoke},
		{"m4a1_silencer", WeaponM4A1},
		{"m4a1", WeaponM4A4},
		{"incgrenade", WeaponIncendiary},
		{"doesnotexist", WeaponUnknown},
	}

	for _, c := range cases {
		if got := ByName(c.name); got != c.expected {
			t.Errorf("%s: Expected: %v, got: %v", c.name, c.expected, got)
		}
	}
}

func TestClass(t *testing.T) {
	cases := []struct {
		weapon   Weapon
		expected Class
	}{
		{WeaponGlock, ClassPistols},
		{WeaponP90, ClassSMG},
		{WeaponNegev, ClassHeavy},
		{WeaponAWP, ClassRifle},
		{WeaponBomb, ClassEquipment},
		{WeaponSmoke, ClassGrenade},
		{WeaponUnknown, ClassUnknown},
	}

	for _, c := range cases {
		if got := c.weapon.Class(); got != c.expected {
			t.Errorf("%v: Expected: %v, got: %v", c.weapon, c.expected, got)
		}
	}
}

func TestIsGrenade(t *testing.T) {
	if !WeaponFlash.IsGrenade() {
		t.Error("Expected flashbang to be a grenade")
	}
	if WeaponAK47.IsGrenade() {
		t.Error("Expected AK-47 not to be a grenade")
	}
}

func TestSame(t *testing.T) {
	cases := []struct {
		a, b     Weapon
		expected bool
	}{
		{WeaponSmoke, WeaponSmoke, true},
		{WeaponMolotov, WeaponIncendiary, true},
		{WeaponIncendiary, WeaponMolotov, true},
		{WeaponSmoke, WeaponFlash, false},
	}

	for _, c := range cases {
		if got := Same(c.a, c.b); got != c.expected {
			t.Errorf("Same(%v, %v): Expected: %v, got: %v", c.a, c.b, c.expected, got)
		}
	}
}

func TestAlternative(t *testing.T) {
	if got := Alternative(WeaponM4A4); got != WeaponM4A1 {
		t.Errorf("Expected: %v, got: %v", WeaponM4A1, got)
	}
	if got := Alternative(WeaponAK47); got != WeaponUnknown {
		t.Errorf("Expected: %v, got: %v", WeaponUnknown, got)
	}
}

func TestString(t *testing.T) {
	if got := WeaponAWP.String(); got != "AWP" {
		t.Errorf("Expected: AWP, got: %v", got)
	}
	if got := Weapon(9999).String(); got != "UNKNOWN" {
		t.Errorf("Expected: UNKNOWN, got: %v", got)
	}
}
