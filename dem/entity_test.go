package dem

import (
	"testing"

	"github.com/cskit/demparse/dem/demcore"
)

// classOf builds a server class with the given flattened property names.
func classOf(name, dtName string, propNames ...string) *ServerClass {
	sc := &ServerClass{Name: name, DtName: dtName}
	sc.PropNameToIdx = make(map[string]int, len(propNames))
	for i, n := range propNames {
		sc.FlattenedProps = append(sc.FlattenedProps, FlattenedPropEntry{Name: n, Index: i})
		sc.PropNameToIdx[n] = i
	}
	return sc
}

func entityOf(sc *ServerClass, id int) *Entity {
	e := &Entity{
		ServerClass:     sc,
		ID:              id,
		Props:           make([]Property, len(sc.FlattenedProps)),
		PositionHistory: make(map[int]demcore.Vector),
	}
	for i := range sc.FlattenedProps {
		e.Props[i].Entry = &sc.FlattenedProps[i]
	}
	e.BindPositionAccessor()
	return e
}

func (e *Entity) set(name string, v PropValue) {
	e.Props[e.ServerClass.PropNameToIdx[name]].Value = v
}

func TestPlayerPosition(t *testing.T) {
	sc := classOf("CCSPlayer", "DT_CSPlayer",
		PropPlayerPositionXY, PropPlayerPositionZ)
	e := entityOf(sc, 4)

	e.set(PropPlayerPositionXY, VectorValue(demcore.Vector{X: 100, Y: -200}))
	e.set(PropPlayerPositionZ, FloatValue(64))

	pos := e.Position()
	expected := demcore.Vector{X: 100, Y: -200, Z: 64}
	if pos != expected {
		t.Errorf("Expected: %v, got: %v", expected, pos)
	}
}

func TestCellPosition(t *testing.T) {
	sc := classOf("CSmokeGrenadeProjectile", "DT_SmokeGrenadeProjectile",
		PropCellBits, PropCellX, PropCellY, PropCellZ, PropCellOrigin)
	e := entityOf(sc, 60)

	e.set(PropCellBits, IntValue(5))
	e.set(PropCellX, IntValue(600))
	e.set(PropCellY, IntValue(500))
	e.set(PropCellZ, IntValue(512))
	e.set(PropCellOrigin, VectorValue(demcore.Vector{X: 1, Y: 2, Z: 3}))

	pos := e.Position()
	// cell*32 - 16384 + offset
	expected := demcore.Vector{X: 600*32 - 16384 + 1, Y: 500*32 - 16384 + 2, Z: 512*32 - 16384 + 3}
	if pos != expected {
		t.Errorf("Expected: %v, got: %v", expected, pos)
	}
}

func TestPositionUnsetProps(t *testing.T) {
	sc := classOf("CCSPlayer", "DT_CSPlayer",
		PropPlayerPositionXY, PropPlayerPositionZ)
	e := entityOf(sc, 4)

	if pos := e.Position(); pos != (demcore.Vector{}) {
		t.Errorf("Expected zero vector, got: %v", pos)
	}
}

func TestEntityClassification(t *testing.T) {
	cases := []struct {
		className string
		base      map[string]bool
		isPlayer  bool
		isGrenade bool
		isWeapon  bool
	}{
		{"CCSPlayer", nil, true, false, false},
		{"CAK47", map[string]bool{"DT_WeaponCSBase": true}, false, false, true},
		{"CSmokeGrenade", map[string]bool{"DT_WeaponCSBase": true, "DT_BaseCSGrenade": true}, false, true, false},
		{"CSmokeGrenadeProjectile", map[string]bool{"DT_BaseGrenade": true}, false, true, false},
		{"CCSTeam", nil, false, false, false},
	}

	for _, c := range cases {
		sc := classOf(c.className, "DT_x")
		sc.BaseClassesByName = c.base
		e := entityOf(sc, 1)

		if got := e.IsPlayer(); got != c.isPlayer {
			t.Errorf("%s IsPlayer: Expected: %v, got: %v", c.className, c.isPlayer, got)
		}
		if got := e.IsGrenade(); got != c.isGrenade {
			t.Errorf("%s IsGrenade: Expected: %v, got: %v", c.className, c.isGrenade, got)
		}
		if got := e.IsWeapon(); got != c.isWeapon {
			t.Errorf("%s IsWeapon: Expected: %v, got: %v", c.className, c.isWeapon, got)
		}
	}
}

func TestIsBlindAndAlive(t *testing.T) {
	sc := classOf("CCSPlayer", "DT_CSPlayer", "m_flFlashDuration", "m_iHealth")
	e := entityOf(sc, 1)

	if e.IsBlind() {
		t.Error("Expected not blind with unset prop")
	}
	if e.IsAlive() {
		t.Error("Expected not alive with unset prop")
	}

	e.set("m_flFlashDuration", FloatValue(2.5))
	e.set("m_iHealth", IntValue(100))

	if !e.IsBlind() {
		t.Error("Expected blind")
	}
	if !e.IsAlive() {
		t.Error("Expected alive")
	}
}

func TestPropertyLookupMissing(t *testing.T) {
	sc := classOf("CCSPlayer", "DT_CSPlayer", "m_iHealth")
	e := entityOf(sc, 1)

	if _, ok := e.Property("m_nonexistent"); ok {
		t.Error("Expected missing property")
	}
	if v := e.PropertyValue("m_nonexistent"); v.Kind != KindNone {
		t.Errorf("Expected KindNone, got: %v", v.Kind)
	}
}

func TestActiveWeaponID(t *testing.T) {
	sc := classOf("CCSPlayer", "DT_CSPlayer", "m_hActiveWeapon")
	e := entityOf(sc, 1)

	e.set("m_hActiveWeapon", IntValue(4<<11|77))
	if got := e.ActiveWeaponID(); got != 77 {
		t.Errorf("Expected: 77, got: %v", got)
	}
}
