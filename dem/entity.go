// This file contains the Entity type: a live, numbered game object with
// one property slot per flattened schema entry of its server class.

package dem

import "github.com/cskit/demparse/dem/demcore"

// Qualified names of the position-defining properties.
const (
	PropPlayerPositionXY = "cslocaldata.m_vecOrigin"
	PropPlayerPositionZ  = "cslocaldata.m_vecOrigin[2]"
	PropCellBits         = "m_cellbits"
	PropCellX            = "m_cellX"
	PropCellY            = "m_cellY"
	PropCellZ            = "m_cellZ"
	PropCellOrigin       = "m_vecOrigin"
)

// Property is one slot of an entity: the flattened descriptor plus the
// current value.
type Property struct {
	// Entry is the flattened schema entry backing the slot; it always
	// equals ServerClass.FlattenedProps[i] for slot i.
	Entry *FlattenedPropEntry

	// Value is the current value; Kind is KindNone until the baseline or
	// an update sets the slot.
	Value PropValue
}

// Entity is a numbered game object. Entities are created on enter-PVS
// messages, mutated on update messages and destroyed on leave-PVS messages.
type Entity struct {
	// ServerClass of the entity
	ServerClass *ServerClass

	// ID of the entity (small non-negative integer)
	ID int

	// Props holds one slot per flattened schema entry of the class.
	Props []Property

	// LastPosition is the position at the last recompute.
	LastPosition demcore.Vector

	// PositionHistory maps ticks to the entity's position on that tick.
	// Only filled for player entities.
	PositionHistory map[int]demcore.Vector

	// CreatedOnTick is the ingame tick the entity entered the PVS on.
	CreatedOnTick int

	// IsInBuyZone mirrors m_bInBuyZone for players.
	IsInBuyZone bool

	// Team mirrors m_iTeamNum, refreshed once per tick.
	Team demcore.Team

	// LastFlashDuration is the m_flFlashDuration the current blindness
	// started with; 0 while the entity is not blind.
	LastFlashDuration float64

	// FlashFrameAgg counts the ticks the entity has been blind for.
	FlashFrameAgg uint64

	// position derives the current position; bound on creation depending
	// on whether the entity is a player.
	position func(*Entity) demcore.Vector
}

// Property returns the entity's property slot of the given qualified name.
// ok is false if the class has no such property.
func (e *Entity) Property(name string) (p *Property, ok bool) {
	idx := e.ServerClass.PropIdx(name)
	if idx < 0 {
		return nil, false
	}
	return &e.Props[idx], true
}

// PropertyValue returns the current value of the named property, or a
// KindNone value if the class has no such property.
func (e *Entity) PropertyValue(name string) PropValue {
	if p, ok := e.Property(name); ok {
		return p.Value
	}
	return PropValue{}
}

// BindPositionAccessor attaches the position derivation matching the
// entity's class (player vs. generic).
func (e *Entity) BindPositionAccessor() {
	if e.IsPlayer() {
		e.position = playerPosition
	} else {
		e.position = cellPosition
	}
}

// Position returns the entity's current position.
func (e *Entity) Position() demcore.Vector {
	if e.position == nil {
		return demcore.Vector{}
	}
	return e.position(e)
}

// playerPosition derives a player's position: x, y from the localdata
// origin vector, z from its split-off float property.
func playerPosition(e *Entity) demcore.Vector {
	xy := e.PropertyValue(PropPlayerPositionXY)
	z := e.PropertyValue(PropPlayerPositionZ)
	if xy.Kind != KindVector || z.Kind != KindFloat {
		return demcore.Vector{}
	}
	return demcore.Vector{X: xy.VectorVal.X, Y: xy.VectorVal.Y, Z: z.FloatVal}
}

// cellPosition derives a non-player position from its world cell plus the
// in-cell origin offset.
func cellPosition(e *Entity) demcore.Vector {
	cellBits := e.PropertyValue(PropCellBits)
	cellX := e.PropertyValue(PropCellX)
	cellY := e.PropertyValue(PropCellY)
	cellZ := e.PropertyValue(PropCellZ)
	offset := e.PropertyValue(PropCellOrigin)
	if cellBits.Kind != KindInt || cellX.Kind != KindInt || cellY.Kind != KindInt ||
		cellZ.Kind != KindInt || offset.Kind != KindVector {
		return demcore.Vector{}
	}
	cellWidth := demcore.CellWidth(cellBits.IntVal)
	return demcore.Vector{
		X: demcore.CoordFromCell(cellX.IntVal, cellWidth, offset.VectorVal.X),
		Y: demcore.CoordFromCell(cellY.IntVal, cellWidth, offset.VectorVal.Y),
		Z: demcore.CoordFromCell(cellZ.IntVal, cellWidth, offset.VectorVal.Z),
	}
}

// IsPlayer tells if the entity is a player.
func (e *Entity) IsPlayer() bool {
	return e.ServerClass.Name == "CCSPlayer"
}

// IsTeam tells if the entity is a team.
func (e *Entity) IsTeam() bool {
	return e.ServerClass.Name == "CCSTeam"
}

// IsWeapon tells if the entity is a (non-grenade) weapon.
func (e *Entity) IsWeapon() bool {
	return e.ServerClass.BaseClassExists("DT_WeaponCSBase") &&
		!e.ServerClass.BaseClassExists("DT_BaseCSGrenade")
}

// IsGrenade tells if the entity is a grenade: a held grenade weapon
// (DT_BaseCSGrenade) or a grenade projectile (DT_BaseGrenade).
func (e *Entity) IsGrenade() bool {
	return e.ServerClass.BaseClassExists("DT_BaseCSGrenade") ||
		e.ServerClass.BaseClassExists("DT_BaseGrenade")
}

// IsBomb tells if the entity is the droppable C4.
func (e *Entity) IsBomb() bool {
	return e.ServerClass.Name == "CC4"
}

// IsPlantedBomb tells if the entity is a planted C4.
func (e *Entity) IsPlantedBomb() bool {
	return e.ServerClass.Name == "CPlantedC4"
}

// IsInferno tells if the entity is a molotov / incendiary flame area.
func (e *Entity) IsInferno() bool {
	return e.ServerClass.Name == "CInferno"
}

// IsGameRules tells if the entity is the game rules proxy.
func (e *Entity) IsGameRules() bool {
	return e.ServerClass.Name == "CCSGameRulesProxy"
}

// IsBlind tells if the entity currently has a positive flash duration.
func (e *Entity) IsBlind() bool {
	v := e.PropertyValue("m_flFlashDuration")
	return v.Kind == KindFloat && v.FloatVal > 0
}

// IsAlive tells if the entity has positive health.
func (e *Entity) IsAlive() bool {
	v := e.PropertyValue("m_iHealth")
	return v.Kind == KindInt && v.IntVal > 0
}

// ViewDirectionX returns the player's horizontal view angle.
func (e *Entity) ViewDirectionX() float64 {
	return e.PropertyValue("m_angEyeAngles[1]").Float()
}

// ViewDirectionY returns the player's vertical view angle.
func (e *Entity) ViewDirectionY() float64 {
	return e.PropertyValue("m_angEyeAngles[0]").Float()
}

// EyePositionZ returns the player's view offset above its origin.
func (e *Entity) EyePositionZ() float64 {
	return e.PropertyValue("localdata.m_vecViewOffset[2]").Float()
}

// LastPlaceName returns the nav-mesh place name of the player's position.
func (e *Entity) LastPlaceName() string {
	return e.PropertyValue("m_szLastPlaceName").String()
}

// ActiveWeaponID returns the entity id of a player's active weapon,
// or -1 if none.
func (e *Entity) ActiveWeaponID() int {
	if !e.IsPlayer() {
		return -1
	}
	v := e.PropertyValue("m_hActiveWeapon")
	if v.Kind != KindInt {
		return -1
	}
	return v.IntVal & demcore.HandleIndexMask
}
