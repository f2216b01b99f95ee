// Package demcore contains the core types of the dem and demparser packages.
package demcore

import (
	"fmt"
	"math"
)

// Vector is a position or direction in world space.
type Vector struct {
	X, Y, Z float64
}

// String returns a compact string representation of the vector.
func (v Vector) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}

// Sub returns the vector pointing from w to v.
func (v Vector) Sub(w Vector) Vector {
	return Vector{X: v.X - w.X, Y: v.Y - w.Y, Z: v.Z - w.Z}
}

// Distance returns the Euclidean distance between v and w.
func (v Vector) Distance(w Vector) float64 {
	d := v.Sub(w)
	return math.Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
}

// Team is a team tag as transmitted in m_iTeamNum.
type Team byte

// Possible values of Team.
const (
	TeamUnassigned        Team = 0
	TeamSpectators        Team = 1
	TeamTerrorists        Team = 2
	TeamCounterTerrorists Team = 3
)

// String returns the team name.
func (t Team) String() string {
	switch t {
	case TeamSpectators:
		return "Spectators"
	case TeamTerrorists:
		return "Terrorists"
	case TeamCounterTerrorists:
		return "CounterTerrorists"
	}
	return "Unassigned"
}

// Entity handles are 21-bit references; the low 11 bits hold the entity
// index, all-ones marks an invalid handle.
const (
	HandleIndexMask = 2047
	InvalidHandle   = 2097151
)

// HandleEntityID returns the entity id a handle refers to, or -1 for the
// invalid handle.
func HandleEntityID(handle int) int {
	if handle == InvalidHandle {
		return -1
	}
	return handle & HandleIndexMask
}

// CellWidth returns the world-cell width implied by m_cellbits.
func CellWidth(cellBits int) int {
	return 1 << uint(cellBits)
}

// CoordFromCell converts a cell index plus an in-cell offset to a world
// coordinate.
func CoordFromCell(cell, cellWidth int, offset float64) float64 {
	return float64(cell*cellWidth-16384) + offset
}
