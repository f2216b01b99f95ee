// This file contains the Demo type and its components which model the
// decoded outcome of a demo recording.

package dem

// Demo models a parsed demo recording.
type Demo struct {
	// Header of the demo file
	Header *Header

	// MapName reported by the server info message; may be more reliable
	// than the header's map field on relayed recordings.
	MapName string

	// TickRate of the server (ticks / second)
	TickRate float64

	// ConVars holds the server config merged from set-convar messages.
	ConVars map[string]string

	// Players contains the player-info records of everyone who appeared
	// in the userinfo string table.
	Players []*PlayerInfo

	// Computed contains data derived while decoding the frames.
	Computed *Computed
}

// Computed models data derived from the decoded event stream.
type Computed struct {
	// LastTick is the ingame tick of the last decoded frame.
	LastTick int

	// EventCounts maps game event names to their occurrence counts.
	EventCounts map[string]int

	// Kills is the number of player_death events.
	Kills int

	// RoundsPlayed is the number of officially ended rounds.
	RoundsPlayed int
}
