// This file contains the types describing the demo header.

package dem

import (
	"time"
)

// Header models the fixed 1072-byte preamble of a demo file.
type Header struct {
	// DemoType is the file magic; "HL2DEMO" for supported demos.
	DemoType string

	// Version of the demo file format
	Version int32

	// Protocol is the network protocol version
	Protocol int32

	// Server is the name of the recording server
	Server string

	// Nick is the name of the recording client
	Nick string

	// Map is the map file name, e.g. "de_dust2"
	Map string

	// Game is the game directory, e.g. "csgo"
	Game string

	// Duration is the playback time in seconds
	Duration float32

	// Ticks is the number of ingame ticks recorded
	Ticks int32

	// Frames is the number of demo frames recorded
	Frames int32

	// SignonLength is the byte length of the signon data
	SignonLength int32
}

// PlaybackTime returns the playback duration.
func (h *Header) PlaybackTime() time.Duration {
	return time.Duration(float64(h.Duration) * float64(time.Second))
}

// FrameRate returns the recorded frames per second, or 0 if the header
// carries no duration.
func (h *Header) FrameRate() float64 {
	if h.Duration == 0 {
		return 0
	}
	return float64(h.Frames) / float64(h.Duration)
}

// TickRate returns the ingame ticks per second per the header, or 0 if the
// header carries no duration. The server info message is authoritative.
func (h *Header) TickRate() float64 {
	if h.Duration == 0 {
		return 0
	}
	return float64(h.Ticks) / float64(h.Duration)
}
