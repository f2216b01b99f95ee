// This file contains the game event descriptor and the generic decoded
// event shape.

package dem

// GameEventDescriptor declares one game event kind: its id, name and the
// ordered key names of its payload.
type GameEventDescriptor struct {
	// ID of the event kind
	ID int

	// Name of the event, e.g. "player_death"
	Name string

	// KeyNames are the payload key names, parallel to the keys array of
	// event messages.
	KeyNames []string
}

// RawGameEvent is a decoded game event: the descriptor's name plus the
// key-name → typed-value mapping materialized from the message's parallel
// key array. Value types per key: string, float64, int, bool or uint64.
type RawGameEvent struct {
	// Name of the event
	Name string

	// Tick the event was produced on
	Tick int

	// Fields maps key names to their typed values.
	Fields map[string]interface{}
}

// Int returns the named field as an int, or 0 if absent or differently
// typed.
func (e *RawGameEvent) Int(key string) int {
	v, _ := e.Fields[key].(int)
	return v
}

// String returns the named field as a string, or "".
func (e *RawGameEvent) String(key string) string {
	v, _ := e.Fields[key].(string)
	return v
}

// Float returns the named field as a float64, or 0.
func (e *RawGameEvent) Float(key string) float64 {
	v, _ := e.Fields[key].(float64)
	return v
}

// Bool returns the named field as a bool, or false.
func (e *RawGameEvent) Bool(key string) bool {
	v, _ := e.Fields[key].(bool)
	return v
}

// Uint64 returns the named field as a uint64, or 0.
func (e *RawGameEvent) Uint64(key string) uint64 {
	v, _ := e.Fields[key].(uint64)
	return v
}
