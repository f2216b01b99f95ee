// This file contains the server class type: a network-visible entity type
// with its flattened property schema.

package dem

// FlattenedPropEntry is a leaf property of the collapsed schema, uniquely
// named by its dotted path.
type FlattenedPropEntry struct {
	// Name is the qualified property name, e.g. "cslocaldata.m_vecOrigin"
	Name string

	// Prop is the declaring send-table property.
	Prop SendTableProperty

	// ArrayElemProp is the per-element descriptor of array-typed
	// properties (the property declared immediately before the array).
	ArrayElemProp *SendTableProperty

	// Index of the entry in the priority-sorted flattened list
	Index int
}

// ServerClass is a network-visible entity type. Every live entity belongs
// to exactly one server class.
type ServerClass struct {
	// ID of the class as transmitted on the wire
	ID int

	// Name of the class, e.g. "CCSPlayer"
	Name string

	// DtName is the name of the class's send table, e.g. "DT_CSPlayer"
	DtName string

	// Index of the class in declaration order
	Index int

	// BaseClassesByName is the set of base class send-table names,
	// collected from "baseclass" sub-tables during flattening.
	BaseClassesByName map[string]bool

	// FlattenedProps is the priority-sorted flat property list. It is
	// stable for the lifetime of the demo once the data-table phase ends.
	FlattenedProps []FlattenedPropEntry

	// PropNameToIdx maps qualified property names to flattened indices.
	PropNameToIdx map[string]int

	// InstanceBaseline is the raw baseline bit string from the
	// instancebaseline string table, if any.
	InstanceBaseline []byte

	// PreprocessedBaseline caches the decoded baseline per flattened slot.
	// It is computed on the first entity of the class and reused.
	PreprocessedBaseline []PropValue

	// CreatedHandlers are invoked after an entity of this class has been
	// constructed and its first update applied.
	CreatedHandlers []func(entityID int)
}

// BaseClassExists tells if the class descends from the send table of the
// given name, e.g. "DT_WeaponCSBase".
func (sc *ServerClass) BaseClassExists(name string) bool {
	return sc.BaseClassesByName[name]
}

// PropIdx returns the flattened index of the qualified property name,
// or -1 if the class has no such property.
func (sc *ServerClass) PropIdx(name string) int {
	if idx, ok := sc.PropNameToIdx[name]; ok {
		return idx
	}
	return -1
}
