// This file contains the tagged value union of network-serialized
// properties.

package dem

import "github.com/cskit/demparse/dem/demcore"

// PropValueKind tags which variant a PropValue holds.
type PropValueKind int

// Possible values of PropValueKind. KindNone marks a slot that has not been
// set by the baseline or any update, which is distinct from a zero value.
const (
	KindNone PropValueKind = iota
	KindInt
	KindFloat
	KindVector
	KindString
	KindArray
)

// PropValue is the value of one network-serialized property: a 32-bit
// integer, a 64-bit float, a 3-vector, a string or a homogeneous array.
type PropValue struct {
	Kind      PropValueKind
	IntVal    int
	FloatVal  float64
	VectorVal demcore.Vector
	StringVal string
	ArrayVal  []PropValue
}

// IntValue returns an integer PropValue.
func IntValue(v int) PropValue {
	return PropValue{Kind: KindInt, IntVal: v}
}

// FloatValue returns a float PropValue.
func FloatValue(v float64) PropValue {
	return PropValue{Kind: KindFloat, FloatVal: v}
}

// VectorValue returns a vector PropValue.
func VectorValue(v demcore.Vector) PropValue {
	return PropValue{Kind: KindVector, VectorVal: v}
}

// StringValue returns a string PropValue.
func StringValue(v string) PropValue {
	return PropValue{Kind: KindString, StringVal: v}
}

// ArrayValue returns an array PropValue.
func ArrayValue(v []PropValue) PropValue {
	return PropValue{Kind: KindArray, ArrayVal: v}
}

// Int returns the integer value, or -1 if the value is not an integer.
func (v PropValue) Int() int {
	if v.Kind != KindInt {
		return -1
	}
	return v.IntVal
}

// Float returns the float value, or 0 if the value is not a float.
func (v PropValue) Float() float64 {
	if v.Kind != KindFloat {
		return 0
	}
	return v.FloatVal
}

// Vector returns the vector value, or the zero vector if the value is not
// a vector.
func (v PropValue) Vector() demcore.Vector {
	if v.Kind != KindVector {
		return demcore.Vector{}
	}
	return v.VectorVal
}

// String returns the string value, or "" if the value is not a string.
func (v PropValue) String() string {
	if v.Kind != KindString {
		return ""
	}
	return v.StringVal
}
