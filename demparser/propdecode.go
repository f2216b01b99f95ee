// This file contains the property codec: decoding a single property value
// from the bit stream given its flattened descriptor.

package demparser

import (
	"fmt"
	"math"

	"github.com/cskit/demparse/dem"
	"github.com/cskit/demparse/dem/demcore"
	"github.com/cskit/demparse/demparser/bitread"
)

// decodeProp decodes one property value in place, dispatching on the
// descriptor's raw type.
func decodeProp(prop *dem.Property, r *bitread.BitReader) {
	switch prop.Entry.Prop.RawType {
	case dem.PropTypeInt:
		prop.Value = dem.IntValue(decodeInt(&prop.Entry.Prop, r))
	case dem.PropTypeFloat:
		prop.Value = dem.FloatValue(decodeFloat(&prop.Entry.Prop, r))
	case dem.PropTypeVector:
		prop.Value = dem.VectorValue(decodeVector(&prop.Entry.Prop, r))
	case dem.PropTypeVectorXY:
		prop.Value = dem.VectorValue(decodeVectorXY(&prop.Entry.Prop, r))
	case dem.PropTypeString:
		prop.Value = dem.StringValue(decodeString(r))
	case dem.PropTypeArray:
		prop.Value = dem.ArrayValue(decodeArray(prop.Entry, r))
	default:
		panic(fmt.Errorf("%w: unknown prop type %d (%s)", ErrSchemaMismatch,
			prop.Entry.Prop.RawType, prop.Entry.Name))
	}
}

func decodeInt(prop *dem.SendTableProperty, r *bitread.BitReader) int {
	if prop.Flags.HasFlagSet(dem.PropFlagVarInt) {
		if prop.Flags.HasFlagSet(dem.PropFlagUnsigned) {
			return int(int32(r.ReadVarInt32()))
		}
		return int(r.ReadSignedVarInt32())
	}
	if prop.Flags.HasFlagSet(dem.PropFlagUnsigned) {
		return int(int32(r.ReadInt(prop.NumBits)))
	}
	return int(int32(r.ReadSignedInt(prop.NumBits)))
}

func decodeFloat(prop *dem.SendTableProperty, r *bitread.BitReader) float64 {
	if prop.Flags&dem.PropFlagSpecialFloat != 0 {
		return decodeSpecialFloat(prop, r)
	}

	// Linear quantization over [LowValue, HighValue].
	quantized := float64(r.ReadInt(prop.NumBits)) / float64((uint64(1)<<uint(prop.NumBits))-1)
	return float64(prop.LowValue) + float64(prop.HighValue-prop.LowValue)*quantized
}

func decodeSpecialFloat(prop *dem.SendTableProperty, r *bitread.BitReader) float64 {
	switch {
	case prop.Flags.HasFlagSet(dem.PropFlagCoord):
		return float64(r.ReadBitCoord())
	case prop.Flags.HasFlagSet(dem.PropFlagCoordMP):
		return float64(r.ReadBitCoordMP(false, false))
	case prop.Flags.HasFlagSet(dem.PropFlagCoordMPLP):
		return float64(r.ReadBitCoordMP(false, true))
	case prop.Flags.HasFlagSet(dem.PropFlagCoordMPInt):
		return float64(r.ReadBitCoordMP(true, false))
	case prop.Flags.HasFlagSet(dem.PropFlagNoScale):
		return float64(r.ReadFloat())
	case prop.Flags.HasFlagSet(dem.PropFlagNormal):
		return float64(r.ReadBitNormal())
	default:
		return float64(r.ReadBitCellCoord(prop.NumBits,
			prop.Flags.HasFlagSet(dem.PropFlagCellCoord),
			prop.Flags.HasFlagSet(dem.PropFlagCellCoordLP)))
	}
}

func decodeVector(prop *dem.SendTableProperty, r *bitread.BitReader) demcore.Vector {
	v := demcore.Vector{
		X: decodeFloat(prop, r),
		Y: decodeFloat(prop, r),
	}

	if !prop.Flags.HasFlagSet(dem.PropFlagNormal) {
		v.Z = decodeFloat(prop, r)
		return v
	}

	// Unit vectors ship only x and y; z is reconstructed up to its sign.
	absolute := v.X*v.X + v.Y*v.Y
	isNeg := r.ReadBit()
	if absolute < 1 {
		v.Z = math.Sqrt(1 - absolute)
		if isNeg {
			v.Z = -v.Z
		}
	}
	return v
}

func decodeVectorXY(prop *dem.SendTableProperty, r *bitread.BitReader) demcore.Vector {
	return demcore.Vector{
		X: decodeFloat(prop, r),
		Y: decodeFloat(prop, r),
	}
}

func decodeString(r *bitread.BitReader) string {
	length := int(r.ReadInt(9))
	if length > 512 {
		length = 512
	}
	return r.ReadCString(length)
}

func decodeArray(entry *dem.FlattenedPropEntry, r *bitread.BitReader) []dem.PropValue {
	if entry.ArrayElemProp == nil {
		panic(fmt.Errorf("%w: array prop %q without element descriptor", ErrSchemaMismatch, entry.Name))
	}

	numBits := int(math.Floor(math.Log2(float64(entry.Prop.NumElems)) + 1))
	count := int(r.ReadInt(numBits))

	res := make([]dem.PropValue, count)
	tmp := dem.Property{
		Entry: &dem.FlattenedPropEntry{Prop: *entry.ArrayElemProp},
	}
	for i := range res {
		decodeProp(&tmp, r)
		res[i] = tmp.Value
	}
	return res
}
