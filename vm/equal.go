package vm

import (
	"bytes"
	"math"
)

// Equal reports whether a and b are equal under script equality:
//
//   - nil equals nil; booleans and integers compare by value
//   - an integer equals a float only when the float converts to exactly
//     that integer and back (see FloatToInt)
//   - floats use IEEE comparison, so NaN is never equal to itself
//   - strings compare by content whatever their size class
//   - tables and functions compare by identity
//
// Values of different categories are never equal.
func Equal(a, b Value) bool {
	switch a.kind {
	case KindNil:
		return b.kind == KindNil
	case KindBoolean:
		return b.kind == KindBoolean && a.bits == b.bits
	case KindInteger:
		switch b.kind {
		case KindInteger:
			return a.bits == b.bits
		case KindFloat:
			return intEqualsFloat(int64(a.bits), math.Float64frombits(b.bits))
		}
		return false
	case KindFloat:
		switch b.kind {
		case KindFloat:
			return math.Float64frombits(a.bits) == math.Float64frombits(b.bits)
		case KindInteger:
			return intEqualsFloat(int64(b.bits), math.Float64frombits(a.bits))
		}
		return false
	case KindShortString, KindMidString, KindLongString:
		bb, ok := b.content()
		if !ok {
			return false
		}
		ab, _ := a.content()
		return bytes.Equal(ab, bb)
	case KindTable, KindFunction:
		return a.kind == b.kind && a.obj == b.obj
	}
	return false
}

// Equal reports whether v equals other. See Equal.
func (v Value) Equal(other Value) bool {
	return Equal(v, other)
}

// Same reports whether a and b are equal without numeric coercion: the
// integer 1 and the float 1.0 are Equal but not Same. String size classes
// are storage detail and do not make otherwise equal strings differ.
func Same(a, b Value) bool {
	if a.Type() != b.Type() {
		return false
	}
	if a.IsNumber() && a.kind != b.kind {
		return false
	}
	return Equal(a, b)
}

func intEqualsFloat(i int64, f float64) bool {
	n, ok := FloatToInt(f)
	return ok && n == i
}
