package vm

import (
	"math"
	"unsafe"
)

// Value represents a luna value.
//
// A Value is a small struct that is passed and stored by copy. Scalars and
// short strings live inline. Mid strings, long strings, tables and functions
// carry a pointer to storage shared by every copy of the Value.
//
// Layout:
//   - kind: the storage variant
//   - slen, sbuf: length and bytes of a short string (inline, no allocation)
//   - bits: payload for booleans, integers and floats
//   - obj: *midString, *longString, *Table or *Function
//
// The zero Value is nil.
type Value struct {
	kind Kind
	slen uint8
	sbuf [ShortStrMax]byte
	bits uint64
	obj  unsafe.Pointer
}

// Kind identifies the storage variant of a Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindBoolean
	KindInteger
	KindFloat
	KindShortString
	KindMidString
	KindLongString
	KindTable
	KindFunction
)

var kindNames = [...]string{
	KindNil:         "nil",
	KindBoolean:     "boolean",
	KindInteger:     "integer",
	KindFloat:       "float",
	KindShortString: "short string",
	KindMidString:   "mid string",
	KindLongString:  "long string",
	KindTable:       "table",
	KindFunction:    "function",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Type is the script-visible type of a Value. Integer and float share
// "number"; the three string size classes share "string".
type Type string

const (
	TypeNil      Type = "nil"
	TypeBoolean  Type = "boolean"
	TypeNumber   Type = "number"
	TypeString   Type = "string"
	TypeTable    Type = "table"
	TypeFunction Type = "function"
)

// Nil is the nil value.
var Nil = Value{}

// Pre-built booleans.
var (
	True  = Value{kind: KindBoolean, bits: 1}
	False = Value{kind: KindBoolean}
)

// Kind returns the storage variant of v.
func (v Value) Kind() Kind { return v.kind }

// Type returns the script-visible type of v.
func (v Value) Type() Type {
	switch v.kind {
	case KindBoolean:
		return TypeBoolean
	case KindInteger, KindFloat:
		return TypeNumber
	case KindShortString, KindMidString, KindLongString:
		return TypeString
	case KindTable:
		return TypeTable
	case KindFunction:
		return TypeFunction
	default:
		return TypeNil
	}
}

// ---------------------------------------------------------------------------
// Type checking
// ---------------------------------------------------------------------------

func (v Value) IsNil() bool   { return v.kind == KindNil }
func (v Value) IsBool() bool  { return v.kind == KindBoolean }
func (v Value) IsInt() bool   { return v.kind == KindInteger }
func (v Value) IsFloat() bool { return v.kind == KindFloat }

// IsNumber returns true for integers and floats.
func (v Value) IsNumber() bool { return v.kind == KindInteger || v.kind == KindFloat }

// IsString returns true for all three string size classes.
func (v Value) IsString() bool {
	return v.kind == KindShortString || v.kind == KindMidString || v.kind == KindLongString
}

func (v Value) IsTable() bool    { return v.kind == KindTable }
func (v Value) IsFunction() bool { return v.kind == KindFunction }

// IsFalsy returns true for nil and false. Every other value, including 0 and
// the empty string, is truthy.
func (v Value) IsFalsy() bool {
	return v.kind == KindNil || (v.kind == KindBoolean && v.bits == 0)
}

// IsTruthy is the negation of IsFalsy.
func (v Value) IsTruthy() bool { return !v.IsFalsy() }

// ---------------------------------------------------------------------------
// Booleans
// ---------------------------------------------------------------------------

// FromBool creates a Value from a bool.
func FromBool(b bool) Value {
	if b {
		return True
	}
	return False
}

// Bool returns v as a bool.
// Panics if v is not a boolean.
func (v Value) Bool() bool {
	if v.kind != KindBoolean {
		panic(&AccessError{Op: "Bool", Want: "boolean", Kind: v.kind})
	}
	return v.bits != 0
}

// AsBool returns v as a bool, or false and false if v is not a boolean.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBoolean {
		return false, false
	}
	return v.bits != 0, true
}

// ---------------------------------------------------------------------------
// Integers
// ---------------------------------------------------------------------------

// FromInt creates a Value from an int64.
func FromInt(n int64) Value {
	return Value{kind: KindInteger, bits: uint64(n)}
}

// Int returns v as an int64.
// Panics if v is not an integer.
func (v Value) Int() int64 {
	if v.kind != KindInteger {
		panic(&AccessError{Op: "Int", Want: "integer", Kind: v.kind})
	}
	return int64(v.bits)
}

// AsInt returns v as an int64, or 0 and false if v is not an integer.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInteger {
		return 0, false
	}
	return int64(v.bits), true
}

// ---------------------------------------------------------------------------
// Floats
// ---------------------------------------------------------------------------

// FromFloat creates a Value from a float64.
func FromFloat(f float64) Value {
	return Value{kind: KindFloat, bits: math.Float64bits(f)}
}

// Float64 returns v as a float64.
// Panics if v is not a float.
func (v Value) Float64() float64 {
	if v.kind != KindFloat {
		panic(&AccessError{Op: "Float64", Want: "float", Kind: v.kind})
	}
	return math.Float64frombits(v.bits)
}

// AsFloat returns v as a float64, or 0 and false if v is not a float.
func (v Value) AsFloat() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return math.Float64frombits(v.bits), true
}

// FloatToInt reports whether f has an exact int64 representation and returns
// it. NaN, the infinities, fractional values and anything outside
// [-2^63, 2^63) have none.
func FloatToInt(f float64) (int64, bool) {
	// -2^63 is exact in float64; 2^63 is the first value out of range.
	if !(f >= -(1<<63) && f < 1<<63) {
		return 0, false
	}
	n := int64(f)
	if float64(n) != f {
		return 0, false
	}
	return n, true
}

// ---------------------------------------------------------------------------
// Tables
// ---------------------------------------------------------------------------

// FromTable wraps t in a Value. Every Value made from the same *Table refers
// to the same table.
func FromTable(t *Table) Value {
	if t == nil {
		return Nil
	}
	return Value{kind: KindTable, obj: unsafe.Pointer(t)}
}

// NewTableValue creates a new Table with the given capacity hints and
// returns it as a Value.
func NewTableValue(narray, nmap int) Value {
	return FromTable(NewTable(narray, nmap))
}

// Table returns the table v refers to.
// Panics if v is not a table.
func (v Value) Table() *Table {
	if v.kind != KindTable {
		panic(&AccessError{Op: "Table", Want: "table", Kind: v.kind})
	}
	return (*Table)(v.obj)
}

// AsTable returns the table v refers to, or nil and false.
func (v Value) AsTable() (*Table, bool) {
	if v.kind != KindTable {
		return nil, false
	}
	return (*Table)(v.obj), true
}

// ---------------------------------------------------------------------------
// Functions
// ---------------------------------------------------------------------------

// FromFunction wraps f in a Value.
func FromFunction(f *Function) Value {
	if f == nil {
		return Nil
	}
	return Value{kind: KindFunction, obj: unsafe.Pointer(f)}
}

// Function returns the native function v refers to.
// Panics if v is not a function.
func (v Value) Function() *Function {
	if v.kind != KindFunction {
		panic(&AccessError{Op: "Function", Want: "function", Kind: v.kind})
	}
	return (*Function)(v.obj)
}

// AsFunction returns the native function v refers to, or nil and false.
func (v Value) AsFunction() (*Function, bool) {
	if v.kind != KindFunction {
		return nil, false
	}
	return (*Function)(v.obj), true
}
