package vm

import (
	"errors"
	"math"
	"testing"
	"unsafe"
)

// ---------------------------------------------------------------------------
// Layout
// ---------------------------------------------------------------------------

func TestValueSize(t *testing.T) {
	// kind + slen + 14 inline bytes + payload + pointer
	if got := unsafe.Sizeof(Value{}); got != 32 {
		t.Errorf("Sizeof(Value) = %d, want 32", got)
	}
}

func TestZeroValueIsNil(t *testing.T) {
	var v Value
	if !v.IsNil() {
		t.Error("zero Value should be nil")
	}
	if v.Kind() != KindNil || v.Type() != TypeNil {
		t.Errorf("zero Value kind/type = %s/%s", v.Kind(), v.Type())
	}
}

// ---------------------------------------------------------------------------
// Scalars
// ---------------------------------------------------------------------------

func TestBoolRoundTrip(t *testing.T) {
	for _, b := range []bool{true, false} {
		v := FromBool(b)
		if !v.IsBool() {
			t.Errorf("FromBool(%v).IsBool() = false", b)
		}
		if v.Bool() != b {
			t.Errorf("FromBool(%v).Bool() = %v", b, v.Bool())
		}
	}
	if FromBool(true) != True || FromBool(false) != False {
		t.Error("FromBool should return the shared True/False values")
	}
}

func TestIntRoundTrip(t *testing.T) {
	tests := []int64{0, 1, -1, 42, -42, math.MaxInt64, math.MinInt64}
	for _, n := range tests {
		v := FromInt(n)
		if !v.IsInt() || !v.IsNumber() {
			t.Errorf("FromInt(%d) should be an integer number", n)
			continue
		}
		if got := v.Int(); got != n {
			t.Errorf("FromInt(%d).Int() = %d", n, got)
		}
		if v.Type() != TypeNumber {
			t.Errorf("FromInt(%d).Type() = %s, want number", n, v.Type())
		}
	}
}

func TestFloatRoundTrip(t *testing.T) {
	tests := []float64{
		0.0,
		math.Copysign(0, -1),
		1.5,
		-3.14159265358979,
		math.MaxFloat64,
		math.SmallestNonzeroFloat64,
		math.Inf(1),
		math.Inf(-1),
	}
	for _, f := range tests {
		v := FromFloat(f)
		if !v.IsFloat() {
			t.Errorf("FromFloat(%v).IsFloat() = false", f)
			continue
		}
		got := v.Float64()
		if math.Float64bits(got) != math.Float64bits(f) {
			t.Errorf("FromFloat(%v).Float64() = %v", f, got)
		}
	}

	nan := FromFloat(math.NaN())
	if !math.IsNaN(nan.Float64()) {
		t.Error("NaN roundtrip failed")
	}
}

func TestFloatToInt(t *testing.T) {
	tests := []struct {
		f    float64
		want int64
		ok   bool
	}{
		{0, 0, true},
		{math.Copysign(0, -1), 0, true},
		{1, 1, true},
		{-7, -7, true},
		{1.5, 0, false},
		{-(1 << 63), math.MinInt64, true},
		{1 << 63, 0, false},
		{1 << 53, 1 << 53, true},
		{math.NaN(), 0, false},
		{math.Inf(1), 0, false},
		{math.Inf(-1), 0, false},
		{1e300, 0, false},
	}
	for _, tt := range tests {
		got, ok := FloatToInt(tt.f)
		if ok != tt.ok || got != tt.want {
			t.Errorf("FloatToInt(%v) = %d, %v, want %d, %v", tt.f, got, ok, tt.want, tt.ok)
		}
	}
}

// ---------------------------------------------------------------------------
// Type checks and truthiness
// ---------------------------------------------------------------------------

func TestTypeChecks(t *testing.T) {
	tbl := NewTableValue(0, 0)
	fn := NewFunction("f", func(State) int { return 0 })
	tests := []struct {
		v    Value
		kind Kind
		typ  Type
	}{
		{Nil, KindNil, TypeNil},
		{True, KindBoolean, TypeBoolean},
		{FromInt(1), KindInteger, TypeNumber},
		{FromFloat(1), KindFloat, TypeNumber},
		{FromString("short"), KindShortString, TypeString},
		{FromString("a string of mid size class"), KindMidString, TypeString},
		{FromString(string(make([]byte, 100))), KindLongString, TypeString},
		{tbl, KindTable, TypeTable},
		{fn, KindFunction, TypeFunction},
	}
	for _, tt := range tests {
		if tt.v.Kind() != tt.kind {
			t.Errorf("%#v.Kind() = %s, want %s", tt.v, tt.v.Kind(), tt.kind)
		}
		if tt.v.Type() != tt.typ {
			t.Errorf("%#v.Type() = %s, want %s", tt.v, tt.v.Type(), tt.typ)
		}
		if tt.v.IsString() != (tt.typ == TypeString) {
			t.Errorf("%#v.IsString() = %v", tt.v, tt.v.IsString())
		}
	}
}

func TestTruthiness(t *testing.T) {
	falsy := []Value{Nil, False}
	truthy := []Value{True, FromInt(0), FromFloat(0), FromString(""), NewTableValue(0, 0)}
	for _, v := range falsy {
		if !v.IsFalsy() || v.IsTruthy() {
			t.Errorf("%#v should be falsy", v)
		}
	}
	for _, v := range truthy {
		if v.IsFalsy() || !v.IsTruthy() {
			t.Errorf("%#v should be truthy", v)
		}
	}
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func TestAccessorsPanicOnWrongKind(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"Bool", func() { FromInt(1).Bool() }},
		{"Int", func() { FromFloat(1).Int() }},
		{"Float64", func() { FromInt(1).Float64() }},
		{"Table", func() { Nil.Table() }},
		{"Function", func() { FromString("f").Function() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				err, ok := r.(error)
				if !ok {
					t.Fatalf("panic value = %v, want error", r)
				}
				var ae *AccessError
				if !errors.As(err, &ae) || ae.Op != tt.name {
					t.Errorf("panic = %v, want *AccessError for %s", err, tt.name)
				}
				if !errors.Is(err, ErrInvalidAccess) {
					t.Error("AccessError should wrap ErrInvalidAccess")
				}
			}()
			tt.fn()
		})
	}
}

func TestAsProbes(t *testing.T) {
	if _, ok := FromInt(1).AsFloat(); ok {
		t.Error("AsFloat on integer should fail")
	}
	if f, ok := FromFloat(2.5).AsFloat(); !ok || f != 2.5 {
		t.Errorf("AsFloat = %v, %v", f, ok)
	}
	if n, ok := FromInt(3).AsInt(); !ok || n != 3 {
		t.Errorf("AsInt = %v, %v", n, ok)
	}
	if b, ok := True.AsBool(); !ok || !b {
		t.Errorf("AsBool = %v, %v", b, ok)
	}
	if _, ok := FromString("x").AsTable(); ok {
		t.Error("AsTable on string should fail")
	}
	if _, ok := Nil.AsFunction(); ok {
		t.Error("AsFunction on nil should fail")
	}
}

func TestFromNilPointers(t *testing.T) {
	if !FromTable(nil).IsNil() {
		t.Error("FromTable(nil) should be nil")
	}
	if !FromFunction(nil).IsNil() {
		t.Error("FromFunction(nil) should be nil")
	}
}

func TestKindString(t *testing.T) {
	if KindMidString.String() != "mid string" {
		t.Errorf("KindMidString.String() = %q", KindMidString.String())
	}
	if Kind(200).String() != "unknown" {
		t.Errorf("Kind(200).String() = %q", Kind(200).String())
	}
}
