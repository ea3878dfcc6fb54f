package vm

import (
	"math"
	"testing"
)

func TestHashAgreesWithEqual(t *testing.T) {
	tbl := NewTableValue(0, 0)
	fn := NewFunction("f", func(State) int { return 0 })
	values := []Value{
		Nil, True, False,
		FromInt(0), FromInt(1), FromInt(-1), FromInt(math.MaxInt64), FromInt(math.MinInt64),
		FromFloat(0), FromFloat(math.Copysign(0, -1)), FromFloat(1), FromFloat(-1),
		FromFloat(1.5), FromFloat(1 << 63), FromFloat(-(1 << 63)), FromFloat(math.Inf(1)),
		FromString(""), FromString("x"), FromString("fourteen bytes"), FromString("fifteen bytes!!"),
		forceStringClass([]byte("x"), KindMidString), forceStringClass([]byte("x"), KindLongString),
		tbl, tbl, FromTable(tbl.Table()), fn, fn,
	}
	for _, a := range values {
		for _, b := range values {
			if Equal(a, b) && Hash(a) != Hash(b) {
				t.Errorf("Equal(%#v, %#v) but hashes differ: %x != %x", a, b, Hash(a), Hash(b))
			}
		}
	}
}

func TestHashFloatCanonicalization(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 42, 1 << 53, math.MinInt64} {
		if Hash(FromInt(n)) != Hash(FromFloat(float64(n))) {
			t.Errorf("Hash(%d) != Hash(%v)", n, float64(n))
		}
	}
	if Hash(FromFloat(0)) != Hash(FromFloat(math.Copysign(0, -1))) {
		t.Error("0.0 and -0.0 should hash alike")
	}
}

func TestHashDistinguishesCommonValues(t *testing.T) {
	// Not required by the contract, but a hash that collides on these would
	// make every table degrade to a list.
	seen := map[uint64]string{}
	values := []Value{Nil, True, False, FromInt(0), FromInt(1), FromInt(2),
		FromFloat(0.5), FromString("a"), FromString("b"), FromString("")}
	for _, v := range values {
		h := v.Hash()
		if prev, ok := seen[h]; ok {
			t.Errorf("Hash(%#v) collides with %s", v, prev)
		}
		seen[h] = v.Debug()
	}
}

func TestHashTablesByIdentity(t *testing.T) {
	a := NewTableValue(0, 0)
	b := NewTableValue(0, 0)
	if Hash(a) == Hash(b) {
		t.Error("distinct tables should (almost certainly) hash differently")
	}
	if Hash(a) != Hash(a) {
		t.Error("hash not stable")
	}
	a.Table().SetString("k", True)
	c := a
	if Hash(c) != Hash(a) {
		t.Error("mutating a table changed its hash")
	}
}
