package vm

import (
	"encoding/binary"
	"math"

	"github.com/zeebo/xxh3"
)

// Fixed hashes for nil and the booleans.
const (
	hashNil   uint64 = 0x9e3779b97f4a7c15
	hashFalse uint64 = 0x6a09e667f3bcc908
	hashTrue  uint64 = 0xbb67ae8584caa73b
)

// Hash computes a hash for v that agrees with Equal: Equal(a, b) implies
// Hash(a) == Hash(b).
//
// Floats with an exact integer value hash as that integer so that 1 and 1.0
// land on the same key. Strings hash their content, so the size class does
// not matter. Tables and functions hash their identity.
func Hash(v Value) uint64 {
	switch v.kind {
	case KindNil:
		return hashNil
	case KindBoolean:
		if v.bits != 0 {
			return hashTrue
		}
		return hashFalse
	case KindInteger:
		return hashWord(v.bits)
	case KindFloat:
		if n, ok := FloatToInt(math.Float64frombits(v.bits)); ok {
			return hashWord(uint64(n))
		}
		return hashWord(v.bits)
	case KindShortString, KindMidString, KindLongString:
		b, _ := v.content()
		return xxh3.Hash(b)
	case KindTable, KindFunction:
		return hashWord(uint64(uintptr(v.obj)))
	}
	return 0
}

// Hash returns Hash(v).
func (v Value) Hash() uint64 {
	return Hash(v)
}

func hashWord(w uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], w)
	return xxh3.Hash(buf[:])
}
