package vm

import (
	"fmt"
	"strings"
	"unicode/utf8"
	"unsafe"

	"golang.org/x/text/encoding/unicode"
)

// String size classes. The class is chosen only by byte length when a string
// Value is built:
//
//	len <= ShortStrMax               short: inline in the Value
//	ShortStrMax < len <= MidStrMax   mid:   shared fixed-size buffer
//	len > MidStrMax                  long:  shared heap slice
//
// Equality and hashing look at the bytes only, never at the class.
const (
	ShortStrMax = 14
	MidStrMax   = 47
)

// midString is the shared buffer behind a mid string. It is never modified
// after construction.
type midString struct {
	n   uint8
	buf [MidStrMax]byte
}

// longString is the shared buffer behind a long string. It is never modified
// after construction.
type longString struct {
	b []byte
}

// FromString creates a string Value holding the bytes of s.
func FromString(s string) Value {
	return encodeString(s)
}

// FromBytes creates a string Value holding a copy of b. The caller may reuse
// b afterwards.
func FromBytes(b []byte) Value {
	return encodeString(b)
}

func encodeString[T string | []byte](s T) Value {
	n := len(s)
	switch {
	case n <= ShortStrMax:
		v := Value{kind: KindShortString, slen: uint8(n)}
		copy(v.sbuf[:], s)
		return v
	case n <= MidStrMax:
		m := &midString{n: uint8(n)}
		copy(m.buf[:], s)
		return Value{kind: KindMidString, obj: unsafe.Pointer(m)}
	default:
		b := make([]byte, n)
		copy(b, s)
		return Value{kind: KindLongString, obj: unsafe.Pointer(&longString{b: b})}
	}
}

// content returns the bytes of a string Value without copying. ok is false
// for non-strings.
func (v *Value) content() (b []byte, ok bool) {
	switch v.kind {
	case KindShortString:
		return v.sbuf[:v.slen:v.slen], true
	case KindMidString:
		m := (*midString)(v.obj)
		return m.buf[:m.n:m.n], true
	case KindLongString:
		return (*longString)(v.obj).b, true
	}
	return nil, false
}

// Bytes returns the content of a string Value. The slice may share storage
// with other copies of v and must not be modified.
// Panics with *AccessError if v is not a string.
func (v Value) Bytes() []byte {
	b, ok := v.content()
	if !ok {
		panic(&AccessError{Op: "Bytes", Want: "string", Kind: v.kind})
	}
	return b
}

// AsBytes returns the content of a string Value, or nil and false.
func (v Value) AsBytes() ([]byte, bool) {
	return v.content()
}

// Len returns the byte length of a string Value, or 0 for anything else.
func (v Value) Len() int {
	b, _ := v.content()
	return len(b)
}

// Text returns the content of a string Value as validated UTF-8 text.
// Invalid sequences are reported as an error wrapping ErrInvalidEncoding.
// Panics with *AccessError if v is not a string.
func (v Value) Text() (string, error) {
	b, ok := v.content()
	if !ok {
		panic(&AccessError{Op: "Text", Want: "string", Kind: v.kind})
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("Value.Text: %q: %w", b, ErrInvalidEncoding)
	}
	return string(b), nil
}

// LossyText returns the content of a string Value as UTF-8 text, replacing
// each invalid byte with U+FFFD.
// Panics with *AccessError if v is not a string.
func (v Value) LossyText() string {
	b, ok := v.content()
	if !ok {
		panic(&AccessError{Op: "LossyText", Want: "string", Kind: v.kind})
	}
	return lossy(b)
}

func lossy(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), string(utf8.RuneError))
	}
	return string(out)
}
