package vm

import "unsafe"

const (
	memValue      = int64(unsafe.Sizeof(Value{}))
	memMidString  = int64(unsafe.Sizeof(midString{}))
	memLongHead   = int64(unsafe.Sizeof(longString{}))
	memTableHead  = int64(unsafe.Sizeof(Table{}))
	memTableEntry = int64(unsafe.Sizeof(tableEntry{}))
	memFunction   = int64(unsafe.Sizeof(Function{}))
)

// Footprint estimates the heap bytes owned by v's storage, not counting the
// Value itself. Shared storage is charged in full to every Value that refers
// to it, and tables are measured shallowly: nested tables and strings stored
// in a table are not followed.
//
// Nil, booleans, numbers and short strings cost nothing.
func Footprint(v Value) int64 {
	switch v.kind {
	case KindMidString:
		return memMidString
	case KindLongString:
		return memLongHead + int64(cap((*longString)(v.obj).b))
	case KindTable:
		t := (*Table)(v.obj)
		return memTableHead + int64(cap(t.array))*memValue + int64(t.nhash)*memTableEntry
	case KindFunction:
		return memFunction
	}
	return 0
}

// ValueSize is the size of a Value in bytes.
func ValueSize() int64 { return memValue }
