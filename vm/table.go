package vm

import (
	"fmt"
	"math"

	"github.com/tliron/commonlog"
)

// log returns the package logger. It is looked up per call because the
// backend is installed by the binary after this package is initialized.
func log() commonlog.Logger { return commonlog.GetLogger("luna.vm") }

// ---------------------------------------------------------------------------
// Table: hybrid array + map aggregate
// ---------------------------------------------------------------------------

// Table is the single aggregate type. It keeps a dense array part for the
// integer keys 1..n and a hash part for everything else. Both parts hold
// Values and share one identity: every Value made from the table refers to
// the same instance, and mutation through any of them is seen by all.
//
// Table is not safe for concurrent use. Reads take a shared borrow and writes
// an exclusive one; a conflicting borrow (for example Set called from inside
// Range) panics with *BorrowError before anything is modified.
type Table struct {
	array []Value
	hash  map[uint64][]tableEntry
	nhash int

	readers int
	writing bool
}

type tableEntry struct {
	key Value
	val Value
}

// NewTable creates an empty table with capacity hints for both parts.
func NewTable(narray, nmap int) *Table {
	if narray < 0 {
		narray = 0
	}
	if nmap < 0 {
		nmap = 0
	}
	return &Table{
		array: make([]Value, 0, narray),
		hash:  make(map[uint64][]tableEntry, nmap),
	}
}

// ---------------------------------------------------------------------------
// Borrow tracking
// ---------------------------------------------------------------------------

// TryBorrow takes a shared borrow. The returned release func must be called
// exactly once.
func (t *Table) TryBorrow() (release func(), err error) {
	if t.writing {
		return nil, &BorrowError{Held: "mutably", Wanted: "immutably"}
	}
	t.readers++
	return func() { t.readers-- }, nil
}

// TryBorrowMut takes an exclusive borrow. The returned release func must be
// called exactly once.
func (t *Table) TryBorrowMut() (release func(), err error) {
	switch {
	case t.writing:
		return nil, &BorrowError{Held: "mutably", Wanted: "mutably"}
	case t.readers > 0:
		return nil, &BorrowError{Held: "immutably", Wanted: "mutably"}
	}
	t.writing = true
	return func() { t.writing = false }, nil
}

func (t *Table) borrow() {
	if t.writing {
		panic(&BorrowError{Held: "mutably", Wanted: "immutably"})
	}
	t.readers++
}

func (t *Table) unborrow() { t.readers-- }

func (t *Table) borrowMut() {
	switch {
	case t.writing:
		panic(&BorrowError{Held: "mutably", Wanted: "mutably"})
	case t.readers > 0:
		panic(&BorrowError{Held: "immutably", Wanted: "mutably"})
	}
	t.writing = true
}

func (t *Table) unborrowMut() { t.writing = false }

// ---------------------------------------------------------------------------
// Keys
// ---------------------------------------------------------------------------

// normalizeKey maps float keys with an exact integer value to that integer,
// so 2.0 and 2 address the same slot.
func normalizeKey(k Value) Value {
	if k.kind == KindFloat {
		if n, ok := FloatToInt(math.Float64frombits(k.bits)); ok {
			return FromInt(n)
		}
	}
	return k
}

// arrayIndex returns the 0-based array slot for k, if k is an integer key in
// 1..limit.
func arrayIndex(k Value, limit int) (int, bool) {
	if k.kind != KindInteger {
		return 0, false
	}
	n := int64(k.bits)
	if n < 1 || n > int64(limit) {
		return 0, false
	}
	return int(n - 1), true
}

func checkKey(k Value) error {
	switch {
	case k.kind == KindNil:
		return fmt.Errorf("table index is nil: %w", ErrInvalidKey)
	case k.kind == KindFloat && math.IsNaN(math.Float64frombits(k.bits)):
		return fmt.Errorf("table index is NaN: %w", ErrInvalidKey)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

// Get returns the value stored under key, or Nil.
func (t *Table) Get(key Value) Value {
	t.borrow()
	defer t.unborrow()

	key = normalizeKey(key)
	if i, ok := arrayIndex(key, len(t.array)); ok {
		return t.array[i]
	}
	if e := t.find(key); e != nil {
		return e.val
	}
	return Nil
}

// GetInt is Get with an integer key.
func (t *Table) GetInt(i int64) Value {
	return t.Get(FromInt(i))
}

// GetString is Get with a string key.
func (t *Table) GetString(s string) Value {
	return t.Get(FromString(s))
}

// ArrayLen returns the size of the array part, holes included.
func (t *Table) ArrayLen() int {
	t.borrow()
	defer t.unborrow()
	return len(t.array)
}

// MapLen returns the number of entries in the hash part.
func (t *Table) MapLen() int {
	t.borrow()
	defer t.unborrow()
	return t.nhash
}

// Len returns the border of the table: the size of the array part. Trailing
// nils are never kept in the array part, so Get(Len()) is non-nil whenever
// Len() > 0.
func (t *Table) Len() int {
	return t.ArrayLen()
}

// Array returns a copy of the array part.
func (t *Table) Array() []Value {
	t.borrow()
	defer t.unborrow()
	out := make([]Value, len(t.array))
	copy(out, t.array)
	return out
}

// Range calls fn for every non-nil entry, array part first in index order,
// then the hash part in unspecified order. Iteration stops when fn returns
// false. The table is borrowed for the whole iteration, so fn must not
// modify it.
func (t *Table) Range(fn func(k, v Value) bool) {
	t.borrow()
	defer t.unborrow()

	for i, v := range t.array {
		if v.kind == KindNil {
			continue
		}
		if !fn(FromInt(int64(i+1)), v) {
			return
		}
	}
	for _, bucket := range t.hash {
		for _, e := range bucket {
			if !fn(e.key, e.val) {
				return
			}
		}
	}
}

func (t *Table) find(key Value) *tableEntry {
	bucket := t.hash[Hash(key)]
	for i := range bucket {
		if Equal(bucket[i].key, key) {
			return &bucket[i]
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Writes
// ---------------------------------------------------------------------------

// Set stores val under key. A nil val removes the key. Nil and NaN keys are
// rejected with an error wrapping ErrInvalidKey.
//
// Integer keys in 1..ArrayLen()+1 live in the array part. Appending at
// ArrayLen()+1 also pulls the following integer keys out of the hash part
// while they are contiguous.
func (t *Table) Set(key, val Value) error {
	if err := checkKey(key); err != nil {
		return err
	}
	t.borrowMut()
	defer t.unborrowMut()

	t.set(normalizeKey(key), val)
	return nil
}

// SetInt is Set with an integer key. It cannot fail.
func (t *Table) SetInt(i int64, val Value) {
	_ = t.Set(FromInt(i), val)
}

// SetString is Set with a string key. It cannot fail.
func (t *Table) SetString(s string, val Value) {
	_ = t.Set(FromString(s), val)
}

// Remove deletes key and returns the value it held, or Nil.
func (t *Table) Remove(key Value) Value {
	if checkKey(key) != nil {
		return Nil
	}
	t.borrowMut()
	defer t.unborrowMut()

	key = normalizeKey(key)
	var old Value
	if i, ok := arrayIndex(key, len(t.array)); ok {
		old = t.array[i]
	} else if e := t.find(key); e != nil {
		old = e.val
	}
	if old.kind != KindNil {
		t.set(key, Nil)
	}
	return old
}

// Append stores val at ArrayLen()+1. Appending nil is a no-op.
func (t *Table) Append(val Value) {
	t.borrowMut()
	defer t.unborrowMut()

	if val.kind == KindNil {
		return
	}
	t.set(FromInt(int64(len(t.array)+1)), val)
}

func (t *Table) set(key, val Value) {
	if i, ok := arrayIndex(key, len(t.array)); ok {
		t.array[i] = val
		if val.kind == KindNil && i == len(t.array)-1 {
			t.trimArray()
		}
		return
	}
	if key.kind == KindInteger && int64(key.bits) == int64(len(t.array))+1 {
		// len+1 is never held by the hash part; migrateFromHash keeps it so.
		if val.kind == KindNil {
			return
		}
		t.array = append(t.array, val)
		t.migrateFromHash()
		return
	}
	if val.kind == KindNil {
		t.deleteHash(key)
		return
	}
	t.putHash(key, val)
}

// trimArray drops trailing nils from the array part.
func (t *Table) trimArray() {
	n := len(t.array)
	for n > 0 && t.array[n-1].kind == KindNil {
		n--
	}
	clear(t.array[n:])
	t.array = t.array[:n]
}

// migrateFromHash moves keys len+1, len+2, ... from the hash part into the
// array part while they are present.
func (t *Table) migrateFromHash() {
	moved := 0
	for t.nhash > 0 {
		next := FromInt(int64(len(t.array)) + 1)
		e := t.find(next)
		if e == nil {
			break
		}
		val := e.val
		t.deleteHash(next)
		t.array = append(t.array, val)
		moved++
	}
	if moved > 0 {
		log().Debugf("table %p: migrated %d keys to array part (len %d)", t, moved, len(t.array))
	}
}

func (t *Table) putHash(key, val Value) {
	h := Hash(key)
	bucket := t.hash[h]
	for i := range bucket {
		if Equal(bucket[i].key, key) {
			bucket[i].val = val
			return
		}
	}
	t.hash[h] = append(bucket, tableEntry{key: key, val: val})
	t.nhash++
}

func (t *Table) deleteHash(key Value) {
	h := Hash(key)
	bucket := t.hash[h]
	for i := range bucket {
		if !Equal(bucket[i].key, key) {
			continue
		}
		last := len(bucket) - 1
		bucket[i] = bucket[last]
		bucket[last] = tableEntry{}
		if last == 0 {
			delete(t.hash, h)
		} else {
			t.hash[h] = bucket[:last]
		}
		t.nhash--
		return
	}
}
