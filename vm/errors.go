package vm

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use errors.Is to test for them; the concrete errors below
// wrap them with more detail.
var (
	ErrInvalidAccess   = errors.New("invalid value access")
	ErrInvalidEncoding = errors.New("invalid utf-8 encoding")
	ErrBorrowConflict  = errors.New("table already borrowed")
	ErrInvalidKey      = errors.New("invalid table key")
	ErrNotCallable     = errors.New("value is not callable")
)

// AccessError reports an extraction on a Value of the wrong kind, such as
// asking an integer for its string bytes. It is a caller bug, so the
// extraction surface panics with it rather than returning it.
type AccessError struct {
	Op   string
	Want string
	Kind Kind
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("Value.%s: not a %s (%s)", e.Op, e.Want, e.Kind)
}

func (e *AccessError) Unwrap() error { return ErrInvalidAccess }

// BorrowError reports a borrow that conflicts with one already held on the
// same Table.
type BorrowError struct {
	Held   string
	Wanted string
}

func (e *BorrowError) Error() string {
	return fmt.Sprintf("table already %s borrowed, cannot borrow %s", e.Held, e.Wanted)
}

func (e *BorrowError) Unwrap() error { return ErrBorrowConflict }
