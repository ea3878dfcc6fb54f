package vm

import "fmt"

// State is the view of the execution state a native function gets. Arguments
// are read with Index; results are pushed with Push.
type State interface {
	// Top returns the number of values currently on the stack.
	Top() int
	// Index returns the value at position i (1-based from the bottom of the
	// callee's frame), or Nil when i is out of range.
	Index(i int) Value
	// Push appends v to the stack.
	Push(v Value)
}

// NativeFunc is a Go callback callable from scripts. It returns how many
// results it pushed onto s.
type NativeFunc func(s State) int

// Function is a native function value. A Function is compared and hashed by
// identity: two Values are equal only if they carry the same *Function, even
// when both wrap the same Go func.
type Function struct {
	name string
	fn   NativeFunc
}

// NewFunction creates a native function and returns it as a Value.
// Panics if fn is nil.
func NewFunction(name string, fn NativeFunc) Value {
	if fn == nil {
		panic("NewFunction: nil callback")
	}
	return FromFunction(&Function{name: name, fn: fn})
}

// Name returns the name the function was registered with. It is used only
// for diagnostics.
func (f *Function) Name() string { return f.name }

// Call invokes the function on s and returns its result count.
func (f *Function) Call(s State) int {
	n := f.fn(s)
	if n < 0 {
		panic(fmt.Sprintf("native function %q returned negative result count %d", f.name, n))
	}
	return n
}

// Call invokes v on s if v is a function.
func (v Value) Call(s State) (int, error) {
	f, ok := v.AsFunction()
	if !ok {
		return 0, fmt.Errorf("attempt to call a %s value: %w", v.Type(), ErrNotCallable)
	}
	return f.Call(s), nil
}
