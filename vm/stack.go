package vm

// Stack is a minimal growable value stack implementing State. The
// interpreter keeps its own frames; Stack is enough to drive native
// functions from Go code and tests.
type Stack struct {
	values []Value
}

// NewStack creates a stack holding args, in order.
func NewStack(args ...Value) *Stack {
	s := &Stack{values: make([]Value, 0, len(args)+4)}
	s.values = append(s.values, args...)
	return s
}

func (s *Stack) Top() int { return len(s.values) }

func (s *Stack) Index(i int) Value {
	if i < 1 || i > len(s.values) {
		return Nil
	}
	return s.values[i-1]
}

func (s *Stack) Push(v Value) {
	s.values = append(s.values, v)
}

// Pop removes and returns the top value, or Nil on an empty stack.
func (s *Stack) Pop() Value {
	if len(s.values) == 0 {
		return Nil
	}
	v := s.values[len(s.values)-1]
	s.values[len(s.values)-1] = Nil
	s.values = s.values[:len(s.values)-1]
	return v
}

// Results returns the top n values in push order.
func (s *Stack) Results(n int) []Value {
	if n > len(s.values) {
		n = len(s.values)
	}
	if n <= 0 {
		return nil
	}
	out := make([]Value, n)
	copy(out, s.values[len(s.values)-n:])
	return out
}
