package interp

// DefaultStackCapacity is the stack capacity used when none is configured.
const DefaultStackCapacity = 100

// Stack is a fixed-capacity value stack.
type Stack struct {
	values []int64
	sp     int
}

// NewStack returns an empty stack holding at most capacity values.
func NewStack(capacity int) Stack {
	return Stack{values: make([]int64, capacity)}
}

// Len returns the stack height.
func (s *Stack) Len() int { return s.sp }

// Cap returns the stack capacity.
func (s *Stack) Cap() int { return len(s.values) }

// Values returns the live values, bottom first. The slice aliases the stack.
func (s *Stack) Values() []int64 { return s.values[:s.sp] }

// Reset empties the stack.
func (s *Stack) Reset() { s.sp = 0 }

// Push pushes v.
func (s *Stack) Push(v int64) error {
	if s.sp == len(s.values) {
		return TrapStackOverflow
	}
	s.values[s.sp] = v
	s.sp++
	return nil
}

// Pop removes and returns the top value.
func (s *Stack) Pop() (int64, error) {
	if s.sp == 0 {
		return 0, TrapStackUnderflow
	}
	s.sp--
	return s.values[s.sp], nil
}

// Peek returns the top value.
func (s *Stack) Peek() (int64, error) {
	if s.sp == 0 {
		return 0, TrapStackUnderflow
	}
	return s.values[s.sp-1], nil
}

// Get returns the n-th value from the bottom.
func (s *Stack) Get(n uint32) (int64, error) {
	if uint64(n) >= uint64(s.sp) {
		return 0, TrapLocalOutOfBounds
	}
	return s.values[n], nil
}

// Set replaces the n-th value from the bottom.
func (s *Stack) Set(n uint32, v int64) error {
	if uint64(n) >= uint64(s.sp) {
		return TrapLocalOutOfBounds
	}
	s.values[n] = v
	return nil
}
