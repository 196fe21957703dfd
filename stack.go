package dfedit

// StackSize is the number of operands the tape interpreter holds without allocating.
// GPU shaders use a fixed array of this size.
const StackSize = 8

// stack is a LIFO of operands. The first StackSize entries live inline and
// further pushes spill to the heap so deep trees still evaluate on the CPU.
type stack[T any] struct {
	inline [StackSize]T
	spill  []T
	n      int
}

func (s *stack[T]) push(v T) {
	if s.n < StackSize {
		s.inline[s.n] = v
	} else {
		s.spill = append(s.spill, v)
	}
	s.n++
}

func (s *stack[T]) pop() T {
	if s.n == 0 {
		panic("dfedit: pop on empty stack (malformed tape)")
	}
	s.n--
	if s.n < StackSize {
		return s.inline[s.n]
	}
	v := s.spill[len(s.spill)-1]
	s.spill = s.spill[:len(s.spill)-1]
	return v
}

func (s *stack[T]) len() int { return s.n }

func (s *stack[T]) reset() {
	s.n = 0
	s.spill = s.spill[:0]
}
