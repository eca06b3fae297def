package stack

import (
	"github.com/min1324/nanok/kernel"
)

// The original kernel surface exposes one entry point per calling context,
// several of which share an implementation. The context-named forms are
// kept so call sites can state what they are, and so the variants can
// diverge later without a call-site migration.

// ISRPush pushes from an interrupt handler. Identical to Push.
func (s *Stack) ISRPush(v kernel.Word) { s.Push(v) }

// FiberPush pushes from a fiber. Identical to Push.
func (s *Stack) FiberPush(v kernel.Word) { s.Push(v) }

// ISRPop pops without blocking from an interrupt handler. Identical to Pop.
func (s *Stack) ISRPop() (kernel.Word, bool) { return s.Pop() }

// FiberPop pops without blocking from a fiber. Identical to Pop.
func (s *Stack) FiberPop() (kernel.Word, bool) { return s.Pop() }

// TaskPop pops without blocking from the task context. Identical to Pop.
func (s *Stack) TaskPop() (kernel.Word, bool) { return s.Pop() }

// Top returns the top data word without consuming it.
// It reports false if the stack is empty.
func (s *Stack) Top() (v kernel.Word, ok bool) {
	key := s.k.Lock()
	if s.next > 0 {
		v = s.data[s.next-1]
		ok = true
	}
	s.k.Unlock(key)
	return v, ok
}

// Size returns the number of buffered data words. A value parked in a
// waiter's pending-return slot is not buffered and does not count.
func (s *Stack) Size() int {
	key := s.k.Lock()
	n := s.next
	s.k.Unlock(key)
	return n
}

// Empty reports whether no data words are buffered.
func (s *Stack) Empty() bool {
	return s.Size() == 0
}

// Full reports whether the backing buffer is at capacity. Push does not
// perform this check; it exists for callers that want to.
func (s *Stack) Full() bool {
	key := s.k.Lock()
	full := s.next == len(s.data)
	s.k.Unlock(key)
	return full
}

// Cap returns the capacity of the backing buffer.
func (s *Stack) Cap() int {
	return len(s.data)
}
