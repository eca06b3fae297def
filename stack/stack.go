package stack

import (
	"github.com/min1324/nanok/kernel"
)

// Stack is a fixed-capacity LIFO kernel object over caller-supplied backing
// storage, with a single-slot waiter field for direct producer-to-consumer
// hand-off. The zero value is not usable; call Init or New first.
//
// The stack borrows the backing buffer for its whole lifetime and performs
// no bounds check on push: the caller guarantees the buffer holds the
// maximum number of items ever pushed before a matching pop. Overflow is a
// contract violation; in this implementation it surfaces as a slice bounds
// panic rather than memory corruption.
type Stack struct {
	k      *kernel.Kernel
	data   []kernel.Word // caller-owned backing storage
	next   int           // one past the highest occupied slot
	waiter *kernel.Fiber // at most one suspended consumer
}

// New returns a stack over buf. See Init.
func New(k *kernel.Kernel, buf []kernel.Word) *Stack {
	s := &Stack{}
	s.Init(k, buf)
	return s
}

// Init initializes the stack over the caller-owned buffer buf and clears
// the waiter slot. No validation of the buffer size is performed. It may be
// called from a fiber or task context; it is not intended for
// interrupt-level invocation.
func (s *Stack) Init(k *kernel.Kernel, buf []kernel.Word) {
	s.k = k
	s.data = buf
	s.next = 0
	s.waiter = nil
}

// Push pushes a data word onto the stack; it may be called from a fiber or
// interrupt context. A fiber pending on the stack is handed the word
// directly and made ready, but is not switched to: this variant never
// yields the calling context.
func (s *Stack) Push(v kernel.Word) {
	key := s.k.Lock()
	if f := s.waiter; f != nil {
		s.waiter = nil
		s.k.SetReturnValue(f, v)
		s.k.Ready(f)
	} else {
		s.data[s.next] = v // unchecked: the caller sizes the buffer
		s.next++
	}
	s.k.Unlock(key)
}

// TaskPush pushes a data word onto the stack; it may be called only from
// the task context. A fiber pending on the stack is handed the word, made
// ready, and switched to immediately: fibers have priority over the task,
// so the task must not run past the point where it made one ready. With no
// waiter it behaves exactly like Push.
func (s *Stack) TaskPush(v kernel.Word) {
	key := s.k.Lock()
	if f := s.waiter; f != nil {
		s.waiter = nil
		s.k.SetReturnValue(f, v)
		s.k.Ready(f)

		// swap into the newly ready fiber
		s.k.YieldTask(key)
		return
	}
	s.data[s.next] = v
	s.next++
	s.k.Unlock(key)
}

// Pop pops the top data word without blocking; it may be called from any
// context. It reports false, leaving v zero, if the stack is empty.
func (s *Stack) Pop() (v kernel.Word, ok bool) {
	key := s.k.Lock()
	if s.next > 0 {
		s.next--
		v = s.data[s.next]
		ok = true
	}
	s.k.Unlock(key)
	return v, ok
}

// PopWait pops the top data word, suspending the calling fiber until a
// producer pushes one; it may only be called from a fiber.
//
// On the empty branch the fiber registers as the stack's single waiter and
// relinquishes the core; the mask is released as an inherent part of the
// switch. The value a producer then hands off arrives in the fiber's
// pending-return slot, so the wake path never touches the buffer.
//
// Registering while another waiter is pending silently replaces its
// registration; the displaced fiber stays suspended. Single-waiter use is
// the caller's contract.
func (s *Stack) PopWait() kernel.Word {
	key := s.k.Lock()
	if s.next == 0 {
		f := s.k.Current()
		if f == nil {
			panic("stack: PopWait outside a fiber context")
		}
		s.waiter = f
		return s.k.Swap(key)
	}
	s.next--
	v := s.data[s.next]
	s.k.Unlock(key)
	return v
}

// TaskPopWait pops the top data word, polling until one is available; it
// may only be called from the task context. Tasks cannot register as
// waiters, so the empty branch idles the core with the mask still held:
// AtomicIdle re-enables interrupts and enters the wait in one indivisible
// step, and a push arriving during the idle window is seen on the next
// pass of the loop.
func (s *Stack) TaskPopWait() kernel.Word {
	key := s.k.Lock()
	for s.next == 0 {
		key = s.k.AtomicIdle(key)
	}
	s.next--
	v := s.data[s.next]
	s.k.Unlock(key)
	return v
}
