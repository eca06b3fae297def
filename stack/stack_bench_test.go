package stack_test

import (
	"testing"

	"github.com/min1324/nanok/kernel"
	"github.com/min1324/nanok/stack"
)

func BenchmarkPush(b *testing.B) {
	s := newStack(b.N + 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Push(kernel.Word(i))
	}
}

func BenchmarkPop(b *testing.B) {
	s := newStack(b.N + 1)
	for i := 0; i < b.N; i++ {
		s.Push(kernel.Word(i))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Pop()
	}
}

func BenchmarkPushPopBalance(b *testing.B) {
	s := newStack(4)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Push(1)
		s.Pop()
	}
}

// BenchmarkHandoff measures a full task-to-fiber round trip: the task push
// wakes the waiting fiber, yields to it, and resumes when the fiber has
// re-registered.
func BenchmarkHandoff(b *testing.B) {
	const stop = ^kernel.Word(0)
	k := kernel.New()
	s := stack.New(k, make([]kernel.Word, 1))
	k.Start(func() {
		for {
			if v := s.PopWait(); v == stop {
				return
			}
		}
	})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.TaskPush(1)
	}
	b.StopTimer()
	s.TaskPush(stop)
}
