package kernel

import (
	"k8s.io/klog/v2"
)

// Fiber is a cooperative execution context. It runs until it voluntarily
// suspends through Swap and is resumed by a producer that sets its pending
// return value and marks it ready. The kernel never allocates or frees
// anything on a fiber's behalf beyond this handle.
type Fiber struct {
	k       *Kernel
	gate    chan struct{} // core hand-off token
	pending Word          // value delivered by the hand-off
	id      uint64
}

// Start creates a fiber running fn and makes it ready.
//
// Started from the task context, the fiber runs until it blocks before
// Start returns, so the caller can rely on whatever registration the fiber
// performs. Started from a fiber, the new fiber is only made ready and runs
// when the caller next suspends. Not intended for interrupt-level use.
func (k *Kernel) Start(fn func()) *Fiber {
	f := &Fiber{
		k:    k,
		gate: make(chan struct{}, 1),
	}
	go func() {
		<-f.gate
		fn()
		f.exit()
	}()

	key := k.Lock()
	k.nextID++
	f.id = k.nextID
	k.runq = append(k.runq, f)
	klog.V(4).InfoS("fiber start", "fiber", f.id)
	if k.current == nil {
		k.YieldTask(key)
		return f
	}
	k.Unlock(key)
	return f
}

// exit runs on the fiber's own goroutine after fn returns and passes the
// core to the next runnable context.
func (f *Fiber) exit() {
	k := f.k
	k.mu.Lock()
	klog.V(4).InfoS("fiber exit", "fiber", f.id)
	k.scheduleNextLocked()
	k.releaseMaskLocked()
}
