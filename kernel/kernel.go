// Package kernel provides the execution model the nanok synchronization
// objects run against: a single logical core where mutual exclusion is
// achieved by masking interrupts, cooperative fibers that run until they
// voluntarily suspend, one background task context, and simulated interrupt
// handlers that preempt both.
//
// Priority order is strict: interrupts over fibers, fibers over the task.
// The simulation enforces it at scheduling points (mask release, fiber
// block, task yield) while mutual exclusion on shared state is absolute,
// because every access path takes the mask.
package kernel

import (
	"sync"

	"k8s.io/klog/v2"
)

// Word is the machine word carried through the kernel objects.
type Word uint32

// IrqKey records the interrupt state in force before a Lock call. On real
// hardware this would be the saved mask register restored by Unlock; the
// simulated core keeps it only so call sites preserve the save/restore
// calling convention. Keys do not nest: each operation masks exactly once,
// and Swap, YieldTask and AtomicIdle consume the key they are given.
type IrqKey uint32

// Kernel is one simulated core.
type Kernel struct {
	mu   sync.Mutex // the interrupt mask: single-core mutual exclusion
	intr *sync.Cond // interrupt arrival, wakes AtomicIdle sleepers

	current *Fiber   // running fiber, nil while the task or an ISR owns the core
	runq    []*Fiber // ready fibers, FIFO

	taskGate    chan struct{} // resumes the task after YieldTask
	taskWaiting bool

	nextID uint64
}

// New returns a core with no fibers and an idle task context.
func New() *Kernel {
	k := &Kernel{
		taskGate: make(chan struct{}, 1),
	}
	k.intr = sync.NewCond(&k.mu)
	return k
}

// Lock masks interrupts and returns the key Unlock restores.
// Safe from any context. Masked sections must not nest.
func (k *Kernel) Lock() IrqKey {
	k.mu.Lock()
	return 0
}

// Unlock restores the interrupt state saved in key.
//
// Releasing the mask is a scheduling point: idle sleepers are woken, and if
// no fiber holds the core, the next ready fiber is dispatched. This is where
// a fiber made ready by an interrupt handler preempts the background task.
func (k *Kernel) Unlock(key IrqKey) {
	k.dispatchIdleLocked()
	k.releaseMaskLocked()
}

// AtomicIdle atomically releases the mask and enters low-power wait,
// returning with the mask re-held after the next interrupt. Because the
// release and the wait are indivisible, a push that lands between the
// caller's emptiness check and the wait is observed, not lost.
func (k *Kernel) AtomicIdle(key IrqKey) IrqKey {
	k.intr.Wait()
	return key
}

// Interrupt runs handler as a simulated interrupt service routine. The
// handler takes the mask per operation, exactly as a real handler would run
// with interrupts disabled. Returning from the handler is an ISR exit:
// idle pollers are woken and fibers the handler made ready get the core
// before the interrupted task continues.
func (k *Kernel) Interrupt(handler func()) {
	handler()
	key := k.Lock()
	k.Unlock(key)
}

// Current returns the running fiber, or nil when the task or an interrupt
// handler owns the core. The mask must be held.
func (k *Kernel) Current() *Fiber {
	return k.current
}

// SetReturnValue stores v in f's pending-return slot, to be returned by the
// Swap that suspended f. The mask must be held.
func (k *Kernel) SetReturnValue(f *Fiber, v Word) {
	f.pending = v
}

// Ready appends f to the ready set. It never switches; the caller keeps the
// core. The mask must be held.
func (k *Kernel) Ready(f *Fiber) {
	k.runq = append(k.runq, f)
	klog.V(4).InfoS("fiber ready", "fiber", f.id)
}

// Swap suspends the current fiber and switches to the next runnable
// context. The mask, identified by key, is released as an inherent part of
// the switch. Swap returns once the fiber is resumed, yielding the value a
// producer delivered to its pending-return slot.
//
// May only be called from a fiber.
func (k *Kernel) Swap(key IrqKey) Word {
	f := k.current
	if f == nil {
		panic("kernel: Swap outside a fiber context")
	}
	klog.V(4).InfoS("fiber suspend", "fiber", f.id)
	k.scheduleNextLocked()
	k.releaseMaskLocked()
	<-f.gate
	return f.pending
}

// YieldTask releases the mask identified by key and cedes the core from the
// background task to the ready fibers, returning once none is runnable.
// With nothing ready it only releases the mask.
//
// May only be called from the task context.
func (k *Kernel) YieldTask(key IrqKey) {
	if k.current == nil && len(k.runq) == 0 {
		k.releaseMaskLocked()
		return
	}
	k.taskWaiting = true
	k.dispatchIdleLocked()
	k.releaseMaskLocked()
	<-k.taskGate
}

// dispatchIdleLocked hands the core to the next ready fiber if no fiber
// holds it. Mask held.
func (k *Kernel) dispatchIdleLocked() {
	if k.current != nil || len(k.runq) == 0 {
		return
	}
	next := k.runq[0]
	k.runq = k.runq[1:]
	k.current = next
	next.gate <- struct{}{}
}

// scheduleNextLocked picks the context that runs after the current fiber
// blocks or exits: the next ready fiber, else the yielded task. Mask held.
func (k *Kernel) scheduleNextLocked() {
	if len(k.runq) > 0 {
		next := k.runq[0]
		k.runq = k.runq[1:]
		k.current = next
		next.gate <- struct{}{}
		return
	}
	k.current = nil
	if k.taskWaiting {
		k.taskWaiting = false
		k.taskGate <- struct{}{}
	}
}

// releaseMaskLocked drops the mask. Every release doubles as an interrupt
// for AtomicIdle purposes, which subsumes wake-on-next-interrupt.
func (k *Kernel) releaseMaskLocked() {
	k.intr.Broadcast()
	k.mu.Unlock()
}
