package kernel_test

import (
	"testing"
	"time"

	"github.com/min1324/nanok/kernel"
)

// Started from the task context, a fiber runs until it blocks before Start
// returns.
func TestStartRunsUntilBlock(t *testing.T) {
	k := kernel.New()
	ran := false
	var got kernel.Word

	f := k.Start(func() {
		ran = true
		key := k.Lock()
		got = k.Swap(key)
	})
	if !ran {
		t.Fatalf("Start returned before the fiber ran")
	}

	// Resume the fiber through the external hand-off path.
	key := k.Lock()
	k.SetReturnValue(f, 9)
	k.Ready(f)
	k.Unlock(key)

	// Cede the core until the fiber has finished.
	key = k.Lock()
	k.YieldTask(key)
	if got != 9 {
		t.Fatalf("Swap want:9, real:%d", got)
	}
}

// A fiber started from another fiber is made ready, not switched to.
func TestStartFromFiberDefers(t *testing.T) {
	k := kernel.New()
	var order []int
	k.Start(func() {
		k.Start(func() {
			key := k.Lock()
			order = append(order, 2)
			k.Unlock(key)
		})
		key := k.Lock()
		order = append(order, 1)
		k.Unlock(key)
	})
	key := k.Lock()
	k.YieldTask(key)

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("run order want:[1 2], real:%v", order)
	}
}

func TestYieldTaskNothingReady(t *testing.T) {
	k := kernel.New()
	done := make(chan struct{})
	go func() {
		key := k.Lock()
		k.YieldTask(key)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("YieldTask with nothing ready did not return")
	}
}

// An interrupt arriving during the idle window must wake the sleeper.
func TestAtomicIdleWakesOnInterrupt(t *testing.T) {
	k := kernel.New()
	fired := false
	done := make(chan struct{})

	go func() {
		key := k.Lock()
		for !fired {
			key = k.AtomicIdle(key)
		}
		k.Unlock(key)
		close(done)
	}()

	k.Interrupt(func() {
		key := k.Lock()
		fired = true
		k.Unlock(key)
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("idle poller missed the interrupt")
	}
}

func TestSwapOutsideFiberPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("Swap outside a fiber did not panic")
		}
	}()
	k := kernel.New()
	key := k.Lock()
	k.Swap(key)
}

// Ready fibers are dispatched in the order they were made ready.
func TestReadyOrder(t *testing.T) {
	k := kernel.New()
	var order []kernel.Word

	wait := func() {
		key := k.Lock()
		v := k.Swap(key)
		key = k.Lock()
		order = append(order, v)
		k.Unlock(key)
	}
	a := k.Start(wait)
	b := k.Start(wait)

	key := k.Lock()
	k.SetReturnValue(a, 1)
	k.Ready(a)
	k.SetReturnValue(b, 2)
	k.Ready(b)
	k.YieldTask(key)

	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("dispatch order want:[1 2], real:%v", order)
	}
}
