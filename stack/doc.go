package stack

/*
Package stack implements the kernel's LIFO hand-off object.

Data model:

	data	caller-owned backing buffer, borrowed for the stack's lifetime
	next	one past the highest occupied slot; 0 <= next <= len(data)
	waiter	at most one suspended fiber, non-nil only while next == 0

Empty/full conditions:

	empty	next == 0
	full	next == len(data)	(never checked on push)

Hand-off protocol:

	push, waiter present:	clear waiter, deliver the word to its
				pending-return slot, make it ready. The buffer
				is bypassed entirely; next never moves.
	push, no waiter:	data[next] = v; next++	(unchecked)
	PopWait, empty:		register as waiter, Swap out. The mask is
				released by the switch itself, so a push that
				arrives after registration always sees the
				waiter: there is no missed-wakeup window.
	TaskPopWait, empty:	AtomicIdle with the mask held, re-check.

Two hazards are part of the contract rather than detected:

	overflow	push performs no bounds check; the backing buffer
			is sized by the caller for the worst case.
	double wait	a second PopWait while a waiter is pending replaces
			the registration and strands the first fiber.

Mutual exclusion is interrupt masking only. On a single core that excludes
interrupt-, fiber- and task-level access alike, provided every path through
the object masks, which all of these do.
*/
