// Package counter provides the shared mutable counter the benchmark
// contends on, in two variants that differ only in how a contended lock
// acquisition treats the worker executing the task.
//
// # Capability surface
//
// Both variants satisfy the [Counter] interface:
//
//	c := counter.NewBlocking()
//	h := c.Clone()                    // cheap handle, same storage
//	_ = c.Set(ctx, 42)
//	v, _ := h.Get(ctx)                // v == 42
//
// A counter is a single 64-bit value created at 0. Clone returns a new
// handle sharing the same storage cell; every handle observes the same
// value, and the cell lives as long as any handle does. Access is
// read-write exclusive: one writer, or any number of concurrent readers.
// No read ever observes a torn or unwritten value.
//
// # The two variants
//
// [Blocking] (display name "BlockingCounter") guards the cell with a
// sync.RWMutex. A goroutine contending on it is parked by the runtime for
// the duration of the wait.
//
// [Suspending] (display name "SuspendingCounter") guards the cell with a
// semaphore-based lock ([github.com/twissel/bench-locks/internal/bench/rwsem]).
// Called directly, a contended Get or Set suspends the goroutine
// cooperatively and honors context cancellation while waiting. It also
// implements [TryCounter], which the benchmark's executor uses to run
// suspending operations as yielding tasks: a contended attempt returns the
// worker to the pool rather than holding it for the wait.
//
// The benchmark driver treats both uniformly through [Counter] and a
// [Factory]; which variant wins under a given read/write mix is exactly
// the question the harness answers.
package counter
