package counter

import "context"

// Counter is the capability surface shared by both benchmark variants: a
// 64-bit value behind a read-write lock, addressed through cheaply clonable
// handles that share one storage cell.
//
// Get and Set take a context so the suspending variant can abandon a
// contended acquisition on cancellation; the blocking variant ignores it
// and never returns an error.
type Counter interface {
	// Name returns the variant's display name, used in benchmark reports.
	Name() string

	// Get returns the current value under a read lock.
	Get(ctx context.Context) (uint64, error)

	// Set overwrites the value under the write lock.
	Set(ctx context.Context, value uint64) error

	// Clone returns a new handle sharing this counter's storage. The
	// underlying cell stays alive as long as any handle references it.
	Clone() Counter
}

// Factory constructs a fresh counter of one variant, initialized to 0.
//
// The workload generator and the driver are written once against Factory
// and instantiated per variant.
type Factory func() Counter

// TryCounter is the optional capability of variants whose lock supports
// non-blocking acquisition attempts. The benchmark driver runs operations
// on such counters as yielding executor tasks: a contended attempt hands
// the worker back to the scheduler instead of occupying it for the wait.
//
// Suspending implements TryCounter. Blocking deliberately does not: a
// contended blocking operation is supposed to hold its worker, and that
// asymmetry is what the benchmark measures.
type TryCounter interface {
	// TryGet returns the current value without waiting, or ok=false if
	// the lock is write-held.
	TryGet() (value uint64, ok bool)

	// TrySet stores value without waiting, or reports false if the lock
	// is held.
	TrySet(value uint64) (ok bool)
}
