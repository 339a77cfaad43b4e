package counter

import (
	"context"

	"github.com/twissel/bench-locks/internal/bench/rwsem"
)

// SuspendingName is the display name of the semaphore-backed variant.
const SuspendingName = "SuspendingCounter"

// suspendingCell is the storage shared by all clones of a Suspending handle.
type suspendingCell struct {
	mu    *rwsem.RWMutex
	value uint64
}

// Suspending is a counter guarded by a cooperatively-suspending read-write
// lock. A contended Get or Set yields its worker back to the scheduler
// while waiting and observes context cancellation.
type Suspending struct {
	cell *suspendingCell
}

// NewSuspending returns a Suspending counter with value 0.
func NewSuspending() Counter {
	return &Suspending{cell: &suspendingCell{mu: rwsem.New()}}
}

// Name implements Counter.
func (*Suspending) Name() string { return SuspendingName }

// Get returns the current value under the read lock, or ctx.Err() if the
// caller is cancelled while waiting for it.
func (s *Suspending) Get(ctx context.Context) (uint64, error) {
	if err := s.cell.mu.RLock(ctx); err != nil {
		return 0, err
	}
	v := s.cell.value
	s.cell.mu.RUnlock()
	return v, nil
}

// Set overwrites the value under the write lock, or returns ctx.Err() if
// the caller is cancelled while waiting for it.
func (s *Suspending) Set(ctx context.Context, value uint64) error {
	if err := s.cell.mu.Lock(ctx); err != nil {
		return err
	}
	s.cell.value = value
	s.cell.mu.Unlock()
	return nil
}

// TryGet returns the current value if the read lock is immediately
// available. It implements TryCounter, so a contended read on an executor
// worker yields instead of suspending in place.
func (s *Suspending) TryGet() (uint64, bool) {
	if !s.cell.mu.TryRLock() {
		return 0, false
	}
	v := s.cell.value
	s.cell.mu.RUnlock()
	return v, true
}

// TrySet stores value if the write lock is immediately available. It
// implements TryCounter.
func (s *Suspending) TrySet(value uint64) bool {
	if !s.cell.mu.TryLock() {
		return false
	}
	s.cell.value = value
	s.cell.mu.Unlock()
	return true
}

// Clone returns a new handle backed by the same cell.
func (s *Suspending) Clone() Counter {
	return &Suspending{cell: s.cell}
}
