package counter

import (
	"context"
	"sync"
)

// BlockingName is the display name of the sync.RWMutex-backed variant.
const BlockingName = "BlockingCounter"

// blockingCell is the storage shared by all clones of a Blocking handle.
type blockingCell struct {
	mu    sync.RWMutex
	value uint64
}

// Blocking is a counter guarded by a conventional read-write mutex. A
// contended Get or Set parks the calling goroutine in the runtime's mutex
// wait queue; the worker it occupies does no other work until admitted.
type Blocking struct {
	cell *blockingCell
}

// NewBlocking returns a Blocking counter with value 0.
func NewBlocking() Counter {
	return &Blocking{cell: new(blockingCell)}
}

// Name implements Counter.
func (*Blocking) Name() string { return BlockingName }

// Get returns the current value under the read lock. The context is
// ignored; blocking acquisition has no cancellation point. The error is
// always nil.
func (b *Blocking) Get(_ context.Context) (uint64, error) {
	b.cell.mu.RLock()
	v := b.cell.value
	b.cell.mu.RUnlock()
	return v, nil
}

// Set overwrites the value under the write lock. The context is ignored;
// the error is always nil.
func (b *Blocking) Set(_ context.Context, value uint64) error {
	b.cell.mu.Lock()
	b.cell.value = value
	b.cell.mu.Unlock()
	return nil
}

// Clone returns a new handle backed by the same cell.
func (b *Blocking) Clone() Counter {
	return &Blocking{cell: b.cell}
}
