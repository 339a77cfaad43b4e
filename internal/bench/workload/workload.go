// Package workload generates the randomized operation stream the benchmark
// dispatches against a population of counters.
//
// For a run with N counters and K operations per counter, the generator
// produces N fresh counters and N*K operations. Each operation is an
// independent draw from one sequential RNG: a read with the configured
// probability, otherwise a write whose payload is uniform in
// [0, PayloadRange). Every operation is bound to a cloned handle of its
// target counter, so concurrently dispatched operations on the same
// counter genuinely race on one storage cell.
package workload

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/twissel/bench-locks/counter"
)

// PayloadRange bounds write payloads: every generated payload lies in
// [0, PayloadRange).
const PayloadRange = 10000

// Kind distinguishes read operations from write operations.
type Kind uint8

const (
	// Read returns the counter's current value.
	Read Kind = iota
	// Write stores a pre-drawn random payload and returns it.
	Write
)

// String returns "read" or "write".
func (k Kind) String() string {
	if k == Read {
		return "read"
	}
	return "write"
}

// Operation is one planned action against one counter.
type Operation struct {
	// Kind selects read or write.
	Kind Kind

	// Counter is a cloned handle of the target counter.
	Counter counter.Counter

	// Payload is the value a Write stores. Unused for reads.
	Payload uint64
}

// Apply performs the operation. Reads return the observed value; writes
// store the payload and return it.
func (op *Operation) Apply(ctx context.Context) (uint64, error) {
	if op.Kind == Read {
		return op.Counter.Get(ctx)
	}
	if err := op.Counter.Set(ctx, op.Payload); err != nil {
		return 0, err
	}
	return op.Payload, nil
}

// Plan is the full workload for one benchmark run: the counter population
// and the operations to dispatch against it.
type Plan struct {
	Counters []counter.Counter
	Ops      []Operation
}

// Generator produces operation plans from a single sequential
// pseudo-random source.
//
// A Generator is not safe for concurrent use; generation happens before
// dispatch, on one goroutine.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a Generator drawing from rng. A nil rng selects a
// time-seeded source, matching the benchmark's default of non-reproducible
// runs; tests pass a fixed-seed rand.New to pin the sequence.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng}
}

// Generate builds the plan for one run: counters fresh instances from
// newCounter, and counters*opsPerCounter operations. Each operation is a
// read with probability readRatio, else a write with a payload drawn
// uniformly from [0, PayloadRange).
func (g *Generator) Generate(newCounter counter.Factory, counters, opsPerCounter int, readRatio float64) (*Plan, error) {
	if counters < 1 {
		return nil, fmt.Errorf("workload: counters must be positive, got %d", counters)
	}
	if opsPerCounter < 1 {
		return nil, fmt.Errorf("workload: opsPerCounter must be positive, got %d", opsPerCounter)
	}
	if readRatio < 0 || readRatio > 1 {
		return nil, fmt.Errorf("workload: readRatio must be in [0, 1], got %v", readRatio)
	}

	plan := &Plan{
		Counters: make([]counter.Counter, counters),
		Ops:      make([]Operation, 0, counters*opsPerCounter),
	}
	for i := range plan.Counters {
		plan.Counters[i] = newCounter()
	}

	for _, c := range plan.Counters {
		for n := 0; n < opsPerCounter; n++ {
			op := Operation{Counter: c.Clone()}
			if g.rng.Float64() < readRatio {
				op.Kind = Read
			} else {
				op.Kind = Write
				op.Payload = uint64(g.rng.Int63n(PayloadRange))
			}
			plan.Ops = append(plan.Ops, op)
		}
	}
	return plan, nil
}
