// Package runner orchestrates one benchmark run: it builds the workload,
// streams every operation onto the shared executor, collects the results
// in completion order, and reports the elapsed wall-clock time.
package runner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/twissel/bench-locks/counter"
	"github.com/twissel/bench-locks/internal/bench/executor"
	"github.com/twissel/bench-locks/internal/bench/workload"
)

// Config selects the shape of one run.
type Config struct {
	// Counters is the number of counter instances contended on.
	Counters int

	// OpsPerCounter is the number of operations dispatched per counter.
	OpsPerCounter int

	// ReadRatio is the probability that a generated operation is a read.
	ReadRatio float64
}

// Report summarizes one completed run.
//
// FirstValue is the value of the first result collected. Completion order
// is nondeterministic under concurrency, so it is a liveness indicator,
// not a correctness signature.
//
// Elapsed (and ElapsedMs) measure from the moment dispatch begins to the
// arrival of the last result. Submission overlaps execution, so queueing
// time is part of the measurement.
type Report struct {
	Variant    string  `json:"variant"`
	Ratio      float64 `json:"read_write_ratio"`
	ElapsedMs  int64   `json:"elapsed_ms"`
	FirstValue uint64  `json:"first_value"`
	Reads      uint64  `json:"reads"`
	Writes     uint64  `json:"writes"`
	Operations int     `json:"operations"`

	Elapsed time.Duration `json:"-"`
}

// String renders the human-readable result line.
func (r *Report) String() string {
	return fmt.Sprintf("%s, time spent: %d milliseconds, ratio: %v, first val: %d",
		r.Variant, r.ElapsedMs, r.Ratio, r.FirstValue)
}

// taskFor wraps one operation as an executor task.
//
// Operations on counters with non-blocking acquisition (the suspending
// variant) run as yielding tasks: a contended attempt returns ErrYield so
// the worker stays free for other ready operations, and the task retries
// when it next reaches a worker. Operations on the blocking variant run
// inline and hold their worker for the full wait, which is the behavior
// under measurement. The read/write tally is incremented once, on the attempt
// that completes the operation.
func taskFor(op *workload.Operation, reads, writes *atomic.Uint64) executor.Task {
	tally := func() {
		if op.Kind == workload.Read {
			reads.Inc()
		} else {
			writes.Inc()
		}
	}

	if tc, ok := op.Counter.(counter.TryCounter); ok {
		return func(context.Context) (uint64, error) {
			if op.Kind == workload.Read {
				v, ok := tc.TryGet()
				if !ok {
					return 0, executor.ErrYield
				}
				tally()
				return v, nil
			}
			if !tc.TrySet(op.Payload) {
				return 0, executor.ErrYield
			}
			tally()
			return op.Payload, nil
		}
	}

	return func(ctx context.Context) (uint64, error) {
		v, err := op.Apply(ctx)
		if err != nil {
			return 0, err
		}
		tally()
		return v, nil
	}
}

// Runner drives benchmark runs against one shared executor pool.
type Runner struct {
	pool *executor.Pool
	gen  *workload.Generator
}

// New returns a Runner dispatching onto pool and generating workloads with
// gen. The pool is shared: successive Run calls reuse it, as do runs for
// different variants.
func New(pool *executor.Pool, gen *workload.Generator) *Runner {
	return &Runner{pool: pool, gen: gen}
}

// Run executes one benchmark run for the given counter variant.
//
// Phases are strictly sequential: the full operation plan is generated
// first; then a submitter goroutine feeds every operation to the pool
// while Run collects exactly len(plan.Ops) results in completion order;
// then the report is assembled. The elapsed time covers submission through
// the arrival of the last result.
//
// Any operation error or submission failure aborts the run and is
// returned; there is no retry and no partial report.
func (r *Runner) Run(ctx context.Context, newCounter counter.Factory, cfg Config) (*Report, error) {
	plan, err := r.gen.Generate(newCounter, cfg.Counters, cfg.OpsPerCounter, cfg.ReadRatio)
	if err != nil {
		return nil, err
	}
	total := len(plan.Ops)
	variant := plan.Counters[0].Name()

	var reads, writes atomic.Uint64

	start := time.Now()

	eg, gctx := errgroup.WithContext(ctx)
	submitDone := make(chan error, 1)
	eg.Go(func() error {
		for i := range plan.Ops {
			select {
			case <-gctx.Done():
				err := fmt.Errorf("runner: cancelled after submitting %d/%d operations: %w", i, total, gctx.Err())
				submitDone <- err
				return err
			default:
			}
			op := &plan.Ops[i]
			if err := r.pool.Submit(taskFor(op, &reads, &writes)); err != nil {
				err = fmt.Errorf("runner: submitting operation %d/%d: %w", i, total, err)
				submitDone <- err
				return err
			}
		}
		submitDone <- nil
		return nil
	})

	var (
		firstValue uint64
		opErr      error
	)
	results := r.pool.Results()
	for collected := 0; collected < total; {
		select {
		case res, ok := <-results:
			if !ok {
				// The pool shut down under us; the submitter's error says
				// why, and eg.Wait surfaces it.
				if err := eg.Wait(); err != nil {
					return nil, err
				}
				return nil, fmt.Errorf("runner: executor closed after %d/%d results", collected, total)
			}
			if collected == 0 {
				firstValue = res.Value
			}
			if res.Err != nil && opErr == nil {
				opErr = res.Err
			}
			collected++
		case err := <-submitDone:
			if err != nil {
				// The pool refused work mid-run; the remaining results
				// will never arrive, so collecting further would hang.
				return nil, err
			}
			submitDone = nil
		}
	}
	elapsed := time.Since(start)

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if opErr != nil {
		return nil, fmt.Errorf("runner: %s operation failed: %w", variant, opErr)
	}

	return &Report{
		Variant:    variant,
		Ratio:      cfg.ReadRatio,
		ElapsedMs:  elapsed.Milliseconds(),
		FirstValue: firstValue,
		Reads:      reads.Load(),
		Writes:     writes.Load(),
		Operations: total,
		Elapsed:    elapsed,
	}, nil
}
