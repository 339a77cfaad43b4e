// Package executor implements the shared task executor the benchmark
// schedules its operations onto: a fixed set of workers pulling tasks from
// an unbounded FIFO queue and streaming each task's outcome, in completion
// order, onto a results channel.
//
// Tasks come in two behavioral flavors. An ordinary task runs to
// completion on its worker, occupying it for any wait it performs. A
// yielding task returns ErrYield when it cannot make progress without
// waiting; the worker requeues it and immediately picks up other ready
// work, so no worker is held by a task that is merely waiting. The task
// retries when it next reaches a worker and emits its result on the
// attempt that succeeds.
//
// One Pool is constructed per process and explicitly passed to every run;
// there is no hidden global executor.
package executor

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrPoolClosed is returned by Submit after Close has been called.
var ErrPoolClosed = errors.New("executor: pool is closed")

// ErrYield is returned by a task that cannot proceed without waiting. The
// worker requeues the task at the back of the queue and moves on; no
// result is emitted for the yielded attempt.
var ErrYield = errors.New("executor: task yielded")

// Task is one unit of concurrent work. It returns the operation's value
// (read result or written payload), ErrYield to be retried later, or a
// fatal error.
type Task func(ctx context.Context) (uint64, error)

// Result is a completed task's outcome as delivered on Results.
type Result struct {
	Value uint64
	Err   error
}

// Pool runs submitted tasks on a bounded set of worker goroutines.
//
// The task queue is unbounded, so Submit never blocks; this mirrors the
// benchmark's dispatch model, where every operation of a run is queued up
// front and collected as it completes. Results are delivered in completion
// order, which under contention is unrelated to submission order. A caller
// that submits more tasks than the results buffer holds must drain Results
// concurrently or the workers stall.
type Pool struct {
	ctx     context.Context
	eg      *errgroup.Group
	results chan Result

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Task
	closed bool
}

// NewPool starts a pool of the given number of workers. workers <= 0
// selects GOMAXPROCS. The workers run until Close; ctx cancellation is
// observed by tasks that accept it (the suspending counter's lock).
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	eg, ctx := errgroup.WithContext(ctx)
	p := &Pool{
		ctx:     ctx,
		eg:      eg,
		results: make(chan Result, workers*2),
	}
	p.cond = sync.NewCond(&p.mu)
	for w := 0; w < workers; w++ {
		eg.Go(p.worker)
	}
	return p
}

// worker pops and runs tasks until the pool is closed and the queue is
// drained. Yielded tasks go to the back of the queue without emitting a
// result.
func (p *Pool) worker() error {
	for {
		task, ok := p.next()
		if !ok {
			return nil
		}
		v, err := task(p.ctx)
		if errors.Is(err, ErrYield) {
			p.requeue(task)
			// Let whoever holds the contended resource run before the
			// next poll, in case it is queued on this worker's thread.
			runtime.Gosched()
			continue
		}
		p.results <- Result{Value: v, Err: err}
	}
}

// next blocks until a task is available, or reports false once the pool is
// closed and the queue is empty.
func (p *Pool) next() (Task, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.queue) == 0 && !p.closed {
		p.cond.Wait()
	}
	if len(p.queue) == 0 {
		return nil, false
	}
	task := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	return task, true
}

// requeue puts a yielded task back at the end of the queue. Requeueing is
// allowed even while the pool is closing: the task was already admitted,
// and Close waits for the queue to drain.
func (p *Pool) requeue(t Task) {
	p.mu.Lock()
	p.queue = append(p.queue, t)
	p.mu.Unlock()
	p.cond.Signal()
}

// Submit queues one task. It never blocks, and returns ErrPoolClosed once
// Close has begun.
func (p *Pool) Submit(t Task) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.queue = append(p.queue, t)
	p.mu.Unlock()
	p.cond.Signal()
	return nil
}

// Results returns the channel completed tasks are delivered on. The
// channel is closed by Close after the last in-flight task finishes.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Close stops intake, waits for the queue to drain and all workers to
// finish, and closes Results. Submit calls racing with Close either
// enqueue normally or return ErrPoolClosed.
//
// The caller must have consumed the result of every submitted task before
// calling Close, otherwise workers blocked on the results channel prevent
// shutdown. Close is not idempotent; call it once.
func (p *Pool) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()

	err := p.eg.Wait()
	close(p.results)
	return err
}
