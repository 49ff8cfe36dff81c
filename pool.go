package qsim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/theapemachine/errnie"
	"golang.org/x/sync/errgroup"
)

/*
Evaluator runs independent evaluations on a fixed set of workers.

The simulator itself is single-threaded and shares no mutable state, so
evaluating many circuits, such as scoring a population of candidate
circuits, parallelizes without any coordination beyond handing out jobs and
collecting results. Every job owns the matrices and vectors it builds.
*/
type Evaluator struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	jobs       chan Job
	space      *resultSpace
	metrics    *Metrics
	regulators []Regulator
	cfg        *Config

	mu     sync.RWMutex
	closed bool
}

/*
NewEvaluator starts a fixed set of workers that run scheduled evaluations.

Like a row of test benches fed from one inbox, every worker takes the next
queued job, runs it under its timeout and files the result where the
scheduler's channel can pick it up. The workers stop when ctx is cancelled
or Close is called.

Parameters:
  - ctx: Parent context for every worker and job
  - workers: Number of worker goroutines, at least one is started
  - opts: Backend, qubit ceiling and timeout overrides

Returns:
  - *Evaluator: A running evaluator; call Close to release it

Example:

	e := NewEvaluator(ctx, runtime.NumCPU(), WithJobTimeout(time.Second))
	defer e.Close()
*/
func NewEvaluator(ctx context.Context, workers int, opts ...Option) *Evaluator {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	cfg := newConfig(opts...)

	e := &Evaluator{
		ctx:     ctx,
		cancel:  cancel,
		jobs:    make(chan Job, workers*10),
		space:   newResultSpace(time.Minute),
		metrics: newMetrics(),
		cfg:     cfg,
	}

	e.metrics.WorkerCount = workers

	for i := 0; i < workers; i++ {
		w := &Worker{id: i, pool: e}

		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			w.run(ctx)
		}()
	}

	errnie.Info("NewEvaluator - workers %d, backend %v, max qubits %d", workers, cfg.Backend, cfg.MaxQubits)

	return e
}

// AddRegulator installs a regulator consulted before every job is queued.
func (e *Evaluator) AddRegulator(r Regulator) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r.Observe(e.metrics)
	e.regulators = append(e.regulators, r)
}

// Metrics returns the evaluator's metrics.
func (e *Evaluator) Metrics() *Metrics {
	return e.metrics
}

/*
Schedule queues fn and returns a channel that receives its result. Failures
to queue, because the evaluator is closed, a regulator refused the job or
the queue stayed full past the scheduling timeout, arrive on the same
channel as an error result.
*/
func (e *Evaluator) Schedule(fn EvaluationFunc, opts ...JobOption) chan Result {
	job := Job{
		Fn:        fn,
		StartTime: time.Now(),
	}

	for _, opt := range opts {
		opt(&job)
	}

	if job.ID == "" {
		job.ID = uuid.NewString()
	}

	ch := e.space.Await(job.ID)

	// Held until the job is queued so Close cannot strand it in the queue.
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		e.space.Store(job.ID, nil, ErrEvaluatorClosed, job.TTL)
		return ch
	}

	for _, r := range e.regulators {
		if err := r.Limit(job); err != nil {
			e.metrics.recordRejection()
			logger.Warn("job rejected", "job", job.ID, "error", err)
			e.space.Store(job.ID, nil, err, job.TTL)
			return ch
		}
	}

	timer := time.NewTimer(e.cfg.SchedulingTimeout)
	defer timer.Stop()

	select {
	case e.jobs <- job:
		e.metrics.setQueueSize(len(e.jobs))
	case <-e.ctx.Done():
		e.space.Store(job.ID, nil, fmt.Errorf("%w: %w", ErrEvaluatorClosed, e.ctx.Err()), job.TTL)
	case <-timer.C:
		e.metrics.recordSchedulingFailure()
		e.space.Store(job.ID, nil, fmt.Errorf("%w: job %s", ErrSchedulingTimeout, job.ID), job.TTL)
	}

	return ch
}

// ScheduleCircuit runs c from |0…0⟩ and passes the final state to score.
func (e *Evaluator) ScheduleCircuit(c *Circuit, score ScoreFunc, opts ...JobOption) chan Result {
	opts = append([]JobOption{WithQubitCount(c.QubitCount(), c.Backend())}, opts...)

	return e.Schedule(func(ctx context.Context) (any, error) {
		state, err := c.Run(ctx, nil)
		if err != nil {
			return nil, err
		}

		return score(c, state)
	}, opts...)
}

/*
EvaluateAll scores every circuit in parallel and returns the results in
input order. The first failure cancels the evaluations still running and is
returned alongside the partial results.
*/
func (e *Evaluator) EvaluateAll(ctx context.Context, circuits []*Circuit, score ScoreFunc) ([]Result, error) {
	results := make([]Result, len(circuits))
	g, gctx := errgroup.WithContext(ctx)

	for i, c := range circuits {
		ch := e.ScheduleCircuit(c, score, WithContext(gctx), WithTTL(time.Minute))

		g.Go(func() error {
			select {
			case r := <-ch:
				results[i] = r
				return r.Error
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}

	return results, g.Wait()
}

// Close stops the workers and releases the result space.
func (e *Evaluator) Close() {
	if e == nil {
		return
	}

	// Cancel first: a Schedule parked on a full queue holds the read lock
	// and only lets go once the context is done.
	e.cancel()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	e.wg.Wait()

	for drained := false; !drained; {
		select {
		case job := <-e.jobs:
			e.space.Store(job.ID, nil, ErrEvaluatorClosed, job.TTL)
		default:
			drained = true
		}
	}

	e.space.Close()

	logger.Info("evaluator closed")
}
