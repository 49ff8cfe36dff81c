package qsim

import (
	"context"
	"fmt"
	"time"
)

// Worker pulls jobs off the evaluator's queue and runs them one at a time.
type Worker struct {
	id   int
	pool *Evaluator
}

func (w *Worker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-w.pool.jobs:
			w.pool.metrics.setQueueSize(len(w.pool.jobs))

			if !job.StartTime.IsZero() {
				w.pool.metrics.recordQueueWait(time.Since(job.StartTime))
			}

			result, err := w.processJob(ctx, job)
			w.pool.space.Store(job.ID, result, err, job.TTL)
		}
	}
}

func (w *Worker) processJob(ctx context.Context, job Job) (result any, err error) {
	if job.ctx != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(job.ctx)
		defer cancel()

		stop := context.AfterFunc(w.pool.ctx, cancel)
		defer stop()
	}

	timeout := job.Timeout
	if timeout <= 0 {
		timeout = w.pool.cfg.JobTimeout
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.ID, r)
		}

		w.pool.metrics.recordJobExecution(start, err == nil)

		if err != nil {
			logger.Warn("job failed", "job", job.ID, "worker", w.id, "error", err)
		}
	}()

	if err = ctx.Err(); err != nil {
		return nil, fmt.Errorf("job %s: %w", job.ID, err)
	}

	return job.Fn(ctx)
}
