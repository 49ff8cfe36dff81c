package qsim

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func newTestPool(ctx context.Context) *Evaluator {
	return &Evaluator{
		ctx:     ctx,
		jobs:    make(chan Job, 1),
		space:   newResultSpace(time.Minute),
		metrics: newMetrics(),
		cfg:     NewConfig(),
	}
}

func TestWorker(t *testing.T) {
	Convey("Given a worker", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		pool := newTestPool(ctx)
		worker := &Worker{id: 0, pool: pool}

		go worker.run(ctx)

		Reset(func() {
			cancel()
			pool.space.Close()
		})

		await := func(id string) Result {
			select {
			case <-time.After(testTimeout):
				t.Fatal(timeoutMsg)
			case r := <-pool.space.Await(id):
				return r
			}

			return Result{}
		}

		Convey("It should process a job successfully", func() {
			pool.jobs <- Job{
				ID:        "job_success",
				Fn:        func(context.Context) (any, error) { return "result", nil },
				StartTime: time.Now(),
				TTL:       10 * time.Second,
			}

			r := await("job_success")
			So(r.Error, ShouldBeNil)
			So(r.Value, ShouldEqual, "result")
			So(r.TTL, ShouldEqual, 10*time.Second)
		})

		Convey("It should report how long a job waited in the queue", func() {
			pool.jobs <- Job{
				ID:        "job_queued",
				Fn:        func(context.Context) (any, error) { return nil, nil },
				StartTime: time.Now().Add(-time.Second),
			}

			await("job_queued")

			pool.metrics.mu.RLock()
			queued, wait := pool.metrics.QueuedJobs, pool.metrics.AverageQueueWait
			pool.metrics.mu.RUnlock()
			So(queued, ShouldEqual, int64(1))
			So(wait, ShouldBeGreaterThanOrEqualTo, time.Second)
			So(pool.metrics.Snapshot()["avg_queue_wait"], ShouldBeGreaterThanOrEqualTo, int64(1000))
		})

		Convey("It should stop a job at its timeout", func() {
			pool.jobs <- Job{
				ID: "job_timeout",
				Fn: func(ctx context.Context) (any, error) {
					<-ctx.Done()
					return nil, ctx.Err()
				},
				Timeout: 50 * time.Millisecond,
			}

			r := await("job_timeout")
			So(errors.Is(r.Error, context.DeadlineExceeded), ShouldBeTrue)
		})

		Convey("It should turn a panic into an error", func() {
			pool.jobs <- Job{
				ID: "job_panic",
				Fn: func(context.Context) (any, error) { panic("broken evaluation") },
			}

			r := await("job_panic")
			So(r.Error, ShouldNotBeNil)
			So(r.Error.Error(), ShouldContainSubstring, "broken evaluation")

			pool.metrics.mu.RLock()
			failed := pool.metrics.FailedJobs
			pool.metrics.mu.RUnlock()
			So(failed, ShouldEqual, int64(1))
		})

		Convey("It should skip a job whose own context is already done", func() {
			jobCtx, jobCancel := context.WithCancel(context.Background())
			jobCancel()

			ran := false
			pool.jobs <- Job{
				ID: "job_cancelled",
				Fn: func(context.Context) (any, error) {
					ran = true
					return nil, nil
				},
				ctx: jobCtx,
			}

			r := await("job_cancelled")
			So(errors.Is(r.Error, context.Canceled), ShouldBeTrue)
			So(ran, ShouldBeFalse)
		})
	})
}
