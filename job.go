package qsim

import (
	"context"
	"time"
)

// EvaluationFunc is the work a job performs.
type EvaluationFunc func(ctx context.Context) (any, error)

// ScoreFunc turns the final state of a circuit into a result, e.g. a fitness.
type ScoreFunc func(c *Circuit, state *Vector) (any, error)

// Job represents one evaluation waiting for, or running on, a worker.
type Job struct {
	ID         string
	Fn         EvaluationFunc
	QubitCount int
	Backend    BackendKind
	TTL        time.Duration
	Timeout    time.Duration

	// StartTime is when the job was scheduled; workers report the wait.
	StartTime time.Time

	ctx context.Context
}

// JobOption is a function type for configuring jobs.
type JobOption func(*Job)

// WithID sets the job ID. Without it a random UUID is used.
func WithID(id string) JobOption {
	return func(j *Job) {
		j.ID = id
	}
}

// WithTTL keeps the result in the result space for ttl after it is stored.
func WithTTL(ttl time.Duration) JobOption {
	return func(j *Job) {
		j.TTL = ttl
	}
}

// WithTimeout bounds the job's run time, overriding Config.JobTimeout.
func WithTimeout(d time.Duration) JobOption {
	return func(j *Job) {
		j.Timeout = d
	}
}

// WithQubitCount declares the register size so regulators can vet the job.
func WithQubitCount(n int, kind BackendKind) JobOption {
	return func(j *Job) {
		j.QubitCount = n
		j.Backend = kind
	}
}

// WithContext ties the job to ctx in addition to the evaluator's lifetime.
func WithContext(ctx context.Context) JobOption {
	return func(j *Job) {
		j.ctx = ctx
	}
}
