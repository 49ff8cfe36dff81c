package qsim

/*
Regulator decides whether the evaluator should take on a job.

Regulators watch the evaluator's metrics and refuse work that would push it
out of its operating envelope, the way a governor keeps an engine below its
rated speed.
*/
type Regulator interface {
	// Observe gives the regulator the current metrics.
	Observe(metrics *Metrics)

	// Limit returns a non-nil error when job should not run.
	Limit(job Job) error

	// Renormalize returns the regulator to its initial state.
	Renormalize()
}
