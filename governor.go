package qsim

import (
	"fmt"
	"math"
	"sync"
)

const bytesPerAmplitude = 16

/*
QubitGovernor refuses evaluations that would be too expensive to run.

Simulation cost is exponential in the register size and nothing inside the
engine bounds it, so the governor checks three limits before a job reaches a
worker:

  - the qubit count of the circuit,
  - the estimated peak memory, which depends on the backend: the unitary
    backend holds a few 2ⁿ x 2ⁿ matrices, the state-vector backend a few
    2ⁿ vectors,
  - the depth of the job queue.
*/
type QubitGovernor struct {
	mu sync.Mutex

	maxQubits      int
	maxMemoryBytes int64
	maxQueue       int

	metrics  *Metrics
	rejected int
}

/*
NewQubitGovernor creates a regulator that refuses jobs too large for the
host before they reach the queue.

Like a loading gauge at a tunnel mouth, it measures each job's register and
estimated memory against fixed limits and turns back whatever would not
fit. A limit of zero or less is not enforced.

Parameters:
  - maxQubits: Largest register a job may declare
  - maxMemoryBytes: Largest estimated state or unitary allocation
  - maxQueue: Queue depth at which new jobs are refused

Returns:
  - *QubitGovernor: A new governor regulator

Example:

	governor := NewQubitGovernor(20, 1<<30, 100)
	evaluator.AddRegulator(governor)
*/
func NewQubitGovernor(maxQubits int, maxMemoryBytes int64, maxQueue int) *QubitGovernor {
	return &QubitGovernor{
		maxQubits:      maxQubits,
		maxMemoryBytes: maxMemoryBytes,
		maxQueue:       maxQueue,
	}
}

// Observe implements Regulator.
func (g *QubitGovernor) Observe(metrics *Metrics) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.metrics = metrics
}

// Limit implements Regulator.
func (g *QubitGovernor) Limit(job Job) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.check(job); err != nil {
		g.rejected++
		return err
	}

	return nil
}

func (g *QubitGovernor) check(job Job) error {
	if g.maxQubits > 0 && job.QubitCount > g.maxQubits {
		return fmt.Errorf("%w: job %s has %d qubits, governor allows %d",
			ErrTooManyQubits, job.ID, job.QubitCount, g.maxQubits)
	}

	if estimate := EstimateMemory(job.QubitCount, job.Backend); g.maxMemoryBytes > 0 && estimate > g.maxMemoryBytes {
		return fmt.Errorf("%w: job %s needs about %d bytes, governor allows %d",
			ErrTooManyQubits, job.ID, estimate, g.maxMemoryBytes)
	}

	if g.maxQueue > 0 && g.metrics != nil {
		g.metrics.mu.RLock()
		queued := g.metrics.JobQueueSize
		g.metrics.mu.RUnlock()

		if queued >= g.maxQueue {
			return fmt.Errorf("%w: queue holds %d jobs", ErrSchedulingTimeout, queued)
		}
	}

	return nil
}

// Renormalize implements Regulator.
func (g *QubitGovernor) Renormalize() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.rejected = 0
}

// Rejected returns how many jobs were refused since the last Renormalize.
func (g *QubitGovernor) Rejected() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.rejected
}

/*
EstimateMemory approximates the peak bytes a simulation of qubitCount
qubits holds. A qubit count of zero or less estimates to zero.
*/
func EstimateMemory(qubitCount int, kind BackendKind) int64 {
	if qubitCount <= 0 {
		return 0
	}

	switch kind {
	case UnitaryBackend:
		if qubitCount >= 28 {
			return math.MaxInt64
		}

		dim := int64(1) << qubitCount

		// Running product, the next extended gate and the new product.
		return 3 * dim * dim * bytesPerAmplitude
	default:
		if qubitCount >= 58 {
			return math.MaxInt64
		}

		return 2 * (int64(1) << qubitCount) * bytesPerAmplitude
	}
}
