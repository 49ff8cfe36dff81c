package qsim

import (
	"context"
	"fmt"
)

/*
Circuit is an ordered list of gates bound to a register size and a
simulation backend.

Circuits are immutable. ApplyingGate returns a new circuit and leaves the
receiver untouched, so partial circuits can be shared and branched freely,
including across goroutines.
*/
type Circuit struct {
	qubitCount int
	gates      []Gate
	cfg        *Config
	backend    backend
}

// NewCircuit returns an empty circuit over qubitCount qubits.
func NewCircuit(qubitCount int, opts ...Option) (*Circuit, error) {
	if qubitCount <= 0 {
		return nil, ErrQubitCountNotPositive
	}

	cfg := newConfig(opts...)
	if err := cfg.checkQubits(qubitCount); err != nil {
		return nil, err
	}

	b, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}

	logger.Debug("new circuit", "qubits", qubitCount, "backend", cfg.Backend)

	return &Circuit{qubitCount: qubitCount, cfg: cfg, backend: b}, nil
}

/*
ApplyingGate validates g against the circuit and returns a new circuit with
g appended. Validation covers everything except building the extended
matrix, so a returned circuit only fails later on ErrExtensionFailed.
*/
func (c *Circuit) ApplyingGate(g Gate) (*Circuit, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil gate", ErrBadShape)
	}

	if err := validateGate(c.qubitCount, g, withConfig(c.cfg)); err != nil {
		return nil, fmt.Errorf("applying %s: %w", g, err)
	}

	gates := make([]Gate, len(c.gates), len(c.gates)+1)
	copy(gates, c.gates)

	return &Circuit{
		qubitCount: c.qubitCount,
		gates:      append(gates, g),
		cfg:        c.cfg,
		backend:    c.backend,
	}, nil
}

// ApplyingGates applies every gate in order; the first failure is returned.
func (c *Circuit) ApplyingGates(gates ...Gate) (*Circuit, error) {
	out := c
	for _, g := range gates {
		var err error
		if out, err = out.ApplyingGate(g); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// QubitCount returns the register size.
func (c *Circuit) QubitCount() int { return c.qubitCount }

// Backend returns the strategy the circuit runs with.
func (c *Circuit) Backend() BackendKind { return c.backend.kind() }

// Gates returns a copy of the gate list.
func (c *Circuit) Gates() []Gate {
	out := make([]Gate, len(c.gates))
	copy(out, c.gates)
	return out
}

func (c *Circuit) String() string {
	return fmt.Sprintf("Circuit with %d qubits & %d gates", c.qubitCount, len(c.gates))
}

// Run simulates the circuit from initial. A nil initial means |0…0⟩.
func (c *Circuit) Run(ctx context.Context, initial *Vector) (*Vector, error) {
	if initial == nil {
		var err error
		if initial, err = ZeroState(c.qubitCount); err != nil {
			return nil, err
		}
	}

	if initial.Len() != 1<<c.qubitCount {
		return nil, fmt.Errorf(
			"%w: initial state of length %d for %d qubits",
			ErrDimensionMismatch, initial.Len(), c.qubitCount,
		)
	}

	return c.backend.run(ctx, c.qubitCount, c.gates, initial)
}

// StateVector returns the final state starting from |0…0⟩.
func (c *Circuit) StateVector() (*Vector, error) {
	return c.Run(context.Background(), nil)
}

// StateVectorFrom returns the final state starting from initial.
func (c *Circuit) StateVectorFrom(initial *Vector) (*Vector, error) {
	if initial == nil {
		return nil, fmt.Errorf("%w: nil initial state", ErrDimensionMismatch)
	}

	return c.Run(context.Background(), initial)
}

/*
Unitary composes the circuit into a single operator, whichever backend the
circuit was built with. An empty circuit yields the identity.
*/
func (c *Circuit) Unitary() (*Matrix, error) {
	return composeUnitary(context.Background(), c.cfg, c.qubitCount, c.gates)
}

// Measure runs the circuit from |0…0⟩ and measures qubits. See Measure.
func (c *Circuit) Measure(qubits ...int) ([]float64, error) {
	// Reject a bad selection before paying for the simulation.
	if err := validateSelection(qubits, c.qubitCount); err != nil {
		return nil, err
	}

	state, err := c.StateVector()
	if err != nil {
		return nil, err
	}

	return Measure(state, qubits...)
}

// SummarizedProbabilities runs the circuit from |0…0⟩ and summarizes the
// outcomes over qubits. See SummarizedProbabilities.
func (c *Circuit) SummarizedProbabilities(qubits ...int) (map[string]float64, error) {
	if err := validateSelection(qubits, c.qubitCount); err != nil {
		return nil, err
	}

	state, err := c.StateVector()
	if err != nil {
		return nil, err
	}

	return SummarizedProbabilities(state, c.cfg.Accuracy, qubits...)
}
