package qsim

import (
	"context"
	"fmt"
	"time"
)

/*
backend turns a list of gates into a final state. Both strategies produce
the same amplitudes within accuracy; they differ only in what they build on
the way.
*/
type backend interface {
	kind() BackendKind
	run(ctx context.Context, qubitCount int, gates []Gate, initial *Vector) (*Vector, error)
}

func newBackend(cfg *Config) (backend, error) {
	switch cfg.Backend {
	case StateVectorBackend:
		return &stateVectorBackend{cfg: cfg}, nil
	case UnitaryBackend:
		return &unitaryBackend{cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("qsim: unknown backend %d", cfg.Backend)
	}
}

/*
unitaryBackend folds every gate into one operator U = Uₙ·…·U₁ and applies it
to the initial state once. Memory is O(4ⁿ).
*/
type unitaryBackend struct {
	cfg *Config
}

func (b *unitaryBackend) kind() BackendKind { return UnitaryBackend }

func (b *unitaryBackend) run(ctx context.Context, qubitCount int, gates []Gate, initial *Vector) (*Vector, error) {
	u, err := composeUnitary(ctx, b.cfg, qubitCount, gates)
	if err != nil {
		return nil, err
	}

	return u.Apply(initial)
}

/*
composeUnitary multiplies the extended matrices of gates, last gate on the
left, starting from the identity.
*/
func composeUnitary(ctx context.Context, cfg *Config, qubitCount int, gates []Gate) (*Matrix, error) {
	if err := cfg.checkQubits(qubitCount); err != nil {
		return nil, err
	}

	start := time.Now()

	u, err := Identity(1 << qubitCount)
	if err != nil {
		return nil, err
	}

	for i, g := range gates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		qg, err := BuildGate(qubitCount, g, withConfig(cfg))
		if err != nil {
			return nil, fmt.Errorf("gate %d (%s): %w", i, g, err)
		}

		if u, err = qg.Matrix().Multiply(u); err != nil {
			return nil, fmt.Errorf("gate %d (%s): %w", i, g, err)
		}
	}

	logger.Debug("composed unitary", "qubits", qubitCount, "gates", len(gates), "elapsed", time.Since(start))

	return u, nil
}

/*
stateVectorBackend applies one gate at a time to the evolving amplitudes.
Memory is O(2ⁿ); the full operator is never built.
*/
type stateVectorBackend struct {
	cfg *Config
}

func (b *stateVectorBackend) kind() BackendKind { return StateVectorBackend }

func (b *stateVectorBackend) run(ctx context.Context, qubitCount int, gates []Gate, initial *Vector) (*Vector, error) {
	if err := b.cfg.checkQubits(qubitCount); err != nil {
		return nil, err
	}

	start := time.Now()
	state := initial

	for i, g := range gates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		factory, inputs, err := prepareGate(qubitCount, g, withConfig(b.cfg))
		if err != nil {
			return nil, fmt.Errorf("gate %d (%s): %w", i, g, err)
		}

		if state, err = factory.applyTo(state, inputs); err != nil {
			return nil, fmt.Errorf("gate %d (%s): %w", i, g, err)
		}
	}

	logger.Debug("applied gates", "qubits", qubitCount, "gates", len(gates), "elapsed", time.Since(start))

	return state, nil
}
