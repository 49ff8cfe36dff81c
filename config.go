package qsim

import (
	"fmt"
	"math/bits"
	"time"
)

// maxAddressableQubits keeps every index into a 2ⁿ x 2ⁿ operator within int.
const maxAddressableQubits = bits.UintSize/2 - 1

// BackendKind selects how a circuit is simulated.
type BackendKind int

const (
	// StateVectorBackend applies every gate to the evolving state vector.
	StateVectorBackend BackendKind = iota
	// UnitaryBackend composes the whole circuit into one operator first.
	UnitaryBackend
)

func (k BackendKind) String() string {
	switch k {
	case StateVectorBackend:
		return "state-vector"
	case UnitaryBackend:
		return "unitary"
	default:
		return "unknown"
	}
}

/*
Config carries the knobs shared by circuits, gate factories and the
evaluator. Use NewConfig for the defaults and Options to adjust them.
*/
type Config struct {
	Backend  BackendKind
	Accuracy float64

	// MaxQubits caps the register size; simulation cost grows as 4^n.
	MaxQubits int

	SchedulingTimeout time.Duration
	JobTimeout        time.Duration
}

// NewConfig returns the default configuration.
func NewConfig() *Config {
	return &Config{
		Backend:           StateVectorBackend,
		Accuracy:          DefaultAccuracy,
		MaxQubits:         10,
		SchedulingTimeout: 10 * time.Second,
		JobTimeout:        30 * time.Second,
	}
}

// Option configures a Config.
type Option func(*Config)

// WithBackend selects the simulation strategy.
func WithBackend(kind BackendKind) Option {
	return func(c *Config) {
		c.Backend = kind
	}
}

// WithAccuracy overrides the tolerance used for unitarity and equality.
func WithAccuracy(accuracy float64) Option {
	return func(c *Config) {
		if accuracy > 0 {
			c.Accuracy = accuracy
		}
	}
}

// WithMaxQubits overrides the qubit ceiling. Zero or less disables it.
func WithMaxQubits(n int) Option {
	return func(c *Config) {
		c.MaxQubits = n
	}
}

// WithSchedulingTimeout bounds how long Schedule waits for queue space.
func WithSchedulingTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.SchedulingTimeout = d
	}
}

// WithJobTimeout bounds a single evaluation.
func WithJobTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.JobTimeout = d
	}
}

// withConfig copies cfg wholesale; circuits use it to hand their settings on.
func withConfig(cfg *Config) Option {
	return func(c *Config) {
		*c = *cfg
	}
}

func newConfig(opts ...Option) *Config {
	cfg := NewConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

/*
checkQubits enforces the configured ceiling and, even when that is disabled,
the largest register the simulator can address.
*/
func (c *Config) checkQubits(qubitCount int) error {
	if qubitCount > maxAddressableQubits {
		return fmt.Errorf(
			"%w: %d qubits, at most %d can be addressed", ErrTooManyQubits, qubitCount, maxAddressableQubits,
		)
	}

	if c.MaxQubits > 0 && qubitCount > c.MaxQubits {
		return fmt.Errorf("%w: %d qubits, ceiling is %d", ErrTooManyQubits, qubitCount, c.MaxQubits)
	}

	return nil
}
