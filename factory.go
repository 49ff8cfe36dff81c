package qsim

import "fmt"

/*
GateFactory embeds one base matrix into a circuit of a fixed size.

The constructor validates everything that depends only on the matrix and the
qubit count; MakeGate validates the inputs and performs the extension.
*/
type GateFactory struct {
	qubitCount int
	base       *Matrix
	accuracy   float64
}

/*
NewGateFactory validates base against qubitCount and returns a factory that
can place it on any choice of qubits in that circuit.

Like a stencil cut once and laid over different parts of a page, the base
matrix is checked a single time and every gate made from it is only a
repositioning. Checks run in a fixed order so compound mistakes always
report the same error: shape, unitarity, qubit count, the register ceiling,
then whether the matrix fits in the circuit.

Parameters:
  - qubitCount: Number of qubits in the target circuit
  - base: Unitary acting on the gate's own inputs, 2^k by 2^k
  - opts: Accuracy and qubit ceiling overrides

Returns:
  - *GateFactory: A factory bound to base and qubitCount
  - error: The first validation that failed

Example:

	factory, err := NewGateFactory(3, ControlledNotMatrix())
	gate, err := factory.MakeGate(2, 0) // control on qubit 2, target on 0
*/
func NewGateFactory(qubitCount int, base *Matrix, opts ...Option) (*GateFactory, error) {
	cfg := newConfig(opts...)

	if base == nil || !base.IsSquare() || !isPowerOfTwo(base.Rows()) {
		return nil, ErrMatrixRowCountNotPowerOfTwo
	}

	if !base.IsUnitary(cfg.Accuracy) {
		return nil, ErrMatrixNotUnitary
	}

	if qubitCount <= 0 {
		return nil, ErrQubitCountNotPositive
	}

	if err := cfg.checkQubits(qubitCount); err != nil {
		return nil, err
	}

	if log2(base.Rows()) > qubitCount {
		return nil, fmt.Errorf(
			"%w: matrix needs %d qubits, circuit has %d",
			ErrMatrixHandlesMoreQubitsThanCircuit, log2(base.Rows()), qubitCount,
		)
	}

	return &GateFactory{qubitCount: qubitCount, base: base, accuracy: cfg.Accuracy}, nil
}

// QubitCount returns the size of the circuit the factory builds for.
func (f *GateFactory) QubitCount() int { return f.qubitCount }

/*
MakeGate embeds the base matrix on inputs and returns the resulting gate.

The extended matrix is checked for unitarity once it is built; a failure
there is reported as ErrExtensionFailed.
*/
func (f *GateFactory) MakeGate(inputs ...int) (*QuantumGate, error) {
	if err := f.validateInputs(inputs); err != nil {
		return nil, err
	}

	extended := f.extend(inputs)
	if !extended.IsUnitary(f.accuracy) {
		return nil, ErrExtensionFailed
	}

	in := make([]int, len(inputs))
	copy(in, inputs)

	return &QuantumGate{matrix: extended, inputs: in}, nil
}

func (f *GateFactory) validateInputs(inputs []int) error {
	if len(inputs) != log2(f.base.Rows()) {
		return fmt.Errorf(
			"%w: %d inputs for a %d-qubit matrix",
			ErrInputCountMismatch, len(inputs), log2(f.base.Rows()),
		)
	}

	seen := make(map[int]bool, len(inputs))
	for _, in := range inputs {
		if seen[in] {
			return fmt.Errorf("%w: %v", ErrInputsNotUnique, inputs)
		}
		seen[in] = true
	}

	for _, in := range inputs {
		if in < 0 || in >= f.qubitCount {
			return fmt.Errorf("%w: %d not in [0, %d)", ErrInputsOutOfBounds, in, f.qubitCount)
		}
	}

	return nil
}

/*
extend builds the full 2^n x 2^n operator. Each basis index is split once
into the bits addressed by the gate and the bits it leaves alone; an entry
is copied from the base matrix when the untouched bits agree and is zero
otherwise.
*/
func (f *GateFactory) extend(inputs []int) *Matrix {
	count := 1 << f.qubitCount
	remaining := remainingPositions(inputs, f.qubitCount)

	baseOf := make([]int, count)
	restOf := make([]int, count)
	for i := 0; i < count; i++ {
		baseOf[i] = derive(i, inputs, f.qubitCount)
		restOf[i] = derive(i, remaining, f.qubitCount)
	}

	out := newZeroMatrix(count, count)
	baseCols := f.base.Cols()

	for r := 0; r < count; r++ {
		row := out.data[r*count : (r+1)*count]
		baseRow := f.base.data[baseOf[r]*baseCols : (baseOf[r]+1)*baseCols]

		for c := 0; c < count; c++ {
			if restOf[r] == restOf[c] {
				row[c] = baseRow[baseOf[c]]
			}
		}
	}

	return out
}

/*
QuantumGate is a gate already embedded into a circuit: its matrix acts on
the whole register.
*/
type QuantumGate struct {
	matrix *Matrix
	inputs []int
}

// Matrix returns the extended operator.
func (g *QuantumGate) Matrix() *Matrix { return g.matrix }

// Inputs returns a copy of the qubits the gate was built for.
func (g *QuantumGate) Inputs() []int {
	out := make([]int, len(g.inputs))
	copy(out, g.inputs)
	return out
}

// QubitCount returns the size of the register the gate acts on.
func (g *QuantumGate) QubitCount() int { return log2(g.matrix.Rows()) }

/*
BuildGate validates a descriptor for a circuit of qubitCount qubits and
returns the embedded gate.
*/
func BuildGate(qubitCount int, g Gate, opts ...Option) (*QuantumGate, error) {
	factory, inputs, err := prepareGate(qubitCount, g, opts...)
	if err != nil {
		return nil, err
	}

	return factory.MakeGate(inputs...)
}

// validateGate runs every check BuildGate runs except the extension itself.
func validateGate(qubitCount int, g Gate, opts ...Option) error {
	factory, inputs, err := prepareGate(qubitCount, g, opts...)
	if err != nil {
		return err
	}

	return factory.validateInputs(inputs)
}

/*
prepareGate lowers g and wraps its matrix in a factory. The register size is
checked against the ceiling first so no gate matrix is built for a register
that could never be simulated.
*/
func prepareGate(qubitCount int, g Gate, opts ...Option) (*GateFactory, []int, error) {
	if qubitCount > 0 {
		if err := newConfig(opts...).checkQubits(qubitCount); err != nil {
			return nil, nil, err
		}
	}

	base, inputs, err := lower(g, qubitCount)
	if err != nil {
		return nil, nil, err
	}

	factory, err := NewGateFactory(qubitCount, base, opts...)
	if err != nil {
		return nil, nil, err
	}

	return factory, inputs, nil
}

/*
applyTo applies the base matrix on inputs directly to v, producing the same
result as extending it first but without building the 2^n x 2^n operator.
*/
func (f *GateFactory) applyTo(v *Vector, inputs []int) (*Vector, error) {
	if err := f.validateInputs(inputs); err != nil {
		return nil, err
	}

	if v.Len() != 1<<f.qubitCount {
		return nil, fmt.Errorf(
			"%w: %d-qubit gate applied to vector of length %d",
			ErrDimensionMismatch, f.qubitCount, v.Len(),
		)
	}

	k := len(inputs)
	targetMask := 0
	offsets := make([]int, 1<<k)

	for j, p := range inputs {
		bit := 1 << (f.qubitCount - 1 - p)
		targetMask |= bit

		// Input j is bit k-1-j of the base index.
		for b := range offsets {
			if (b>>(k-1-j))&1 == 1 {
				offsets[b] |= bit
			}
		}
	}

	out := make([]Complex, v.Len())
	baseCols := f.base.Cols()

	for r := range out {
		rest := r &^ targetMask
		row := f.base.data[derive(r, inputs, f.qubitCount)*baseCols:]

		var sum Complex
		for b, offset := range offsets {
			if a := row[b]; a != 0 {
				sum += a * v.data[rest|offset]
			}
		}

		out[r] = sum
	}

	return &Vector{data: out}, nil
}
