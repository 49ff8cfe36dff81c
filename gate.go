package qsim

import (
	"fmt"
	"math"
	"math/cmplx"
)

/*
Gate describes a logical gate and the qubits it acts on.

The set of variants is closed: Not, Hadamard, ControlledNot, PhaseShift,
Oracle and MatrixGate. Each is lowered to a (matrix, inputs) pair by lower
before it is embedded into a circuit.
*/
type Gate interface {
	fmt.Stringer
	isGate()
}

// Not flips Target.
type Not struct {
	Target int
}

// Hadamard puts Target into an equal superposition.
type Hadamard struct {
	Target int
}

// ControlledNot flips Target when Control is set.
type ControlledNot struct {
	Target  int
	Control int
}

// PhaseShift multiplies the |1⟩ component of Target by e^{i·Radians}.
type PhaseShift struct {
	Radians float64
	Target  int
}

/*
Oracle flips Target whenever the bits of Controls match a row of TruthTable.

Each row is a string of '0' and '1' with one character per control; the
first character belongs to the first control.
*/
type Oracle struct {
	TruthTable []string
	Target     int
	Controls   []int
}

// MatrixGate applies an arbitrary unitary to Inputs. The first input is the
// most significant bit of the matrix's row/column index.
type MatrixGate struct {
	Matrix *Matrix
	Inputs []int
}

func (Not) isGate()           {}
func (Hadamard) isGate()      {}
func (ControlledNot) isGate() {}
func (PhaseShift) isGate()    {}
func (Oracle) isGate()        {}
func (MatrixGate) isGate()    {}

func (g Not) String() string      { return fmt.Sprintf("not(target: %d)", g.Target) }
func (g Hadamard) String() string { return fmt.Sprintf("hadamard(target: %d)", g.Target) }

func (g ControlledNot) String() string {
	return fmt.Sprintf("controlledNot(target: %d, control: %d)", g.Target, g.Control)
}

func (g PhaseShift) String() string {
	return fmt.Sprintf("phaseShift(radians: %g, target: %d)", g.Radians, g.Target)
}

func (g Oracle) String() string {
	return fmt.Sprintf("oracle(truthTable: %v, target: %d, controls: %v)", g.TruthTable, g.Target, g.Controls)
}

func (g MatrixGate) String() string {
	if g.Matrix == nil {
		return fmt.Sprintf("matrix(nil, inputs: %v)", g.Inputs)
	}

	return fmt.Sprintf("matrix(%dx%d, inputs: %v)", g.Matrix.Rows(), g.Matrix.Cols(), g.Inputs)
}

var (
	notMatrix = mustMatrix([][]Complex{
		{0, 1},
		{1, 0},
	})
	hadamardMatrix = mustMatrix([][]Complex{
		{complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0)},
		{complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0)},
	})
	controlledNotMatrix = mustMatrix([][]Complex{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
		{0, 0, 1, 0},
	})
)

func mustMatrix(elements [][]Complex) *Matrix {
	m, err := NewMatrix(elements)
	if err != nil {
		panic(err)
	}

	return m
}

// NotMatrix returns the Pauli-X matrix.
func NotMatrix() *Matrix { return notMatrix }

// HadamardMatrix returns the 2x2 Hadamard matrix.
func HadamardMatrix() *Matrix { return hadamardMatrix }

// ControlledNotMatrix returns the 4x4 CNOT with the control as the high bit.
func ControlledNotMatrix() *Matrix { return controlledNotMatrix }

// PhaseShiftMatrix returns diag(1, e^{iθ}).
func PhaseShiftMatrix(radians float64) *Matrix {
	return mustMatrix([][]Complex{
		{1, 0},
		{0, cmplx.Exp(complex(0, radians))},
	})
}

/*
lower resolves a gate descriptor into the base matrix and the ordered qubit
inputs the gate factory embeds. It is the single place where variants are
told apart.

Oracle matrices grow as 4^controls, so an oracle that cannot fit in a
register of qubitCount qubits is refused before its matrix is built.
*/
func lower(g Gate, qubitCount int) (*Matrix, []int, error) {
	switch g := g.(type) {
	case Not:
		return notMatrix, []int{g.Target}, nil
	case Hadamard:
		return hadamardMatrix, []int{g.Target}, nil
	case ControlledNot:
		return controlledNotMatrix, []int{g.Control, g.Target}, nil
	case PhaseShift:
		return PhaseShiftMatrix(g.Radians), []int{g.Target}, nil
	case Oracle:
		if len(g.Controls) == 0 {
			return nil, nil, ErrOracleWithoutControls
		}

		if qubitCount <= 0 {
			return nil, nil, ErrQubitCountNotPositive
		}

		if len(g.Controls)+1 > qubitCount {
			return nil, nil, fmt.Errorf(
				"%w: oracle needs %d qubits, circuit has %d",
				ErrMatrixHandlesMoreQubitsThanCircuit, len(g.Controls)+1, qubitCount,
			)
		}

		m, err := oracleMatrix(g.TruthTable, len(g.Controls))
		if err != nil {
			return nil, nil, err
		}

		inputs := make([]int, 0, len(g.Controls)+1)
		inputs = append(inputs, g.Controls...)

		return m, append(inputs, g.Target), nil
	case MatrixGate:
		if g.Matrix == nil {
			return nil, nil, fmt.Errorf("%w: matrix gate without a matrix", ErrBadShape)
		}

		inputs := make([]int, len(g.Inputs))
		copy(inputs, g.Inputs)

		return g.Matrix, inputs, nil
	default:
		return nil, nil, fmt.Errorf("%w: unsupported gate %T", ErrBadShape, g)
	}
}

/*
oracleMatrix builds the permutation over controlCount+1 qubits that flips
the lowest bit (the target) when the upper bits match an activated row.
*/
func oracleMatrix(truthTable []string, controlCount int) (*Matrix, error) {
	if controlCount == 0 {
		return nil, ErrOracleWithoutControls
	}

	activated := make(map[int]bool, len(truthTable))
	for _, row := range truthTable {
		if len(row) != controlCount {
			return nil, fmt.Errorf(
				"%w: row %q has %d bits, expected %d", ErrInvalidTruthTable, row, len(row), controlCount,
			)
		}

		pattern := 0
		for _, ch := range row {
			switch ch {
			case '0':
				pattern <<= 1
			case '1':
				pattern = pattern<<1 | 1
			default:
				return nil, fmt.Errorf("%w: row %q is not binary", ErrInvalidTruthTable, row)
			}
		}

		activated[pattern] = true
	}

	perm := make([]int, 1<<(controlCount+1))
	for i := range perm {
		if activated[i>>1] {
			perm[i] = i ^ 1
		} else {
			perm[i] = i
		}
	}

	return Permutation(perm)
}

// HadamardAll returns one Hadamard per target, in order.
func HadamardAll(targets ...int) []Gate {
	out := make([]Gate, len(targets))
	for i, t := range targets {
		out[i] = Hadamard{Target: t}
	}

	return out
}

/*
InversionAboutMean returns the Grover diffusion operator 2|s⟩⟨s| − I over
inputs, where |s⟩ is the uniform superposition.
*/
func InversionAboutMean(inputs ...int) (Gate, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: inversion about mean needs inputs", ErrInputCountMismatch)
	}

	if len(inputs) > maxAddressableQubits {
		return nil, fmt.Errorf("%w: inversion about mean over %d qubits", ErrTooManyQubits, len(inputs))
	}

	n := 1 << len(inputs)
	mean := complex(2/float64(n), 0)

	m, err := MakeMatrix(n, n, func(r, c int) Complex {
		if r == c {
			return mean - 1
		}
		return mean
	})
	if err != nil {
		return nil, err
	}

	in := make([]int, len(inputs))
	copy(in, inputs)

	return MatrixGate{Matrix: m, Inputs: in}, nil
}
