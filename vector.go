package qsim

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

/*
Vector is an immutable column of complex amplitudes describing the state of
a register. Its length is always a power of two.
*/
type Vector struct {
	data []Complex
}

/*
NewVector validates and wraps a state vector.

The length has to be a power of two and the squared moduli have to add up to
one within accuracy.
*/
func NewVector(amplitudes []Complex, accuracy float64) (*Vector, error) {
	if !isPowerOfTwo(len(amplitudes)) {
		return nil, fmt.Errorf("%w: state vector length %d", ErrMatrixRowCountNotPowerOfTwo, len(amplitudes))
	}

	data := make([]Complex, len(amplitudes))
	copy(data, amplitudes)

	v := &Vector{data: data}
	if norm := v.SquaredNorm(); !scalar.EqualWithinAbs(norm, 1, accuracy) {
		return nil, fmt.Errorf("%w: squared norm is %g", ErrStateNotNormalized, norm)
	}

	return v, nil
}

// ZeroState returns |0…0⟩ for the given qubit count.
func ZeroState(qubitCount int) (*Vector, error) {
	if qubitCount <= 0 {
		return nil, ErrQubitCountNotPositive
	}

	if qubitCount > maxAddressableQubits {
		return nil, fmt.Errorf(
			"%w: %d qubits, at most %d can be addressed", ErrTooManyQubits, qubitCount, maxAddressableQubits,
		)
	}

	data := make([]Complex, 1<<qubitCount)
	data[0] = 1

	return &Vector{data: data}, nil
}

// BasisState returns the computational basis state |index⟩.
func BasisState(qubitCount, index int) (*Vector, error) {
	v, err := ZeroState(qubitCount)
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(v.data) {
		return nil, fmt.Errorf("%w: basis state %d", ErrInvalidQubitSelection, index)
	}

	v.data[0] = 0
	v.data[index] = 1

	return v, nil
}

// Len returns the number of amplitudes.
func (v *Vector) Len() int { return len(v.data) }

// QubitCount returns log2(Len()).
func (v *Vector) QubitCount() int { return log2(len(v.data)) }

// At returns the amplitude of basis state i.
func (v *Vector) At(i int) Complex { return v.data[i] }

// Amplitudes returns a copy of the amplitudes.
func (v *Vector) Amplitudes() []Complex {
	out := make([]Complex, len(v.data))
	copy(out, v.data)
	return out
}

// Probabilities returns |amplitude|² for every basis state.
func (v *Vector) Probabilities() []float64 {
	out := make([]float64, len(v.data))
	for i, a := range v.data {
		out[i] = SquaredModulus(a)
	}

	return out
}

// SquaredNorm returns the sum of squared moduli.
func (v *Vector) SquaredNorm() float64 {
	return floats.Sum(v.Probabilities())
}

// IsApproximatelyEqual compares amplitudes entrywise within accuracy.
func (v *Vector) IsApproximatelyEqual(other *Vector, accuracy float64) bool {
	if len(v.data) != len(other.data) {
		return false
	}

	for i, a := range v.data {
		if !approximatelyEqual(a, other.data[i], accuracy) {
			return false
		}
	}

	return true
}
