package qsim

import (
	"errors"
	"math"
	"testing"

	"github.com/davecgh/go-spew/spew"
	. "github.com/smartystreets/goconvey/convey"
)

// asymmetricTwoQubit returns (H ⊗ S)·CNOT: unitary, complex and without any
// symmetry that could hide a qubit ordering mistake.
func asymmetricTwoQubit() *Matrix {
	hs := HadamardMatrix().Tensor(PhaseShiftMatrix(math.Pi / 2))
	m, err := hs.Multiply(ControlledNotMatrix())
	if err != nil {
		panic(err)
	}

	return m
}

func swapMatrix() *Matrix {
	m, err := Permutation([]int{0, 2, 1, 3})
	if err != nil {
		panic(err)
	}

	return m
}

func TestGateFactoryValidation(t *testing.T) {
	Convey("Given gate factory inputs", t, func() {
		ones, _ := NewMatrix([][]Complex{{1, 1}, {1, 1}})
		three, _ := Identity(3)
		rect, _ := NewMatrix([][]Complex{{1, 0}})

		Convey("A row count that is not a power of two is rejected first", func() {
			_, err := NewGateFactory(0, three)
			So(errors.Is(err, ErrMatrixRowCountNotPowerOfTwo), ShouldBeTrue)

			_, err = NewGateFactory(1, rect)
			So(errors.Is(err, ErrMatrixRowCountNotPowerOfTwo), ShouldBeTrue)

			_, err = NewGateFactory(1, nil)
			So(errors.Is(err, ErrMatrixRowCountNotPowerOfTwo), ShouldBeTrue)
		})

		Convey("A non-unitary matrix is rejected before the qubit count is looked at", func() {
			_, err := NewGateFactory(0, ones)
			So(errors.Is(err, ErrMatrixNotUnitary), ShouldBeTrue)

			_, err = NewGateFactory(2, ones)
			So(errors.Is(err, ErrMatrixNotUnitary), ShouldBeTrue)
		})

		Convey("The qubit count has to be positive", func() {
			_, err := NewGateFactory(0, NotMatrix())
			So(errors.Is(err, ErrQubitCountNotPositive), ShouldBeTrue)
		})

		Convey("The matrix has to fit in the circuit", func() {
			_, err := NewGateFactory(1, ControlledNotMatrix())
			So(errors.Is(err, ErrMatrixHandlesMoreQubitsThanCircuit), ShouldBeTrue)
		})

		Convey("With a valid factory", func() {
			factory, err := NewGateFactory(3, ControlledNotMatrix())
			So(err, ShouldBeNil)
			So(factory.QubitCount(), ShouldEqual, 3)

			Convey("The input count has to match the matrix", func() {
				_, err := factory.MakeGate(0)
				So(errors.Is(err, ErrInputCountMismatch), ShouldBeTrue)

				_, err = factory.MakeGate(0, 1, 2)
				So(errors.Is(err, ErrInputCountMismatch), ShouldBeTrue)
			})

			Convey("Duplicate inputs fail and produce no gate", func() {
				gate, err := factory.MakeGate(0, 0)
				So(errors.Is(err, ErrInputsNotUnique), ShouldBeTrue)
				So(gate, ShouldBeNil)
			})

			Convey("Duplicates are reported before bounds", func() {
				_, err := factory.MakeGate(5, 5)
				So(errors.Is(err, ErrInputsNotUnique), ShouldBeTrue)
			})

			Convey("Inputs have to be in bounds", func() {
				_, err := factory.MakeGate(0, 3)
				So(errors.Is(err, ErrInputsOutOfBounds), ShouldBeTrue)

				_, err = factory.MakeGate(-1, 0)
				So(errors.Is(err, ErrInputsOutOfBounds), ShouldBeTrue)
			})

			Convey("Valid inputs produce a unitary gate over the whole circuit", func() {
				gate, err := factory.MakeGate(2, 0)
				So(err, ShouldBeNil)
				So(gate.QubitCount(), ShouldEqual, 3)
				So(gate.Inputs(), ShouldResemble, []int{2, 0})
				So(gate.Matrix().IsUnitary(DefaultAccuracy), ShouldBeTrue)
			})
		})

		Convey("Registers over the qubit ceiling are refused", func() {
			_, err := NewGateFactory(11, NotMatrix())
			So(errors.Is(err, ErrTooManyQubits), ShouldBeTrue)

			factory, err := NewGateFactory(11, NotMatrix(), WithMaxQubits(11))
			So(err, ShouldBeNil)
			So(factory.QubitCount(), ShouldEqual, 11)
		})

		Convey("Registers too large to address are refused even without a ceiling", func() {
			for _, n := range []int{maxAddressableQubits + 1, 63, 64} {
				_, err := NewGateFactory(n, NotMatrix(), WithMaxQubits(0))
				So(errors.Is(err, ErrTooManyQubits), ShouldBeTrue)

				qg, err := BuildGate(n, Not{Target: 0}, WithMaxQubits(0))
				So(errors.Is(err, ErrTooManyQubits), ShouldBeTrue)
				So(qg, ShouldBeNil)
			}
		})

		Convey("A looser accuracy lets rounded matrices through", func() {
			rounded, _ := NewMatrix([][]Complex{{0.7, 0.7}, {0.7, -0.7}})

			_, err := NewGateFactory(1, rounded)
			So(errors.Is(err, ErrMatrixNotUnitary), ShouldBeTrue)

			_, err = NewGateFactory(1, rounded, WithAccuracy(0.1))
			So(err, ShouldBeNil)
		})
	})
}

func TestGateExtension(t *testing.T) {
	Convey("Given an asymmetric two-qubit unitary", t, func() {
		m := asymmetricTwoQubit()
		So(m.IsUnitary(DefaultAccuracy), ShouldBeTrue)

		Convey("The identity ordering over the whole circuit returns the base matrix exactly", func() {
			factory, _ := NewGateFactory(2, m)
			gate, err := factory.MakeGate(0, 1)
			So(err, ShouldBeNil)
			So(gate.Matrix().IsApproximatelyEqual(m, 0), ShouldBeTrue)
		})

		Convey("Reversed inputs conjugate the matrix with a swap", func() {
			factory, _ := NewGateFactory(2, m)
			gate, err := factory.MakeGate(1, 0)
			So(err, ShouldBeNil)

			sm, _ := swapMatrix().Multiply(m)
			sms, _ := sm.Multiply(swapMatrix())
			So(gate.Matrix().IsApproximatelyEqual(sms, 1e-12), ShouldBeTrue)
		})

		Convey("Contiguous inputs match the Kronecker product", func() {
			id2, _ := Identity(2)
			factory, _ := NewGateFactory(3, m)

			high, err := factory.MakeGate(0, 1)
			So(err, ShouldBeNil)
			So(high.Matrix().IsApproximatelyEqual(m.Tensor(id2), 1e-12), ShouldBeTrue)

			low, err := factory.MakeGate(1, 2)
			So(err, ShouldBeNil)
			So(low.Matrix().IsApproximatelyEqual(id2.Tensor(m), 1e-12), ShouldBeTrue)
		})

		Convey("A single-qubit gate lands on the right tensor factor", func() {
			id4, _ := Identity(4)
			factory, _ := NewGateFactory(3, HadamardMatrix())

			first, _ := factory.MakeGate(0)
			So(first.Matrix().IsApproximatelyEqual(HadamardMatrix().Tensor(id4), 1e-12), ShouldBeTrue)

			last, _ := factory.MakeGate(2)
			So(last.Matrix().IsApproximatelyEqual(id4.Tensor(HadamardMatrix()), 1e-12), ShouldBeTrue)
		})

		Convey("Every ordered pair of positions extends to a unitary", func() {
			factory, _ := NewGateFactory(4, m)

			for a := 0; a < 4; a++ {
				for b := 0; b < 4; b++ {
					if a == b {
						continue
					}

					gate, err := factory.MakeGate(a, b)
					So(err, ShouldBeNil)

					if !gate.Matrix().IsUnitary(DefaultAccuracy) {
						t.Logf("non-unitary extension for inputs [%d %d]:\n%s", a, b, spew.Sdump(gate.Inputs()))
					}
					So(gate.Matrix().IsUnitary(DefaultAccuracy), ShouldBeTrue)
				}
			}
		})

		Convey("A controlled-not on non-contiguous, reordered qubits flips the target only", func() {
			factory, _ := NewGateFactory(4, ControlledNotMatrix())
			gate, err := factory.MakeGate(3, 1)
			So(err, ShouldBeNil)

			// |0001⟩ has the control (qubit 3) set; qubit 1 is bit 2.
			in, _ := BasisState(4, 0b0001)
			out, _ := gate.Matrix().Apply(in)
			So(SquaredModulus(out.At(0b0101)), ShouldAlmostEqual, 1, 1e-12)

			idle, _ := BasisState(4, 0b1000)
			out, _ = gate.Matrix().Apply(idle)
			So(SquaredModulus(out.At(0b1000)), ShouldAlmostEqual, 1, 1e-12)
		})
	})
}

func TestDirectApplication(t *testing.T) {
	Convey("Given a three-qubit factory", t, func() {
		m := asymmetricTwoQubit()
		factory, _ := NewGateFactory(3, m)

		Convey("Applying in place matches the extended matrix on every basis state", func() {
			for _, inputs := range [][]int{{0, 1}, {1, 0}, {2, 0}, {0, 2}, {1, 2}, {2, 1}} {
				gate, err := factory.MakeGate(inputs...)
				So(err, ShouldBeNil)

				for b := 0; b < 8; b++ {
					in, _ := BasisState(3, b)

					want, err := gate.Matrix().Apply(in)
					So(err, ShouldBeNil)

					got, err := factory.applyTo(in, inputs)
					So(err, ShouldBeNil)
					So(got.IsApproximatelyEqual(want, 1e-12), ShouldBeTrue)
				}
			}
		})

		Convey("Applying to a vector of the wrong size fails", func() {
			in, _ := ZeroState(2)
			_, err := factory.applyTo(in, []int{0, 1})
			So(errors.Is(err, ErrDimensionMismatch), ShouldBeTrue)
		})
	})
}

func TestBuildGate(t *testing.T) {
	Convey("Given gate descriptors", t, func() {
		Convey("Each variant builds into a unitary over the circuit", func() {
			gates := []Gate{
				Not{Target: 1},
				Hadamard{Target: 0},
				ControlledNot{Target: 0, Control: 2},
				PhaseShift{Radians: math.Pi / 3, Target: 2},
				Oracle{TruthTable: []string{"01", "10"}, Target: 1, Controls: []int{2, 0}},
				MatrixGate{Matrix: asymmetricTwoQubit(), Inputs: []int{2, 1}},
			}

			for _, g := range gates {
				qg, err := BuildGate(3, g)
				So(err, ShouldBeNil)
				So(qg.Matrix().Rows(), ShouldEqual, 8)
				So(qg.Matrix().IsUnitary(DefaultAccuracy), ShouldBeTrue)
			}
		})

		Convey("A non-unitary matrix gate fails with the unitarity error", func() {
			ones, _ := NewMatrix([][]Complex{{1, 1}, {1, 1}})
			qg, err := BuildGate(2, MatrixGate{Matrix: ones, Inputs: []int{0}})
			So(errors.Is(err, ErrMatrixNotUnitary), ShouldBeTrue)
			So(qg, ShouldBeNil)
		})

		Convey("A matrix gate without a matrix is a shape error", func() {
			_, err := BuildGate(2, MatrixGate{Inputs: []int{0}})
			So(errors.Is(err, ErrBadShape), ShouldBeTrue)
		})

		Convey("Out of range targets are index errors", func() {
			_, err := BuildGate(2, Not{Target: 2})
			So(errors.Is(err, ErrInputsOutOfBounds), ShouldBeTrue)
		})

		Convey("A controlled-not on a single qubit is a duplicate input", func() {
			_, err := BuildGate(2, ControlledNot{Target: 1, Control: 1})
			So(errors.Is(err, ErrInputsNotUnique), ShouldBeTrue)
		})
	})
}
