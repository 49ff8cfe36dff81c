package qsim

import "math/cmplx"

// Complex is the scalar every matrix and state vector is built from.
type Complex = complex128

// Conjugate returns the complex conjugate of c.
func Conjugate(c Complex) Complex {
	return cmplx.Conj(c)
}

// Modulus returns |c|.
func Modulus(c Complex) float64 {
	return cmplx.Abs(c)
}

// SquaredModulus returns |c|², the probability weight of an amplitude.
func SquaredModulus(c Complex) float64 {
	return real(c)*real(c) + imag(c)*imag(c)
}

// approximatelyEqual reports whether |a-b| <= accuracy.
func approximatelyEqual(a, b Complex, accuracy float64) bool {
	return cmplx.Abs(a-b) <= accuracy
}
