package qsim

import (
	"fmt"
	"strings"
)

// DefaultAccuracy is the tolerance used for unitarity and equality checks.
const DefaultAccuracy = 0.001

/*
Matrix is a dense, row-major grid of complex values.

A Matrix is never mutated once constructed: every operation returns a new
value, so matrices can be shared between goroutines without locking.
*/
type Matrix struct {
	rows int
	cols int
	data []Complex
}

/*
NewMatrix builds a matrix from a slice of rows.

Every row must have the same, non-zero length.
*/
func NewMatrix(elements [][]Complex) (*Matrix, error) {
	if len(elements) == 0 || len(elements[0]) == 0 {
		return nil, fmt.Errorf("%w: matrix needs at least one element", ErrBadShape)
	}

	cols := len(elements[0])
	data := make([]Complex, 0, len(elements)*cols)

	for r, row := range elements {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrBadShape, r, len(row), cols)
		}

		data = append(data, row...)
	}

	return &Matrix{rows: len(elements), cols: cols, data: data}, nil
}

// MakeMatrix builds a rows x cols matrix whose entries are produced by fn.
func MakeMatrix(rows, cols int, fn func(r, c int) Complex) (*Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadShape, rows, cols)
	}

	m := newZeroMatrix(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			m.data[r*cols+c] = fn(r, c)
		}
	}

	return m, nil
}

// Identity returns the n x n identity matrix.
func Identity(n int) (*Matrix, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: identity of size %d", ErrBadShape, n)
	}

	m := newZeroMatrix(n, n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}

	return m, nil
}

/*
Permutation returns the matrix sending basis state c to basis state perm[c].

perm has to be a permutation of 0..len(perm)-1.
*/
func Permutation(perm []int) (*Matrix, error) {
	n := len(perm)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty permutation", ErrBadShape)
	}

	seen := make([]bool, n)
	m := newZeroMatrix(n, n)

	for c, r := range perm {
		if r < 0 || r >= n || seen[r] {
			return nil, fmt.Errorf("%w: %v is not a permutation", ErrBadShape, perm)
		}

		seen[r] = true
		m.data[r*n+c] = 1
	}

	return m, nil
}

func newZeroMatrix(rows, cols int) *Matrix {
	return &Matrix{rows: rows, cols: cols, data: make([]Complex, rows*cols)}
}

// Rows returns the row count.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the column count.
func (m *Matrix) Cols() int { return m.cols }

// IsSquare reports whether the matrix has as many rows as columns.
func (m *Matrix) IsSquare() bool { return m.rows == m.cols }

// At returns the entry at (r, c). It panics when out of range, like a slice.
func (m *Matrix) At(r, c int) Complex {
	if r < 0 || r >= m.rows || c < 0 || c >= m.cols {
		panic(fmt.Sprintf("qsim: index (%d, %d) out of range for %dx%d matrix", r, c, m.rows, m.cols))
	}

	return m.data[r*m.cols+c]
}

// Elements returns a copy of the matrix as a slice of rows.
func (m *Matrix) Elements() [][]Complex {
	out := make([][]Complex, m.rows)
	for r := range out {
		out[r] = make([]Complex, m.cols)
		copy(out[r], m.data[r*m.cols:(r+1)*m.cols])
	}

	return out
}

/*
Multiply returns m·other.

It fails with ErrDimensionMismatch when m.Cols() != other.Rows().
*/
func (m *Matrix) Multiply(other *Matrix) (*Matrix, error) {
	if m.cols != other.rows {
		return nil, fmt.Errorf(
			"%w: cannot multiply %dx%d by %dx%d",
			ErrDimensionMismatch, m.rows, m.cols, other.rows, other.cols,
		)
	}

	out := newZeroMatrix(m.rows, other.cols)

	// i-k-j order keeps the inner loop walking both rows contiguously.
	for i := 0; i < m.rows; i++ {
		row := out.data[i*out.cols : (i+1)*out.cols]
		for k := 0; k < m.cols; k++ {
			a := m.data[i*m.cols+k]
			if a == 0 {
				continue
			}

			otherRow := other.data[k*other.cols : (k+1)*other.cols]
			for j, b := range otherRow {
				row[j] += a * b
			}
		}
	}

	return out, nil
}

// ConjugateTranspose returns the Hermitian adjoint of m.
func (m *Matrix) ConjugateTranspose() *Matrix {
	out := newZeroMatrix(m.cols, m.rows)
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			out.data[c*out.cols+r] = Conjugate(m.data[r*m.cols+c])
		}
	}

	return out
}

// Tensor returns the Kronecker product m ⊗ other.
func (m *Matrix) Tensor(other *Matrix) *Matrix {
	out := newZeroMatrix(m.rows*other.rows, m.cols*other.cols)
	for r1 := 0; r1 < m.rows; r1++ {
		for c1 := 0; c1 < m.cols; c1++ {
			a := m.data[r1*m.cols+c1]
			if a == 0 {
				continue
			}

			for r2 := 0; r2 < other.rows; r2++ {
				for c2 := 0; c2 < other.cols; c2++ {
					r := r1*other.rows + r2
					c := c1*other.cols + c2
					out.data[r*out.cols+c] = a * other.data[r2*other.cols+c2]
				}
			}
		}
	}

	return out
}

// IsApproximatelyEqual reports whether both matrices share a shape and every
// pair of entries differs by at most accuracy.
func (m *Matrix) IsApproximatelyEqual(other *Matrix, accuracy float64) bool {
	if m.rows != other.rows || m.cols != other.cols {
		return false
	}

	for i, a := range m.data {
		if !approximatelyEqual(a, other.data[i], accuracy) {
			return false
		}
	}

	return true
}

/*
IsUnitary reports whether m·mᴴ equals the identity within accuracy.

Non-square matrices are never unitary.
*/
func (m *Matrix) IsUnitary(accuracy float64) bool {
	if !m.IsSquare() {
		return false
	}

	product, err := m.Multiply(m.ConjugateTranspose())
	if err != nil {
		return false
	}

	n := m.rows
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			var want Complex
			if r == c {
				want = 1
			}

			if !approximatelyEqual(product.data[r*n+c], want, accuracy) {
				return false
			}
		}
	}

	return true
}

// Apply returns m·v.
func (m *Matrix) Apply(v *Vector) (*Vector, error) {
	if m.cols != v.Len() {
		return nil, fmt.Errorf(
			"%w: cannot apply %dx%d matrix to vector of length %d",
			ErrDimensionMismatch, m.rows, m.cols, v.Len(),
		)
	}

	out := make([]Complex, m.rows)
	for r := 0; r < m.rows; r++ {
		var sum Complex
		row := m.data[r*m.cols : (r+1)*m.cols]
		for c, a := range row {
			if a != 0 {
				sum += a * v.data[c]
			}
		}

		out[r] = sum
	}

	return &Vector{data: out}, nil
}

func (m *Matrix) String() string {
	var sb strings.Builder
	for r := 0; r < m.rows; r++ {
		sb.WriteString("[")
		for c := 0; c < m.cols; c++ {
			if c > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%.3f", m.data[r*m.cols+c])
		}
		sb.WriteString("]\n")
	}

	return sb.String()
}
