package qsim

import "math/bits"

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// log2 assumes n is a power of two.
func log2(n int) int {
	return bits.TrailingZeros(uint(n))
}

/*
bitAt returns the bit of value that belongs to qubit position.

Qubit 0 is the most significant bit of a qubitCount-bit basis index.
*/
func bitAt(value, position, qubitCount int) int {
	return (value >> (qubitCount - 1 - position)) & 1
}

/*
derive packs the bits of value found at positions into a new integer. The
first listed position ends up as the most significant bit of the result.
*/
func derive(value int, positions []int, qubitCount int) int {
	out := 0
	for _, p := range positions {
		out = out<<1 | bitAt(value, p, qubitCount)
	}

	return out
}

// remainingPositions lists every qubit not in targets, in descending order.
func remainingPositions(targets []int, qubitCount int) []int {
	used := make([]bool, qubitCount)
	for _, t := range targets {
		used[t] = true
	}

	out := make([]int, 0, qubitCount-len(targets))
	for p := qubitCount - 1; p >= 0; p-- {
		if !used[p] {
			out = append(out, p)
		}
	}

	return out
}
