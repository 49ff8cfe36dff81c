package qsim

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

/*
Measure returns the probability of every joint outcome over qubits.

The result has 2^len(qubits) entries. Entry i is the probability of reading
i, with the first requested qubit as the most significant bit; every other
qubit is marginalized out.
*/
func Measure(state *Vector, qubits ...int) ([]float64, error) {
	qubitCount := state.QubitCount()
	if err := validateSelection(qubits, qubitCount); err != nil {
		return nil, err
	}

	out := make([]float64, 1<<len(qubits))
	for i, a := range state.data {
		if a == 0 {
			continue
		}

		out[derive(i, qubits, qubitCount)] += SquaredModulus(a)
	}

	return out, nil
}

/*
SummarizedProbabilities is Measure keyed by outcome bit string, e.g. "101".
Outcomes whose probability does not exceed accuracy are left out.
*/
func SummarizedProbabilities(state *Vector, accuracy float64, qubits ...int) (map[string]float64, error) {
	probs, err := Measure(state, qubits...)
	if err != nil {
		return nil, err
	}

	out := make(map[string]float64)
	for outcome, p := range probs {
		if p > accuracy {
			out[formatOutcome(outcome, len(qubits))] = p
		}
	}

	return out, nil
}

// TotalProbability returns the sum of a probability distribution.
func TotalProbability(probs []float64) float64 {
	return floats.Sum(probs)
}

// MostLikely returns the outcome string with the highest probability.
func MostLikely(probs map[string]float64) (string, float64) {
	var (
		best    string
		highest = -1.0
	)

	for outcome, p := range probs {
		if p > highest || (p == highest && outcome < best) {
			best, highest = outcome, p
		}
	}

	return best, highest
}

func validateSelection(qubits []int, qubitCount int) error {
	if len(qubits) == 0 {
		return fmt.Errorf("%w: no qubits requested", ErrInvalidQubitSelection)
	}

	if len(qubits) > qubitCount {
		return fmt.Errorf(
			"%w: %d qubits requested from a %d-qubit register",
			ErrInvalidQubitSelection, len(qubits), qubitCount,
		)
	}

	seen := make(map[int]bool, len(qubits))
	for _, q := range qubits {
		if q < 0 || q >= qubitCount {
			return fmt.Errorf("%w: qubit %d not in [0, %d)", ErrInvalidQubitSelection, q, qubitCount)
		}

		if seen[q] {
			return fmt.Errorf("%w: qubit %d requested twice", ErrInvalidQubitSelection, q)
		}
		seen[q] = true
	}

	return nil
}

func formatOutcome(outcome, width int) string {
	s := strconv.FormatInt(int64(outcome), 2)
	if len(s) < width {
		s = strings.Repeat("0", width-len(s)) + s
	}

	return s
}
