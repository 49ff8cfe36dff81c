package qsim

import "errors"

/*
Sentinel errors returned by the simulator. Callers match them with errors.Is;
the package wraps them with fmt.Errorf and %w when extra context is useful.

All of them are permanent: the same inputs always fail the same way, so none
of them should ever be retried.
*/
var (
	// Shape errors.
	ErrBadShape                           = errors.New("qsim: invalid matrix shape")
	ErrDimensionMismatch                  = errors.New("qsim: dimension mismatch")
	ErrMatrixRowCountNotPowerOfTwo        = errors.New("qsim: gate matrix row count has to be a power of two")
	ErrQubitCountNotPositive              = errors.New("qsim: circuit qubit count has to be bigger than zero")
	ErrMatrixHandlesMoreQubitsThanCircuit = errors.New("qsim: gate matrix handles more qubits than the circuit has")
	ErrTooManyQubits                      = errors.New("qsim: qubit count exceeds the configured ceiling")

	// Unitarity errors.
	ErrMatrixNotUnitary = errors.New("qsim: gate matrix is not unitary")
	ErrExtensionFailed  = errors.New("qsim: gate matrix can not be extended into a circuit unitary")

	// Index errors.
	ErrInputCountMismatch    = errors.New("qsim: gate input count does not match gate matrix qubit count")
	ErrInputsNotUnique       = errors.New("qsim: gate inputs are not unique")
	ErrInputsOutOfBounds     = errors.New("qsim: gate inputs are not in bound")
	ErrInvalidQubitSelection = errors.New("qsim: invalid qubit selection")
	ErrOracleWithoutControls = errors.New("qsim: oracle requires at least one control")
	ErrInvalidTruthTable     = errors.New("qsim: invalid oracle truth table")

	// State errors.
	ErrStateNotNormalized = errors.New("qsim: state vector is not normalized")

	// Evaluator errors.
	ErrEvaluatorClosed   = errors.New("qsim: evaluator is closed")
	ErrSchedulingTimeout = errors.New("qsim: job scheduling timeout")
	ErrRateLimited       = errors.New("qsim: job rate limited")
)
