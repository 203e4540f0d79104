package symcalc

import "errors"

var (
	// ErrUnsolved is returned when no strategy produced a closed form.
	ErrUnsolved = errors.New("no closed form found")
	// ErrBoundVariableRemains is returned when evaluating an antiderivative
	// at its bounds still leaves the integration variable in the result.
	ErrBoundVariableRemains = errors.New("integration variable remains after applying bounds")
	ErrSingularSystem       = errors.New("linear system is singular or underdetermined")
	ErrNonLinear            = errors.New("equation is not linear in the unknowns")
	ErrNotPolynomial        = errors.New("expression is not a polynomial")
	ErrUnknownTool          = errors.New("unknown tool")
	ErrInvalidExpr          = errors.New("invalid expression")
)
