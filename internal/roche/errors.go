package roche

import (
	"errors"
	"fmt"
)

// Numeric errors for the bisection solvers.
var (
	// ErrBracket indicates an interval whose endpoints do not enclose a sign change.
	ErrBracket = errors.New("roche: interval does not bracket a root")

	// ErrNotFinite indicates a function value that is NaN.
	ErrNotFinite = errors.New("roche: function value is not a number")

	// ErrNoConvergence indicates that the iteration limit was reached.
	ErrNoConvergence = errors.New("roche: bisection did not converge")
)

// BracketError reports the endpoint values of a rejected interval.
type BracketError struct {
	Lo, Hi   float64
	FLo, FHi float64
}

func (e *BracketError) Error() string {
	return fmt.Sprintf("%v: f(%g) = %g, f(%g) = %g", ErrBracket, e.Lo, e.FLo, e.Hi, e.FHi)
}

func (e *BracketError) Unwrap() error {
	return ErrBracket
}
