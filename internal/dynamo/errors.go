package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for derivation, integration and cipher operations.
var (
	// ErrInvalidInput indicates a rejected argument: empty seed, bad round
	// count, pixel buffer not matching its declared shape, bad config.
	ErrInvalidInput = errors.New("dynamo: invalid input")

	// ErrDiverged indicates the integration produced a non-finite state.
	ErrDiverged = errors.New("dynamo: integration diverged (non-finite state)")

	// ErrShapeMismatch indicates ciphertext length inconsistent with the declared shape.
	ErrShapeMismatch = errors.New("dynamo: shape mismatch")

	// ErrCanceled indicates the computation was interrupted by its context.
	ErrCanceled = errors.New("dynamo: computation canceled by context")

	// ErrDimensionMismatch indicates a state vector of the wrong length.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// SimulationError wraps an error with integration context.
type SimulationError struct {
	System  string
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("%s: step %d (t=%.4f): %v", e.System, e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// Canceled wraps a context error so callers can match either ErrCanceled
// or the original context.Canceled / context.DeadlineExceeded.
func Canceled(system string, step int, t float64, cause error) error {
	return &SimulationError{
		System:  system,
		Step:    step,
		Time:    t,
		Wrapped: fmt.Errorf("%w: %w", ErrCanceled, cause),
	}
}
