package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidConfig indicates a run configuration rejected before integration.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrDivergence indicates the integrator could not produce a finite
	// trajectory within its error tolerance and step budget.
	ErrDivergence = errors.New("dynamo: integration diverged")

	// ErrInvalidState indicates a state vector with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrStepBudget indicates the solver used up its step attempts.
	ErrStepBudget = errors.New("dynamo: step budget exhausted")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")

	// ErrDimensionMismatch indicates mismatched state dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// DivergenceError wraps a divergence reason with simulation context.
// errors.Is matches both ErrDivergence and the wrapped reason.
type DivergenceError struct {
	Step   int
	Time   float64
	State  State
	Reason error
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("%s at step %d (t=%.6g): %v", ErrDivergence, e.Step, e.Time, e.Reason)
}

func (e *DivergenceError) Unwrap() error {
	return e.Reason
}

func (e *DivergenceError) Is(target error) bool {
	return target == ErrDivergence
}

// ConfigError reports the offending option of a rejected configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidConfig, e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}
