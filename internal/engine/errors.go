package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is matched by every *ConfigError.
	ErrInvalidConfig = errors.New("engine: invalid simulation configuration")

	// ErrShapeMismatch indicates Update was given a model with a different
	// number of species or reactions.
	ErrShapeMismatch = errors.New("engine: model shape changed")

	// ErrStepLimit indicates the requested window needs more steps, or would
	// record more values, than the engine allows.
	ErrStepLimit = errors.New("engine: step limit exceeded")

	// ErrNonFinite indicates a concentration became NaN or Inf.
	ErrNonFinite = errors.New("engine: non-finite concentration")
)

// ConfigError is returned before any integration happens.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid config: %s", e.Message)
	}
	return fmt.Sprintf("invalid config: %s %s", e.Field, e.Message)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// StepError aborts a simulation part-way through.
type StepError struct {
	Step    int
	Time    float64
	Species string
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): species %s: %v", e.Step, e.Time, e.Species, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
