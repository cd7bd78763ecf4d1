package experiment

import (
	"errors"

	"github.com/samuelfneumann/layouteval/agent"
	"github.com/samuelfneumann/layouteval/experiment/checkpointer"
)

// Errors reported while evaluating agents. Use errors.Is to classify
// the error returned by an evaluation.
var (
	// ErrDimensionMismatch reports that an agent and environment do not
	// agree on observation or action dimensions
	ErrDimensionMismatch = agent.ErrDimensionMismatch

	// ErrMissingCheckpoint reports that no parameter set exists for a
	// layout
	ErrMissingCheckpoint = checkpointer.ErrMissing

	// ErrConfig reports an invalid evaluation configuration
	ErrConfig = errors.New("invalid configuration")

	// ErrInvalidDistribution reports that an agent returned something
	// other than a probability distribution over actions
	ErrInvalidDistribution = errors.New("invalid action distribution")

	// ErrCancelled reports that an evaluation was cancelled through its
	// context before it finished
	ErrCancelled = errors.New("evaluation cancelled")
)

// EvalError implements errors that occur while evaluating an agent on
// a layout
type EvalError struct {
	Op     string
	Layout string
	Err    error
}

// Error satisfies the error interface
func (e *EvalError) Error() string {
	if e.Layout == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + ": layout " + e.Layout + ": " + e.Err.Error()
}

// Unwrap returns the underlying error
func (e *EvalError) Unwrap() error {
	return e.Err
}

// IsConfigError returns whether or not an error reports a configuration
// error: a dimension mismatch, a missing or incompatible checkpoint, or
// an invalid configuration. Configuration errors are never resolved by
// retrying.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrDimensionMismatch) ||
		errors.Is(err, ErrMissingCheckpoint) ||
		errors.Is(err, agent.ErrArchitecture) ||
		errors.Is(err, agent.ErrConfig) ||
		errors.Is(err, ErrConfig)
}

// IsCancelled returns whether or not an error reports that an
// evaluation was cancelled
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
