// Package errors provides centralized error handling for SlotShift.
//
// This package defines sentinel errors used for programmatic error
// categorization throughout the application. All error types can be
// checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
var (
	// ErrTargetNotFound indicates the target's source slot does not exist.
	// This is a configuration error, never retried.
	ErrTargetNotFound = errors.New("target slot not found")

	// ErrProvider indicates an App Service management API call failed.
	// Fatal for the target at the phase it occurs.
	ErrProvider = errors.New("provider operation failed")

	// ErrConfigInvalid indicates invalid run parameters (bad slot name,
	// empty setting name, out-of-range limits).
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrInvalidTransition indicates an attempt to make an invalid
	// deployment phase transition.
	ErrInvalidTransition = errors.New("invalid phase transition")

	// ErrRunAborted indicates the operator declined the production-swap
	// confirmation. No units were started.
	ErrRunAborted = errors.New("run aborted by user")

	// ErrDeploymentFailed indicates a completed non-dry run had at least
	// one failed outcome. Commands map this to exit code 1.
	ErrDeploymentFailed = errors.New("deployment run failed")

	// ErrNonInteractiveConfirm indicates a confirmation was required but
	// no interactive terminal is available. Use --force to proceed.
	ErrNonInteractiveConfirm = errors.New("confirmation required; use --force in non-interactive mode")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrPromptCanceled indicates the user canceled an interactive prompt.
	ErrPromptCanceled = errors.New("prompt canceled by user")

	// ErrPlanInvalid indicates the deploy plan file could not be parsed
	// or failed validation.
	ErrPlanInvalid = errors.New("invalid deploy plan")
)

// ExitCode2Error wraps an error to indicate exit code 2 (invalid input)
// should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}
