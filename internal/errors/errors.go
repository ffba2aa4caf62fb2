// Package errors provides structured error handling for the gxctl CLI.
// Every user-visible failure carries a category, the step that failed and
// actionable remediation guidance.
package errors

import (
	stderrors "errors"
)

// ErrorCategory represents the type of error that occurred.
type ErrorCategory int

const (
	// Argument errors are caused by invalid or missing command arguments.
	Argument ErrorCategory = iota
	// Configuration errors are caused by invalid tool settings or project config.
	Configuration
	// Validation errors are caused by user input that does not fit the question asked.
	Validation
	// Connection errors occur when a datasource probe fails.
	Connection
	// Conflict errors occur when a name or suite key is already registered.
	Conflict
	// Scaffold errors occur when a project already exists where a new one was expected.
	Scaffold
	// Profiling errors are reported by the profiler collaborator.
	Profiling
	// Persistence errors occur when writing config, suites or the scaffold tree fails.
	Persistence
	// Runtime errors are everything else.
	Runtime
)

// String returns a human-readable name for the error category.
func (c ErrorCategory) String() string {
	switch c {
	case Argument:
		return "Argument Error"
	case Configuration:
		return "Configuration Error"
	case Validation:
		return "Invalid Input"
	case Connection:
		return "Connection Error"
	case Conflict:
		return "Conflict"
	case Scaffold:
		return "Scaffold Conflict"
	case Profiling:
		return "Profiling Failure"
	case Persistence:
		return "Persistence Error"
	case Runtime:
		return "Runtime Error"
	default:
		return "Error"
	}
}

// CLIError is a structured error with category and remediation guidance.
type CLIError struct {
	// Category is the type of error (Connection, Profiling, etc.)
	Category ErrorCategory
	// Step names the init step that failed (e.g. "registering datasource").
	Step string
	// Message is a human-readable description of what went wrong.
	Message string
	// Remediation is a list of actionable steps to resolve the error.
	Remediation []string

	cause error
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	if e.Step != "" {
		return e.Step + ": " + e.Message
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any. The cause is never rendered
// by FormatError; it is kept for logging and errors.Is/As.
func (e *CLIError) Unwrap() error {
	return e.cause
}

// New creates a CLIError in the given category.
func New(category ErrorCategory, step, message string, remediation ...string) *CLIError {
	return &CLIError{
		Category:    category,
		Step:        step,
		Message:     message,
		Remediation: remediation,
	}
}

// NewArgumentError creates a new argument error with the given message and remediation steps.
func NewArgumentError(message string, remediation ...string) *CLIError {
	return New(Argument, "", message, remediation...)
}

// NewRuntimeError creates a new runtime error.
func NewRuntimeError(message string, remediation ...string) *CLIError {
	return New(Runtime, "", message, remediation...)
}

// WithCause attaches the underlying error without exposing its text to the user.
func (e *CLIError) WithCause(err error) *CLIError {
	e.cause = err
	return e
}

// AsCLIError attempts to convert an error to a CLIError.
// Returns nil if the error is not a CLIError.
func AsCLIError(err error) *CLIError {
	var cliErr *CLIError
	if stderrors.As(err, &cliErr) {
		return cliErr
	}
	return nil
}
