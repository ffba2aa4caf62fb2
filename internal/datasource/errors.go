package datasource

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get for an unknown datasource name.
var ErrNotFound = errors.New("datasource not found")

// DuplicateNameError is returned by Add when the name is already configured
// and overwrite was not requested.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("a datasource named %q already exists", e.Name)
}

// ConnectionError is returned when a probe could not reach the backend.
// Reason is safe to show to the user; Err carries the driver's raw error.
type ConnectionError struct {
	Name   string
	Reason string
	Err    error
}

func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot connect to datasource %q: %s: %v", e.Name, e.Reason, e.Err)
	}
	return fmt.Sprintf("cannot connect to datasource %q: %s", e.Name, e.Reason)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ValidationError reports a descriptor field with an unusable value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}
