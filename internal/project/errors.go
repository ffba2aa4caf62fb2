package project

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned by Open when the directory has no config file.
var ErrNotInitialized = errors.New("project is not initialized")

// PersistenceError reports a failed read or write of project state. The
// previous on-disk state is left intact.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// ConfigError reports a project config that exists but cannot be used.
type ConfigError struct {
	Path    string
	Line    int
	Message string
}

func (e *ConfigError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}
