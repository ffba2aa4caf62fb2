package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidateSyntax validates YAML syntax by streaming through the document.
// It uses yaml.Decoder to efficiently process large files without loading
// the entire content into memory.
//
// Returns nil if the YAML is syntactically valid, or an error with line
// information if syntax errors are found.
func ValidateSyntax(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	for {
		var n yaml.Node
		if err := dec.Decode(&n); err != nil {
			if errors.Is(err, io.EOF) {
				return nil // All documents valid
			}
			return err // Syntax error with line info
		}
	}
}

// ValidationError represents a YAML validation error with location info.
type ValidationError struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (e *ValidationError) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	case e.File != "":
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	default:
		return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
}

// ValidateBytes validates YAML data and returns structured error info
// naming file (used only for the message). Returns nil when valid.
func ValidateBytes(data []byte, file string) *ValidationError {
	err := ValidateSyntax(bytes.NewReader(data))
	if err == nil {
		return nil
	}

	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		return &ValidationError{File: file, Message: strings.Join(typeErr.Errors, "; ")}
	}

	line := 0
	msg := err.Error()
	if n, _ := fmt.Sscanf(msg, "yaml: line %d:", &line); n == 1 {
		if idx := strings.Index(msg, ": "); idx > 0 {
			if rest := strings.SplitN(msg[idx+2:], ": ", 2); len(rest) == 2 {
				msg = rest[1]
			}
		}
		return &ValidationError{File: file, Line: line, Column: 1, Message: msg}
	}
	return &ValidationError{File: file, Message: strings.TrimPrefix(msg, "yaml: ")}
}
