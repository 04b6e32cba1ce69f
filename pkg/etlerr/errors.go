// Package etlerr defines the error taxonomy shared by the pipeline, the
// format adapters and the operation library.
package etlerr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrColumnNotFound    = errors.New("column not found")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrSealed            = errors.New("stats recorder is sealed")
)

// StateError reports a call that is invalid in the pipeline's current
// lifecycle state.
type StateError struct {
	Op     string
	State  string
	Reason string
}

func (e *StateError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: not allowed in state %s", e.Op, e.State)
	}
	return fmt.Sprintf("%s: not allowed in state %s: %s", e.Op, e.State, e.Reason)
}

// FormatError reports an unreadable or unwritable source/destination, or an
// encoding nobody can handle.
type FormatError struct {
	Op       string // read or write
	Path     string
	Encoding string
	Err      error
}

func (e *FormatError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Encoding != "" {
		b.WriteString(" " + e.Encoding)
	}
	if e.Path != "" {
		b.WriteString(" " + e.Path)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *FormatError) Unwrap() error { return e.Err }

// ConversionError names the field and row of a value that could not be
// coerced. Row is -1 when the failure is not tied to a single row.
type ConversionError struct {
	Field  string
	Row    int
	Value  string
	Target string
	Err    error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("convert field %q", e.Field)
	if e.Row >= 0 {
		msg += fmt.Sprintf(" row %d", e.Row)
	}
	if e.Value != "" {
		msg += fmt.Sprintf(" value %q", e.Value)
	}
	if e.Target != "" {
		msg += " to " + e.Target
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConversionError) Unwrap() error { return e.Err }

// ValidationError is only returned when a pipeline is configured to fail on
// rule violations; otherwise violations live in a report.
type ValidationError struct {
	Violations int
	Fields     []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d violations in %s", e.Violations, strings.Join(e.Fields, ", "))
}

// ConfigurationError reports malformed or conflicting options.
type ConfigurationError struct {
	Key    string
	Value  any
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := "config"
	if e.Key != "" {
		msg += " " + e.Key
	}
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// TransformError wraps a general failure inside a named operation.
type TransformError struct {
	Op  string
	Err error
}

func (e *TransformError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *TransformError) Unwrap() error { return e.Err }

// Missing builds the error returned when an operation needs a column the
// frame does not have.
func Missing(op, column string) error {
	return &TransformError{Op: op, Err: fmt.Errorf("%w: %s", ErrColumnNotFound, column)}
}

func IsState(err error) bool {
	var e *StateError
	return errors.As(err, &e)
}

func IsFormat(err error) bool {
	var e *FormatError
	return errors.As(err, &e)
}

func IsConversion(err error) bool {
	var e *ConversionError
	return errors.As(err, &e)
}

func IsConfiguration(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsFatal reports whether err always propagates regardless of strict mode.
func IsFatal(err error) bool {
	return IsState(err) || IsFormat(err) || IsConfiguration(err)
}
