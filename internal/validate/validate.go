// SPDX-License-Identifier: MIT

// Package validate provides configuration validation utilities for buildcfg.
package validate

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrInvalidValue is matched by every Error produced by a Validator.
var ErrInvalidValue = errors.New("invalid configuration value")

// Error represents a validation error
type Error struct {
	Field   string // Field name that failed validation
	Value   any    // The invalid value
	Message string // Human-readable error message
}

// Error implements the error interface
func (e Error) Error() string {
	return fmt.Sprintf("invalid value for %s: %s", e.Field, e.Message)
}

// Unwrap lets callers use errors.Is(err, ErrInvalidValue).
func (e Error) Unwrap() error {
	return ErrInvalidValue
}

// Validator accumulates validation errors and can produce a ValidationError when invalid.
type Validator struct {
	errors []Error
}

// ValidationError bundles multiple validation errors into a single error value.
type ValidationError struct {
	errors []Error
}

// New creates a new validator
func New() *Validator {
	return &Validator{
		errors: make([]Error, 0),
	}
}

// AddError adds a validation error
func (v *Validator) AddError(field, message string, value any) {
	v.errors = append(v.errors, Error{
		Field:   field,
		Value:   value,
		Message: message,
	})
}

// IsValid returns true if no errors have been accumulated
func (v *Validator) IsValid() bool {
	return len(v.errors) == 0
}

// Errors returns all accumulated validation errors
func (v *Validator) Errors() []Error {
	return v.errors
}

// Err converts the accumulated validation errors into an error value.
func (v *Validator) Err() error {
	if len(v.errors) == 0 {
		return nil
	}

	copied := make([]Error, len(v.errors))
	copy(copied, v.errors)

	return ValidationError{errors: copied}
}

// Errors returns the individual validation errors making up the validation failure.
func (e ValidationError) Errors() []Error {
	return e.errors
}

// Fields returns the names of the offending fields in report order.
func (e ValidationError) Fields() []string {
	out := make([]string, 0, len(e.errors))
	for _, err := range e.errors {
		out = append(out, err.Field)
	}
	return out
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e ValidationError) Unwrap() []error {
	out := make([]error, len(e.errors))
	for i, err := range e.errors {
		out[i] = err
	}
	return out
}

// Error implements the error interface for ValidationError.
func (e ValidationError) Error() string {
	if len(e.errors) == 0 {
		return ""
	}

	if len(e.errors) == 1 {
		return e.errors[0].Error()
	}

	msgs := make([]string, len(e.errors))
	for i, err := range e.errors {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// NotEmpty validates that a string is not empty or whitespace-only
func (v *Validator) NotEmpty(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "value cannot be empty", value)
	}
}

// OneOf validates that a value is one of the allowed values
func (v *Validator) OneOf(field, value string, allowed []string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.AddError(field,
		fmt.Sprintf("must be one of %s, got %q", strings.Join(allowed, ", "), value),
		value)
}

// LookPathFunc resolves an executable name the way exec.LookPath does.
type LookPathFunc func(file string) (string, error)

// Executable validates that name resolves to an executable on the host.
// A nil lookPath uses exec.LookPath. The resolved path is returned, or ""
// when resolution failed.
func (v *Validator) Executable(field, name string, lookPath LookPathFunc) string {
	if strings.TrimSpace(name) == "" {
		v.AddError(field, "executable name cannot be empty", name)
		return ""
	}
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	resolved, err := lookPath(name)
	if err != nil {
		v.AddError(field, fmt.Sprintf("executable %q not found on host: %v", name, err), name)
		return ""
	}
	return resolved
}

// Custom allows custom validation logic
// The validator function should return an error if validation fails
func (v *Validator) Custom(field string, value any, validator func(any) error) {
	if err := validator(value); err != nil {
		v.AddError(field, err.Error(), value)
	}
}
