// Package errors provides a lightweight structured error type (CheckError)
// for category-based classification in the validation engine and CLI.
package errors

import (
	"fmt"
)

// ErrorCategory classifies a linkcheck error for reporting and exit handling.
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Local resolution errors
	CategoryFileSystem ErrorCategory = "filesystem"

	// External probe errors
	CategoryNetwork ErrorCategory = "network"

	// Runtime and infrastructure errors
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// CheckError is a structured error with category, severity, and context
type CheckError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for CheckError
type ContextFields map[string]any

// Error implements the error interface
func (e *CheckError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *CheckError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *CheckError) WithContext(key string, value any) *CheckError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new CheckError
func New(category ErrorCategory, severity ErrorSeverity, message string) *CheckError {
	return &CheckError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new CheckError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *CheckError {
	return &CheckError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// WrapError wraps an existing error with severity defaulted to error
func WrapError(err error, category ErrorCategory, message string) *CheckError {
	return &CheckError{
		Category: category,
		Severity: SeverityError,
		Message:  message,
		Cause:    err,
	}
}

// ConfigError creates a new configuration error
func ConfigError(message string) *CheckError {
	return &CheckError{
		Category: CategoryConfig,
		Severity: SeverityError,
		Message:  message,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if ce, ok := err.(*CheckError); ok {
		return ce.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a CheckError
func GetCategory(err error) ErrorCategory {
	if ce, ok := err.(*CheckError); ok {
		return ce.Category
	}
	return CategoryInternal
}
