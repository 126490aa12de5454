package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Data access errors
	ErrorTypeConnection  ErrorType = "connection"
	ErrorTypeQuery       ErrorType = "query"
	ErrorTypeTransaction ErrorType = "transaction"
	ErrorTypeTimeout     ErrorType = "timeout"
	ErrorTypeConstraint  ErrorType = "constraint"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeValidation  ErrorType = "validation"

	// Configuration errors
	ErrorTypeConfig         ErrorType = "config"
	ErrorTypeInitialization ErrorType = "initialization"

	// System errors
	ErrorTypeSystem  ErrorType = "system"
	ErrorTypeUnknown ErrorType = "unknown"
)

// DALError represents an error raised by the data access layer utilities
type DALError struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Operation string    `json:"operation,omitempty"`
	Source    string    `json:"source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Cause     error     `json:"-"`
}

// Error implements the error interface
func (e *DALError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause error
func (e *DALError) Unwrap() error {
	return e.Cause
}

// GetType returns the error type
func (e *DALError) GetType() ErrorType {
	return e.Type
}

// WithOperation sets the operation that raised the error
func (e *DALError) WithOperation(operation string) *DALError {
	e.Operation = operation
	return e
}

// WithSource sets the table, view or configuration section involved
func (e *DALError) WithSource(source string) *DALError {
	e.Source = source
	return e
}

// New creates a new DAL error
func New(errorType ErrorType, message string) *DALError {
	return &DALError{
		Type:      errorType,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Newf creates a new DAL error with a formatted message
func Newf(errorType ErrorType, format string, args ...interface{}) *DALError {
	return New(errorType, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with DAL error information
func Wrap(err error, errorType ErrorType, message string) *DALError {
	dalErr := New(errorType, message)
	dalErr.Cause = err
	return dalErr
}

// TypeOf extracts the error type from an error, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var dalErr *DALError
	if errors.As(err, &dalErr) {
		return dalErr.Type
	}
	return ErrorTypeUnknown
}

// IsType reports whether err carries the given error type
func IsType(err error, errorType ErrorType) bool {
	return TypeOf(err) == errorType
}

// IsConnectionError checks if an error is a connection-related error
func IsConnectionError(err error) bool {
	return IsType(err, ErrorTypeConnection)
}

// IsConfigError checks if an error is a configuration-related error
func IsConfigError(err error) bool {
	return IsType(err, ErrorTypeConfig)
}

// IsNotFoundError checks if an error is a "record not found" error
func IsNotFoundError(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}
