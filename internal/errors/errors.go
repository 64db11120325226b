package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies pipeline errors per the failure taxonomy: a
// malformed document is fatal for its entity only, missing reference
// data propagates as absent fields, and bad configuration is rejected
// before any stage runs.
type ErrorType string

const (
	ErrTypeDocumentFormat   ErrorType = "DOCUMENT_FORMAT"
	ErrTypeNoQualifyingData ErrorType = "NO_QUALIFYING_DATA"
	ErrTypeMissingReference ErrorType = "MISSING_REFERENCE_DATA"
	ErrTypeConfig           ErrorType = "CONFIG"
	ErrTypeStorage          ErrorType = "STORAGE"
	ErrTypeValidation       ErrorType = "VALIDATION"
	ErrTypeNotFound         ErrorType = "NOT_FOUND"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewDocumentFormatError reports a disclosure document whose shape does
// not match the expected companyfacts structure. Fatal for the entity,
// skip-and-continue for the batch.
func NewDocumentFormatError(message string, cause error) *AppError {
	return NewAppError(ErrTypeDocumentFormat, message, cause)
}

// NewConfigError reports invalid pipeline parameters, rejected at
// construction before any data is touched.
func NewConfigError(message string) *AppError {
	return NewAppError(ErrTypeConfig, message, nil)
}

// NewStorageError creates a file read/write error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// IsType reports whether err (or anything it wraps) is an AppError of
// the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// TypeOf returns the error type of err, or empty string when err is not
// an AppError.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}
