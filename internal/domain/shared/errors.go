// Package shared contains common domain errors used across all domain packages.
// This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrExpired = errors.New("expired")

	// External service errors
	ErrServiceUnavailable = errors.New("service unavailable")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "cohort", "submission"
	Op      string // Operation that failed, e.g., "Synthesize", "Aggregate"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Cohort domain errors
var (
	ErrInvalidArgument = NewDomainError("cohort", "Validate", ErrInvalidInput, "invalid argument")
	ErrEmptyPopulation = NewDomainError("cohort", "Aggregate", ErrEmptyValue, "population is empty")
	ErrStudentNotFound = NewDomainError("cohort", "Find", ErrNotFound, "student not found")
)

// Submission domain errors
var (
	ErrInvalidSubmission  = NewDomainError("submission", "Validate", ErrValidation, "invalid submission")
	ErrFileTypeNotAllowed = NewDomainError("submission", "CheckFile", ErrInvalidFormat, "file type is not allowed")
	ErrFileTooLarge       = NewDomainError("submission", "CheckFile", ErrValueOutOfRange, "file size exceeds limit")
	ErrDeadlinePassed     = NewDomainError("submission", "Evaluate", ErrExpired, "submission deadline has passed")
	ErrInvalidSettings    = NewDomainError("submission", "UpdateSettings", ErrValidation, "invalid submission settings")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsExpired checks if the error reports an elapsed deadline.
func IsExpired(err error) bool {
	return errors.Is(err, ErrExpired)
}
