package errors

import (
	"errors"
	"fmt"
)

// Error codes for the practice tracker.
const (
	// Precondition errors
	ErrCodeCredentialsMissing = "CREDENTIALS_MISSING"

	// Remote store errors
	ErrCodeRemoteOperationFailed = "REMOTE_OPERATION_FAILED"
	ErrCodeDuplicateRecord       = "DUPLICATE_RECORD"

	// Selection errors
	ErrCodeNoMatch = "NO_MATCH"

	// Config errors
	ErrCodeConfigInvalid = "CONFIG_INVALID"

	// Validation errors
	ErrCodeValidationFailed = "VALIDATION_FAILED"
)

// TrackerError represents an error raised by the practice tracker core.
type TrackerError struct {
	Code    string
	Message string
	Err     error
}

func (e *TrackerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *TrackerError) Unwrap() error {
	return e.Err
}

// NewTrackerError creates a new TrackerError.
func NewTrackerError(code, message string, err error) *TrackerError {
	return &TrackerError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsCode reports whether err, or any error it wraps, is a TrackerError with the given code.
func IsCode(err error, code string) bool {
	var te *TrackerError
	if errors.As(err, &te) {
		return te.Code == code
	}
	return false
}

// ErrCredentialsMissing returns an error when the access key or store identifier is not configured.
// It is raised locally, before any network attempt.
func ErrCredentialsMissing(field string) *TrackerError {
	return &TrackerError{
		Code:    ErrCodeCredentialsMissing,
		Message: fmt.Sprintf("credentials missing: %s is not configured", field),
		Err:     nil,
	}
}

// ErrRemoteOperationFailed wraps a failure reported by the remote store or its transport.
func ErrRemoteOperationFailed(operation string, err error) *TrackerError {
	return &TrackerError{
		Code:    ErrCodeRemoteOperationFailed,
		Message: fmt.Sprintf("remote operation failed during %s", operation),
		Err:     err,
	}
}

// ErrDuplicateRecord returns an error when a lookup by a unique field matched more than one row.
func ErrDuplicateRecord(table, name string, count int) *TrackerError {
	return &TrackerError{
		Code:    ErrCodeDuplicateRecord,
		Message: fmt.Sprintf("%d records in %q share the unique name %q", count, table, name),
		Err:     nil,
	}
}

// ErrNoMatch returns an error when a selection query has no candidates.
func ErrNoMatch(query string) *TrackerError {
	return &TrackerError{
		Code:    ErrCodeNoMatch,
		Message: fmt.Sprintf("no problem matches %s", query),
		Err:     nil,
	}
}

// ErrConfigInvalid returns an error for invalid configuration.
func ErrConfigInvalid(reason string) *TrackerError {
	return &TrackerError{
		Code:    ErrCodeConfigInvalid,
		Message: fmt.Sprintf("invalid configuration: %s", reason),
		Err:     nil,
	}
}

// ErrValidationFailed returns a validation error.
func ErrValidationFailed(field, reason string) *TrackerError {
	return &TrackerError{
		Code:    ErrCodeValidationFailed,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Err:     nil,
	}
}
