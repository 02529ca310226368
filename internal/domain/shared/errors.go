package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches another DomainError by code, so wrapped errors still compare
// equal to the sentinel vars below.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapDomainError creates a domain error carrying the cause
func WrapDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	CodeNotFound          = "NOT_FOUND"
	CodeAlreadyExists     = "ALREADY_EXISTS"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeInvalidState      = "INVALID_STATE"
	CodeFetchFailed       = "FETCH_FAILED"
	CodeSaveFailed        = "SAVE_FAILED"
	CodePropagationFailed = "PROPAGATION_FAILED"
)

// Common domain errors
var (
	ErrNotFound          = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists     = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput      = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrInvalidState      = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrFetchFailed       = NewDomainError(CodeFetchFailed, "Failed to fetch data")
	ErrSaveFailed        = NewDomainError(CodeSaveFailed, "Failed to save data")
	ErrPropagationFailed = NewDomainError(CodePropagationFailed, "Failed to propagate stock change")
)

// FetchFailed wraps a read failure
func FetchFailed(what string, err error) *DomainError {
	return WrapDomainError(CodeFetchFailed, "failed to fetch "+what, err)
}

// SaveFailed wraps a write failure
func SaveFailed(what string, err error) *DomainError {
	return WrapDomainError(CodeSaveFailed, "failed to save "+what, err)
}

// PropagationFailed wraps a failed propagation step
func PropagationFailed(eventType string, err error) *DomainError {
	return WrapDomainError(CodePropagationFailed, "failed to propagate "+eventType, err)
}

// CodeOf returns the domain error code of err, or "" when err is not a DomainError
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
