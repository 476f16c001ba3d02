package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode is the stable, client-visible identifier of an error class
type ErrorCode string

const (
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeRateLimited  ErrorCode = "RATE_LIMITED"
	ErrCodeUpstream     ErrorCode = "UPSTREAM_ERROR"
	ErrCodeComputation  ErrorCode = "COMPUTATION_ERROR"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

var (
	ErrUnauthenticated = NewDomainError(ErrCodeUnauthorized, "authentication required")
	ErrForbidden       = NewDomainError(ErrCodeForbidden, "insufficient permissions")
	ErrRateLimited     = NewDomainError(ErrCodeRateLimited, "too many requests")
)

// FieldError describes one violated constraint
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field-level problem found in a request
type ValidationError struct {
	Problems []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.Field+": "+p.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a problem for field
func (e *ValidationError) Add(field, message string) {
	e.Problems = append(e.Problems, FieldError{Field: field, Message: message})
}

// HasProblems reports whether any problem was recorded
func (e *ValidationError) HasProblems() bool {
	return len(e.Problems) > 0
}

// OrNil returns e when it has problems and nil otherwise
func (e *ValidationError) OrNil() error {
	if e.HasProblems() {
		return e
	}
	return nil
}

// UpstreamFetchError wraps a record store failure
type UpstreamFetchError struct {
	Kind string
	Err  error
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Kind, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.Err
}

// ComputationError reports a calculator that could not produce a finite result
type ComputationError struct {
	Calculator string
	Reason     string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s calculation failed: %s", e.Calculator, e.Reason)
}

// CodeOf returns the error code for err
func CodeOf(err error) ErrorCode {
	var validationErr *ValidationError
	var upstreamErr *UpstreamFetchError
	var computationErr *ComputationError
	var domainErr *DomainError

	switch {
	case errors.As(err, &validationErr):
		return ErrCodeValidation
	case errors.As(err, &upstreamErr):
		return ErrCodeUpstream
	case errors.As(err, &computationErr):
		return ErrCodeComputation
	case errors.As(err, &domainErr):
		return domainErr.Code
	}
	return ErrCodeInternal
}

// HTTPStatus maps an error to the HTTP status code returned to clients
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
