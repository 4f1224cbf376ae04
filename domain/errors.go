package domain

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Sentinel errors for common error conditions.
var (
	// ErrNotFound indicates that a requested paper or author was not found.
	// It is an expected outcome of a lookup, not a transport failure.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that caller-supplied input is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrBadQuery indicates that the API rejected the query parameters.
	ErrBadQuery = errors.New("bad query")

	// ErrRateLimited indicates that the API rejected the request with 429.
	ErrRateLimited = errors.New("rate limited")

	// ErrServiceUnavailable indicates a 5xx response from the API.
	ErrServiceUnavailable = errors.New("service unavailable")
)

// NetworkError indicates that a request never produced an HTTP response:
// connection failure, timeout, or a broken body read. Network errors are
// retryable.
type NetworkError struct {
	Op    string
	Cause error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// HTTPError indicates a non-2xx response from the API.
type HTTPError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int

	// Message is the error message extracted from the response body.
	Message string

	// RetryAfter is the server-requested retry delay parsed from the
	// Retry-After header, or zero if the header was absent.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// Unwrap maps well-known status codes onto sentinel errors so that callers
// can use errors.Is without inspecting status codes directly.
func (e *HTTPError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.StatusCode == http.StatusBadRequest:
		return ErrBadQuery
	case e.StatusCode >= 500 && e.StatusCode < 600:
		return ErrServiceUnavailable
	}
	return nil
}

// Retryable reports whether the response status indicates a transient
// condition worth retrying: 429 or any 5xx.
func (e *HTTPError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		(e.StatusCode >= 500 && e.StatusCode < 600)
}

// DecodeError indicates that a response body could not be decoded into the
// expected record shape. Decode errors are terminal.
type DecodeError struct {
	Endpoint string
	Cause    error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s response: %v", e.Endpoint, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// InvalidIDError indicates that a paper or author identifier does not match
// any supported format. It is raised before any network call is made.
type InvalidIDError struct {
	Kind string
	ID   string
}

// Error implements the error interface.
func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("invalid %s id: %q", e.Kind, e.ID)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *InvalidIDError) Unwrap() error {
	return ErrInvalidInput
}

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewNetworkError creates a new NetworkError.
func NewNetworkError(op string, cause error) *NetworkError {
	return &NetworkError{Op: op, Cause: cause}
}

// NewHTTPError creates a new HTTPError.
func NewHTTPError(statusCode int, message string, retryAfter time.Duration) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Message: message, RetryAfter: retryAfter}
}

// NewDecodeError creates a new DecodeError.
func NewDecodeError(endpoint string, cause error) *DecodeError {
	return &DecodeError{Endpoint: endpoint, Cause: cause}
}

// NewInvalidIDError creates a new InvalidIDError.
func NewInvalidIDError(kind, id string) *InvalidIDError {
	return &InvalidIDError{Kind: kind, ID: id}
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Retryable reports whether err describes a transient failure that a caller
// may retry: network errors and retryable HTTP statuses. Decode failures,
// not-found responses and caller errors are terminal.
func Retryable(err error) bool {
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Retryable()
	}
	return false
}

// RetryAfter extracts the server-requested retry delay from err, if any.
func RetryAfter(err error) time.Duration {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.RetryAfter
	}
	return 0
}
