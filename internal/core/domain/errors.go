package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// DomainError represents an error with a structured error code.
// Codes follow the PC-{CATEGORY}-{NNNN} scheme.
type DomainError struct {
	Code    string // Error code (e.g., "PC-AUTH-4010")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches any DomainError carrying the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Network errors (NET).
var (
	// ErrTransport indicates the request never produced an HTTP response
	// (dial failure, TLS failure, timeout, cancellation).
	ErrTransport = NewDomainError("PC-NET-5030", "transport failure")

	// ErrDecodeResponse indicates a response body that is not valid JSON.
	ErrDecodeResponse = NewDomainError("PC-NET-5020", "invalid response body")
)

// Authentication errors (AUTH).
var (
	// ErrUnauthorized indicates the backend rejected the bearer token.
	ErrUnauthorized = NewDomainError("PC-AUTH-4010", "unauthorized")

	// ErrNotAuthenticated indicates a protected operation was attempted
	// without a session.
	ErrNotAuthenticated = NewDomainError("PC-AUTH-4011", "not authenticated")

	// ErrSessionExpired indicates the stored token's exp claim has passed.
	ErrSessionExpired = NewDomainError("PC-AUTH-4012", "session expired")

	// ErrForbidden indicates the backend refused the call for the user's
	// access level.
	ErrForbidden = NewDomainError("PC-AUTH-4030", "forbidden")
)

// Token errors (TOKN).
var (
	// ErrTokenMalformed indicates the token could not be decoded.
	ErrTokenMalformed = NewDomainError("PC-TOKN-4000", "malformed token")

	// ErrTokenAbsent indicates no token is stored.
	ErrTokenAbsent = NewDomainError("PC-TOKN-4001", "no token")
)

// Business errors (API).
var (
	// ErrAPI is the code every APIError carries.
	ErrAPI = NewDomainError("PC-API-4000", "request rejected")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = NewDomainError("PC-API-4040", "not found")
)

// System errors (SYS).
var (
	// ErrInternal indicates an unexpected server failure.
	ErrInternal = NewDomainError("PC-SYS-5000", "internal server error")

	// ErrStorage indicates a storage tier failure.
	ErrStorage = NewDomainError("PC-SYS-5001", "storage error")

	// ErrConfig indicates invalid configuration.
	ErrConfig = NewDomainError("PC-SYS-5002", "invalid configuration")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("PC-SYS-4290", "too many requests")

	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("PC-ARG-1001", "invalid argument")
)

// APIError is returned for every non-2xx response from the platform backend.
// It carries whatever the envelope said so callers can present it.
type APIError struct {
	Status   int
	Method   string
	Path     string
	Messages []string
	Actions  []string
	Cause    error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	if len(e.Messages) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Messages, "; "))
	}
	return b.String()
}

// Unwrap returns the cause, if any.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// Is maps the status onto the sentinel codes so callers can use errors.Is
// without inspecting status numbers.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	switch t.Code {
	case ErrAPI.Code:
		return true
	case ErrUnauthorized.Code:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden.Code:
		return e.Status == http.StatusForbidden
	case ErrNotFound.Code:
		return e.Status == http.StatusNotFound
	case ErrRateLimited.Code:
		return e.Status == http.StatusTooManyRequests
	}
	return false
}

// HasAction reports whether the envelope carried the named action.
func (e *APIError) HasAction(action string) bool {
	return HasAction(e.Actions, action)
}

// StatusCode extracts the HTTP status from an APIError chain, or 0.
func StatusCode(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}
