package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed request.
type ErrorKind string

// Error kinds. A network error means no response was received at all
// (connectivity, DNS, server down); an API error means the server responded
// with a failure status; a validation error is an API error whose body
// carries a field-level rejection.
const (
	KindNetwork    ErrorKind = "network_error"
	KindAPI        ErrorKind = "api_error"
	KindValidation ErrorKind = "validation_error"
)

// genericErrorMessage is the fallback shown when the server provides no
// usable detail.
const genericErrorMessage = "Something went wrong. Please try again."

// Error is the normalized failure shape for every request issued by Client.
// Requests never panic and never surface raw transport errors to callers.
type Error struct {
	Kind   ErrorKind
	Status int            // HTTP status; 0 for network errors
	Body   map[string]any // decoded response body; nil for network errors
	Err    error          // underlying transport or decode error, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case KindNetwork:
		return fmt.Sprintf("api: network error: %v", e.Err)
	default:
		return fmt.Sprintf("api: %s: status %d: %s", e.Kind, e.Status, e.Message())
	}
}

// Unwrap exposes the underlying transport error for errors.Is checks.
func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns a human-readable description using the fallback chain:
// server-provided "detail" field, first "non_field_errors" entry, then a
// generic message.
func (e *Error) Message() string {
	if e.Body != nil {
		if detail, ok := e.Body["detail"].(string); ok && detail != "" {
			return detail
		}
		if nfe, ok := e.Body["non_field_errors"].([]any); ok && len(nfe) > 0 {
			if s, ok := nfe[0].(string); ok && s != "" {
				return s
			}
		}
	}
	return genericErrorMessage
}

// Unauthorized reports whether the failure was an auth rejection (401/403),
// which callers treat as a redirect to the login boundary rather than an
// inline error.
func (e *Error) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// Message extracts a human-readable message from any error returned by this
// package, falling back to a generic string for unexpected error values.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	return genericErrorMessage
}

// IsUnauthorized reports whether err is an auth rejection from the server.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Unauthorized()
}

// IsNetworkError reports whether err means no response was received.
func IsNetworkError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindNetwork
}
