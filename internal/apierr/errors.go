// Package apierr defines the service's error taxonomy and maps it to HTTP
// status codes for the API layer.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind categorizes an error for routing/logging/HTTP-mapping purposes.
type Kind string

const (
	// Config indicates a missing or invalid configuration value. Startup-fatal.
	Config Kind = "CONFIG"
	// UpstreamHTTP indicates a platform or peer service returned a non-2xx
	// or malformed response.
	UpstreamHTTP Kind = "UPSTREAM_HTTP"
	// NotFound indicates a peer service reported an absent entity.
	NotFound Kind = "NOT_FOUND"
	// Parse indicates a regex or JSON decoding failure.
	Parse Kind = "PARSE"
	// Broker indicates an event publish or consume failure.
	Broker Kind = "BROKER"
	// Persist indicates a database or cache failure.
	Persist Kind = "PERSIST"
	// Validation indicates bad input to an HTTP handler.
	Validation Kind = "VALIDATION"
)

// Error is the service's structured error type. It always carries a Kind so
// callers can branch on failure category without string matching.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error of the given kind, wrapping an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind from err if it is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// HTTPStatus maps an error to the HTTP status code the API layer should
// respond with, per the CONFIG/VALIDATION/NOT_FOUND/else→500 policy.
func HTTPStatus(err error) int {
	kind, ok := KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Config, UpstreamHTTP, Parse, Broker, Persist:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
