package security

import (
	"fmt"
	"net/http"
)

// ErrorKind discriminates security failures so callers can map them to
// HTTP status codes without string matching.
type ErrorKind string

const (
	KindMalformedInput       ErrorKind = "malformed_input"
	KindSecurityViolation    ErrorKind = "security_violation"
	KindAuthFailure          ErrorKind = "auth_failure"
	KindAuthorizationFailure ErrorKind = "authorization_failure"
	KindRateLimited          ErrorKind = "rate_limited"
	KindInternal             ErrorKind = "internal"
)

// HTTPStatus returns the response code a failure of this kind produces.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindMalformedInput:
		return http.StatusBadRequest
	case KindSecurityViolation:
		return http.StatusBadRequest
	case KindAuthFailure:
		return http.StatusUnauthorized
	case KindAuthorizationFailure:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a structured security failure. Message is safe to send to
// clients; Issues carries server-side detail and is only exposed in
// development configurations.
type Error struct {
	Kind    ErrorKind
	Message string
	Issues  []string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError builds a security error of the given kind.
func NewError(kind ErrorKind, message string, issues ...string) *Error {
	return &Error{Kind: kind, Message: message, Issues: issues}
}
