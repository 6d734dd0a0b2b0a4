package oidc

import (
	"errors"
	"fmt"
	"net/http"
)

// FlowError is the single error kind raised by the OIDC flow. Message is safe
// to show to the end user; Status is the HTTP status the route boundary should
// respond with. The underlying cause (if any) is kept for logs only and never
// rendered.
type FlowError struct {
	Status  int
	Message string
	cause   error
}

func (e *FlowError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *FlowError) Unwrap() error { return e.cause }

// flowError creates a FlowError with the given HTTP-equivalent status.
func flowError(status int, message string) *FlowError {
	return &FlowError{Status: status, Message: message}
}

// flowErrorCause wraps cause for operator logs while keeping message safe.
func flowErrorCause(status int, message string, cause error) *FlowError {
	return &FlowError{Status: status, Message: message, cause: cause}
}

// StatusFor maps err to the HTTP status the caller should respond with.
// Non-FlowError values map to 500.
func StatusFor(err error) int {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Status
	}
	return http.StatusInternalServerError
}

// UserMessage returns the safe user-facing message for err. Anything that is
// not a FlowError gets a generic message so internal detail never leaks.
func UserMessage(err error) string {
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe.Message
	}
	return "Sign-in failed. Please try again."
}
