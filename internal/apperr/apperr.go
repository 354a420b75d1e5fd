package apperr

import (
	"net/http"
)

// Error is an application error carrying everything the JSON error body needs.
type Error struct {
	key     string
	message string
	status  int
	cause   error
	stack   stack
}

// New creates an application error with the given status, key and message.
func New(status int, key, message string) *Error {
	return &Error{
		key:     key,
		message: message,
		status:  status,
		stack:   callers(1),
	}
}

// Wrap creates an application error around cause. The cause stays reachable
// through errors.Is / errors.As but is never shown to clients.
func Wrap(cause error, status int, key, message string) *Error {
	return &Error{
		key:     key,
		message: message,
		status:  status,
		cause:   cause,
		stack:   callers(1),
	}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *Error) Unwrap() error { return e.cause }

// ErrorKey returns the machine-readable error key, e.g. "conflict".
func (e *Error) ErrorKey() string { return e.key }

// Message returns the client-safe message.
func (e *Error) Message() string { return e.message }

// StatusCode returns the HTTP status for this error.
func (e *Error) StatusCode() int { return e.status }

// StackTrace returns the call stack captured at construction.
func (e *Error) StackTrace() string { return e.stack.String() }

// BadRequest creates a 400 error.
func BadRequest(message string) *Error {
	return &Error{key: "bad_request", message: message, status: http.StatusBadRequest, stack: callers(1)}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *Error {
	return &Error{key: "unauthorized", message: message, status: http.StatusUnauthorized, stack: callers(1)}
}

// Forbidden creates a 403 error.
func Forbidden(message string) *Error {
	return &Error{key: "forbidden", message: message, status: http.StatusForbidden, stack: callers(1)}
}

// NotFoundError creates a 404 application error for a named resource.
// Use NotFound for the HTTP-semantic variant.
func NotFoundError(resource string) *Error {
	return &Error{key: "not_found", message: resource + " not found", status: http.StatusNotFound, stack: callers(1)}
}

// Conflict creates a 409 error.
func Conflict(message string) *Error {
	return &Error{key: "conflict", message: message, status: http.StatusConflict, stack: callers(1)}
}
