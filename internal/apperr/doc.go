// Package apperr defines the error values that cross the HTTP boundary.
//
// Two kinds of errors reach the error formatter:
//
//   - *Error: an application error with a machine-readable key, a client-safe
//     message and a status code.
//   - *HTTPError: an HTTP-semantic error that is a complete response in itself
//     (not found, redirect, server error page).
//
// The formatter never switches on concrete types for field extraction. Instead it
// asks for optional capabilities (ErrorKey, Message, StatusCode, StackTrace) through
// errors.As, so any error in the chain that implements one of them is honored and
// absence maps to a defined default.
package apperr
