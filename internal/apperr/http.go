package apperr

import (
	"fmt"
	"net/http"
)

var explanations = map[int]string{
	http.StatusMovedPermanently:      "The resource has been moved to",
	http.StatusFound:                 "The resource was found at",
	http.StatusSeeOther:              "The resource has been moved to",
	http.StatusBadRequest:            "The server could not comply with the request since it is either malformed or otherwise incorrect.",
	http.StatusUnauthorized:          "This server could not verify that you are authorized to access the document you requested.",
	http.StatusForbidden:             "Access was denied to this resource.",
	http.StatusNotFound:              "The resource could not be found.",
	http.StatusMethodNotAllowed:      "The method is not allowed for this resource.",
	http.StatusRequestEntityTooLarge: "The request is larger than the server is willing or able to process.",
	http.StatusTooManyRequests:       "The user has sent too many requests in a given amount of time.",
	http.StatusInternalServerError:   "The server has either erred or is incapable of performing the requested operation.",
}

// HTTPError is an HTTP-semantic error: it encodes the intended status and,
// for redirects, the target location. Browser-facing requests render it as-is.
// Key is optional and only reported to API clients.
type HTTPError struct {
	Status   int
	Detail   string
	Location string
	Key      string
	stack    stack
}

// NewHTTPError creates an HTTP-semantic error with an optional detail line.
func NewHTTPError(status int, detail string) *HTTPError {
	return &HTTPError{Status: status, Detail: detail, stack: callers(1)}
}

// NotFound is the router-level 404.
func NotFound() *HTTPError {
	return &HTTPError{Status: http.StatusNotFound, stack: callers(1)}
}

// MethodNotAllowed is the router-level 405.
func MethodNotAllowed(method string) *HTTPError {
	return &HTTPError{
		Status: http.StatusMethodNotAllowed,
		Detail: fmt.Sprintf("The method %s is not allowed for this resource.", method),
		stack:  callers(1),
	}
}

// Found is a 302 redirect to location.
func Found(location string) *HTTPError {
	return &HTTPError{Status: http.StatusFound, Location: location, stack: callers(1)}
}

// ServerError is a generic 500 page carrying detail.
func ServerError(detail string) *HTTPError {
	return &HTTPError{Status: http.StatusInternalServerError, Detail: detail, stack: callers(1)}
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message()
}

// Title is the status line, e.g. "404 Not Found".
func (e *HTTPError) Title() string {
	return fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status))
}

// Explanation is the fixed, status-specific sentence shown on the error page.
func (e *HTTPError) Explanation() string {
	if text, ok := explanations[e.Status]; ok {
		return text
	}
	return http.StatusText(e.Status)
}

// Message returns the detail, or the explanation when no detail was given.
func (e *HTTPError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Explanation()
}

// WithKey sets the key reported to API clients and returns e.
func (e *HTTPError) WithKey(key string) *HTTPError {
	e.Key = key
	return e
}

// ErrorKey returns the key, empty when none was set.
func (e *HTTPError) ErrorKey() string { return e.Key }

func (e *HTTPError) StatusCode() int { return e.Status }

func (e *HTTPError) StackTrace() string { return e.stack.String() }

// IsRedirect reports whether the error is a 3xx carrying a location.
func (e *HTTPError) IsRedirect() bool {
	return e.Status >= 300 && e.Status < 400 && e.Location != ""
}
