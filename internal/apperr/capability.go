package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// DefaultKey is reported for errors that carry no key of their own.
const DefaultKey = "unknown"

type keyer interface{ ErrorKey() string }

type messager interface{ Message() string }

type statusCoder interface{ StatusCode() int }

type stackTracer interface{ StackTrace() string }

// KeyOf returns the first ErrorKey in err's chain, or DefaultKey when there
// is none or it is empty.
func KeyOf(err error) string {
	var k keyer
	if errors.As(err, &k) {
		if key := k.ErrorKey(); key != "" {
			return key
		}
	}
	return DefaultKey
}

// MessageOf returns the first Message in err's chain, or err.Error().
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var m messager
	if errors.As(err, &m) {
		return m.Message()
	}
	return err.Error()
}

// StatusOf returns the first StatusCode in err's chain, or 500.
// Values that cannot be written as a status line also map to 500.
func StatusOf(err error) int {
	var s statusCoder
	if errors.As(err, &s) {
		if code := s.StatusCode(); code >= 100 && code <= 999 {
			return code
		}
	}
	return http.StatusInternalServerError
}

// StackOf returns the stack captured by the first StackTrace in err's chain.
// Without one it describes the error chain, outermost first.
func StackOf(err error) string {
	var st stackTracer
	if errors.As(err, &st) {
		if trace := st.StackTrace(); trace != "" {
			return describe(err) + trace
		}
	}
	return describe(err)
}

func describe(err error) string {
	var b strings.Builder
	for e := err; e != nil; e = errors.Unwrap(e) {
		fmt.Fprintf(&b, "%T: %v\n", e, e)
	}
	return b.String()
}

// AsHTTPError extracts the HTTP-semantic error from err's chain.
func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}
