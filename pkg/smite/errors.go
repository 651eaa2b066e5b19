package smite

import (
	"errors"
	"fmt"
)

// overuseMessage is the exact ret_msg the API returns when the daily
// request quota is exhausted. The comparison is byte-for-byte.
const overuseMessage = "Daily request limit reached."

// ErrOveruse is returned when the API reports that the daily request limit
// has been reached. Callers should stop issuing requests until the quota
// window resets; the condition is reported inside an HTTP 200 body and is
// checked before any other interpretation of a record.
var ErrOveruse = errors.New("daily request limit reached")

// TransportError is returned when the API responds with a non-200 status.
// The body is preserved verbatim for diagnostics.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("api responded with status %d: %s", e.StatusCode, e.Body)
}

// ParseError is returned when a response body is not valid JSON or a
// required field is absent or mistyped.
type ParseError struct {
	Method string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s response: %v", e.Method, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError is returned when a caller-supplied argument is outside
// its allowed range. No network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
