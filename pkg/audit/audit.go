// Package audit provides usage accounting for API calls. The Smite API
// enforces a daily request quota per developer id, so harvesting tools
// need a record of every request issued, not just the ones that returned
// data.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event describes one API request.
type Event struct {
	// ID is a unique identifier for the event.
	ID string `json:"id"`

	// Timestamp is when the request was issued.
	Timestamp time.Time `json:"timestamp"`

	// Method is the API method name, e.g. "getmatchidsbyqueue".
	Method string `json:"method"`

	// DurationMS is the wall-clock duration of the request.
	DurationMS int64 `json:"duration_ms"`

	// Success reports whether the transport returned without error.
	Success bool `json:"success"`

	// ErrorMessage carries the transport error, if any.
	ErrorMessage string `json:"error_message,omitempty"`
}

// NewEvent starts an event for an API method call.
func NewEvent(method string) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Method:    method,
	}
}

// Finish stamps the outcome and duration onto the event.
func (e *Event) Finish(success bool, err error) {
	e.DurationMS = time.Since(e.Timestamp).Milliseconds()
	e.Success = success
	if err != nil {
		e.ErrorMessage = err.Error()
	}
}

// Logger records usage events. Implementations must not block materially;
// the client calls Log on its request path.
type Logger interface {
	Log(ctx context.Context, event Event) error
}

// NopLogger discards all events.
type NopLogger struct{}

// Log implements Logger.
func (NopLogger) Log(context.Context, Event) error { return nil }
