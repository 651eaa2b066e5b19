package audit

import (
	"context"
	"log/slog"
)

// SlogLogger writes usage events to a structured logger.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates a SlogLogger. A nil logger uses slog.Default().
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger}
}

// Log implements Logger.
func (l *SlogLogger) Log(ctx context.Context, event Event) error {
	attrs := []any{
		"id", event.ID,
		"method", event.Method,
		"duration_ms", event.DurationMS,
		"success", event.Success,
	}
	if event.ErrorMessage != "" {
		attrs = append(attrs, "error", event.ErrorMessage)
	}
	l.logger.InfoContext(ctx, "api call", attrs...)
	return nil
}
