package audit

import (
	"context"
	"log/slog"
)

// LogRecorder writes audit events to the structured log. The logger is
// expected to carry the redacting handler so token-shaped values can never
// leak through event context.
type LogRecorder struct {
	logger *slog.Logger
}

// NewLogRecorder creates a Recorder that appends events to the given logger.
func NewLogRecorder(logger *slog.Logger) *LogRecorder {
	return &LogRecorder{logger: logger.With(slog.String("component", "audit"))}
}

// Record logs the event at info level.
func (r *LogRecorder) Record(ctx context.Context, eventType string, eventContext map[string]any) error {
	r.logger.InfoContext(ctx, "audit event",
		slog.String("event_type", eventType),
		slog.Any("context", eventContext),
	)
	return nil
}
