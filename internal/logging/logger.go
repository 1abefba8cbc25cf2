// Package logging builds the application logger. All output passes through a
// redacting handler so password- and token-shaped values never reach the log
// stream in plaintext.
package logging

import (
	"log/slog"
	"os"
)

// New creates a JSON logger at the given level with secret redaction applied.
func New(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(NewRedactingHandler(handler))
}
