package logging

import (
	"io"
	"log/slog"
	"os"
)

const serviceName = "fairledger"

// SetupJSON sets slog's default logger to JSON output on stdout at the given
// level and returns it.
func SetupJSON(level slog.Level) *slog.Logger {
	logger := NewJSON(os.Stdout, level)
	slog.SetDefault(logger)

	return logger
}

// NewJSON builds a JSON logger tagged with the service name.
func NewJSON(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(
		slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}),
	).With("service", serviceName)
}
