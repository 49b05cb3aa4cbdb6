package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the structured logger shared by every component.
type Logger struct {
	*slog.Logger
}

// NewLogger builds a JSON logger writing to stdout at the given level.
// Unknown or empty levels fall back to info.
func NewLogger(level string) *Logger {
	return New(os.Stdout, level)
}

func New(w io.Writer, level string) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return &Logger{Logger: slog.New(handler)}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, "error")
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
