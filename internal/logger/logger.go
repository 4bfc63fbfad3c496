// Package logger wraps log/slog with the lab's defaults.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var (
	// Default is the logger used by the package-level helpers.
	Default *slog.Logger
)

func init() {
	// Quiet by default so the CLI and TUI output stays clean.
	Default = NewText("warn", os.Stderr)
}

// ParseLevel maps a level name to a slog level. Unknown names map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a JSON logger, used by the HTTP server.
func New(level string, output io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(output, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// NewText creates a text logger for interactive use.
func NewText(level string, output io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// SetDefault replaces the package logger and slog's default.
func SetDefault(logger *slog.Logger) {
	Default = logger
	slog.SetDefault(logger)
}

func Debug(msg string, args ...any) {
	Default.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	Default.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Default.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Default.Error(msg, args...)
}

// With returns a logger with additional attributes.
func With(args ...any) *slog.Logger {
	return Default.With(args...)
}
