// Package logging provides structured logging for orbitsim.
// It wraps the standard slog package with a text handler on stderr, since
// stdout belongs to tables, exports and the terminal renderer.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLevel names the environment variable that sets the log level.
const EnvLevel = "ORBITSIM_LOG_LEVEL"

// Logger wraps slog.Logger with error-aware helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger writing to stderr. The level comes from
// ORBITSIM_LOG_LEVEL (DEBUG, INFO, WARN, ERROR); verbose forces DEBUG.
func NewLogger(verbose bool) *Logger {
	level := getLogLevelFromEnv()
	if verbose {
		level = slog.LevelDebug
	}
	return New(os.Stderr, level)
}

func New(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{slog.New(handler)}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, slog.LevelError+1)
}

// Error logs err under the "error" key.
func (l *Logger) Error(ctx context.Context, msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err.Error())
	}
	l.Log(ctx, slog.LevelError, msg, args...)
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{l.Logger.With(args...)}
}

// Slog returns the underlying logger, or the default one for a nil Logger.
func (l *Logger) Slog() *slog.Logger {
	if l == nil || l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

func getLogLevelFromEnv() slog.Level {
	switch strings.ToUpper(os.Getenv(EnvLevel)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WrapError wraps an error with additional context information.
func WrapError(err error, context string, args ...any) error {
	if err == nil {
		return nil
	}
	if len(args) > 0 {
		context = fmt.Sprintf(context, args...)
	}
	return fmt.Errorf("%s: %w", context, err)
}
