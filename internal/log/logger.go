// Package log is a small leveled wrapper around log/slog. Verbosity is set
// once from the -v flag count and every package logs through the helpers
// below, including background goroutines.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Verbosity levels
const (
	LevelQuiet = iota // Default: only errors and warnings
	LevelInfo         // -v: cache hits, counts, command progress
	LevelDebug        // -vv: API calls, cache operations, revalidation
	LevelTrace        // -vvv: full details, swallowed write errors
)

const slogLevelTrace = slog.Level(-8)

// Format selects the slog handler.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var (
	mu        sync.RWMutex
	verbosity int
	logger    *slog.Logger
)

// Initialize sets up the global logger with the specified verbosity level
// using a text handler.
func Initialize(level int, w io.Writer) {
	InitializeWithFormat(level, w, FormatText)
}

// InitializeWithFormat sets up the global logger with an explicit handler format.
func InitializeWithFormat(level int, w io.Writer, format Format) {
	opts := &slog.HandlerOptions{Level: slogLevel(level)}

	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	mu.Lock()
	defer mu.Unlock()
	verbosity = level
	logger = slog.New(handler)
}

func slogLevel(level int) slog.Level {
	switch {
	case level >= LevelTrace:
		return slogLevelTrace
	case level >= LevelDebug:
		return slog.LevelDebug
	case level >= LevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

func current() (*slog.Logger, int) {
	mu.RLock()
	defer mu.RUnlock()
	return logger, verbosity
}

// Info logs at info level (-v)
func Info(msg string, args ...any) {
	if l, v := current(); v >= LevelInfo {
		l.Info(msg, args...)
	}
}

// Debug logs at debug level (-vv)
func Debug(msg string, args ...any) {
	if l, v := current(); v >= LevelDebug {
		l.Debug(msg, args...)
	}
}

// Trace logs at trace level (-vvv)
func Trace(msg string, args ...any) {
	if l, v := current(); v >= LevelTrace {
		l.Log(context.Background(), slogLevelTrace, msg, args...)
	}
}

// Warn logs at warn level (always visible)
func Warn(msg string, args ...any) {
	l, _ := current()
	l.Warn(msg, args...)
}

// Error logs at error level (always visible)
func Error(msg string, args ...any) {
	l, _ := current()
	l.Error(msg, args...)
}

// With returns a slog.Logger carrying a component attribute. The returned
// logger is bound to the handler active at call time.
func With(component string) *slog.Logger {
	l, _ := current()
	return l.With("component", component)
}

// IsInfo returns true if info-level logging is enabled
func IsInfo() bool {
	_, v := current()
	return v >= LevelInfo
}

// IsDebug returns true if debug-level logging is enabled
func IsDebug() bool {
	_, v := current()
	return v >= LevelDebug
}

// IsTrace returns true if trace-level logging is enabled
func IsTrace() bool {
	_, v := current()
	return v >= LevelTrace
}

// Verbosity returns the current verbosity level
func Verbosity() int {
	_, v := current()
	return v
}

func init() {
	// Default initialization with quiet mode to stderr
	Initialize(LevelQuiet, os.Stderr)
}
