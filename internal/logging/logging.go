// Package logging provides the thin trace logger shared by the core components.
package logging

import (
	"log"
	"os"
)

// Logger is the type components accept for optional trace output.
// A nil *Logger is always safe to call SetEnabled, Enabled and Tracef on.
type Logger struct {
	*log.Logger
	enabled bool
}

// New creates a Logger writing to stderr with the given prefix.
func New(prefix string) *Logger {
	return &Logger{
		Logger: log.New(os.Stderr, prefix, log.LstdFlags),
	}
}

// SetEnabled toggles whether Tracef actually emits output.
func (l *Logger) SetEnabled(enabled bool) {
	if l == nil {
		return
	}
	l.enabled = enabled
}

// Enabled reports whether tracing is currently on.
func (l *Logger) Enabled() bool {
	return l != nil && l.enabled
}

// Tracef logs a formatted trace line when the logger is non-nil and enabled.
func (l *Logger) Tracef(format string, args ...any) {
	if !l.Enabled() {
		return
	}
	l.Printf(format, args...)
}
