package common

import (
	"context"
	"fmt"
	"log/slog"
)

// Logger is the component logger used by services. Messages are printf-style.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// DefaultLogger writes through the process slog logger, tagging every line with its component.
type DefaultLogger struct {
	component string
}

// NewLogger creates a logger for the named component
func NewLogger(component string) Logger {
	return &DefaultLogger{component: component}
}

func (l *DefaultLogger) Debug(msg string, args ...interface{}) {
	l.log(slog.LevelDebug, msg, args...)
}

func (l *DefaultLogger) Info(msg string, args ...interface{}) {
	l.log(slog.LevelInfo, msg, args...)
}

func (l *DefaultLogger) Warn(msg string, args ...interface{}) {
	l.log(slog.LevelWarn, msg, args...)
}

func (l *DefaultLogger) Error(msg string, args ...interface{}) {
	l.log(slog.LevelError, msg, args...)
}

func (l *DefaultLogger) log(level slog.Level, msg string, args ...interface{}) {
	logger := slog.Default()
	if !logger.Enabled(context.Background(), level) {
		return
	}
	logger.Log(context.Background(), level, fmt.Sprintf(msg, args...), "component", l.component)
}

type nopLogger struct{}

// NopLogger discards everything. Used by tests.
func NopLogger() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
