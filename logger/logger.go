package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Init configures the process-wide slog logger.
// level: "debug", "info", "warn", "error" (anything else is info).
// format: "json" or "text".
func Init(level, format string) {
	slog.SetDefault(slog.New(newHandler(os.Stdout, level, format)))
}

func newHandler(w io.Writer, level, format string) slog.Handler {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Println logs at info level
func Println(v ...interface{}) {
	slog.Info(fmt.Sprint(v...))
}

// Printf logs a formatted message at info level
func Printf(format string, v ...interface{}) {
	slog.Info(fmt.Sprintf(format, v...))
}

// Errorf logs a formatted message at error level
func Errorf(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...))
}

// Fatalf logs at error level and exits
func Fatalf(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...))
	os.Exit(1)
}
