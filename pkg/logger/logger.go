package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

var defaultLogger *slog.Logger

// Configure installs a default logger from the observability.logging section.
func Configure(level, format string) error {
	l, err := New(os.Stdout, level, format)
	if err != nil {
		return err
	}
	defaultLogger = l
	slog.SetDefault(defaultLogger)
	return nil
}

// New builds a logger writing to w without touching the process default.
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info", "":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
}

// Discard returns a logger that drops everything; handy in tests and CLI runs.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func LoggerWrapper() *slog.Logger {
	if defaultLogger == nil {
		// lazy initialize a development logger to avoid nil pointer panics
		defaultLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
		slog.SetDefault(defaultLogger)
	}
	return defaultLogger
}

// L is a short alias of LoggerWrapper.
func L() *slog.Logger {
	return LoggerWrapper()
}
