// Package forensiclog configures process-wide structured logging for the
// CLI and library entry points, matching the slog.Default().With(...)
// component-tagging convention used throughout this lineage.
package forensiclog

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls log destination and verbosity.
type Options struct {
	// Level is the minimum level to emit.
	Level slog.Level
	// JSON selects the JSON handler (production); false uses the text
	// handler (development, human-readable).
	JSON bool
	// FilePath, when non-empty, rotates logs through lumberjack instead
	// of writing to stderr.
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Init installs a process-wide slog default logger per opts and returns
// it for callers that want a direct reference.
func Init(opts Options) *slog.Logger {
	var w io.Writer = os.Stderr
	if opts.FilePath != "" {
		w = &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    nonZero(opts.MaxSizeMB, 100),
			MaxBackups: nonZero(opts.MaxBackups, 3),
			MaxAge:     nonZero(opts.MaxAgeDays, 28),
		}
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// Component returns a logger tagged with the given component name,
// following the slog.Default().With("component", name) convention used
// by every package in this lineage.
func Component(name string) *slog.Logger {
	return slog.Default().With("component", name)
}

func nonZero(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
