// Package logging builds the structured loggers used across albumdrop.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Level is Debug when the DEBUG environment variable is set, else Info.
func Level() slog.Level {
	if os.Getenv("DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// New returns a text logger on stderr tagged with the component name.
func New(component string) *slog.Logger {
	return NewWithWriter(os.Stderr, component)
}

// NewWithWriter is New writing to w.
func NewWithWriter(w io.Writer, component string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: Level(),
	}
	return slog.New(slog.NewTextHandler(w, opts)).With(slog.String("component", component))
}
