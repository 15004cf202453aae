// Package logging holds the process-wide structured logger used across
// the engine. Every call site logs with key-value pairs, e.g.
// logging.Logger.Info("msg", "key", value).
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Logger is the global logger instance. It is safe to use before Init
// is called: it defaults to a discard handler so library code (and
// tests) never needs a nil check.
var Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Init initializes the logger to write leveled, structured records to w.
// Set pretty to true for a human-readable text handler (interactive
// CLI use); false selects JSON (batch/CI use).
func Init(w io.Writer, level slog.Level, pretty bool) {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if pretty {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	Logger = slog.New(handler)
}

// InitStderr is a convenience wrapper used by cmd/bsc for interactive
// runs: human-readable text on stderr at info level.
func InitStderr() {
	Init(os.Stderr, slog.LevelInfo, true)
}
