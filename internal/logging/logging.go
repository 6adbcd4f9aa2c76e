// Package logging builds the zerolog loggers used by the commands.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// NewLogger returns a timestamped logger writing to stderr.
// Unknown levels fall back to info; any format other than console is JSON.
func NewLogger(level, format string) zerolog.Logger {
	return New(os.Stderr, level, format)
}

// New returns a timestamped logger writing to w.
func New(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if strings.EqualFold(format, FormatConsole) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).With().Timestamp().Logger().Level(lvl)
}

// Component returns a sub-logger tagged with component.
func Component(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}
