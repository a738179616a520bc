// Package logging configures the global zerolog logger and hands out
// component-scoped loggers.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global logger. format is "json" or "console";
// unknown levels fall back to info.
func Setup(level, format string) {
	SetupWithWriter(level, format, os.Stdout)
}

// SetupWithWriter is Setup with an explicit destination
func SetupWithWriter(level, format string, out io.Writer) {
	zerolog.SetGlobalLevel(ParseLevel(level))

	var w io.Writer = out
	if format != "json" {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// ParseLevel converts a level name to a zerolog level
func ParseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// LevelFromVerbosity maps a -v count to a level name
func LevelFromVerbosity(verbosity int) string {
	switch verbosity {
	case 0:
		return "warn"
	case 1:
		return "info"
	case 2:
		return "debug"
	default:
		return "trace"
	}
}

// GetLogger returns a contextualized logger with the given name
func GetLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
