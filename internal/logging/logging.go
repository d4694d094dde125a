package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Init points the global logger at w. Console output is for people at a
// terminal; json emits one object per line for log collectors.
func Init(w io.Writer, verbose bool, format string) error {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	switch format {
	case "", FormatConsole:
		log.Logger = NewLogger(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"})
	case FormatJSON:
		zerolog.TimeFieldFormat = time.RFC3339Nano
		log.Logger = NewLogger(w)
	default:
		return fmt.Errorf("unknown log format %q (want %s or %s)", format, FormatConsole, FormatJSON)
	}
	zerolog.SetGlobalLevel(level)
	return nil
}

// NewLogger builds a timestamped logger writing to w.
func NewLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

// WithComponent derives a logger tagged with component from the global one.
func WithComponent(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}
