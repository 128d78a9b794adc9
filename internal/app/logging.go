package app

import (
	"io"
	"strings"
	"time"

	"github.com/blackwell-systems/reportwatch/internal/config"
	"github.com/rs/zerolog"
)

// newLogger builds the process logger. Verbose forces debug level.
func newLogger(cfg config.Log, verbose bool, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}

	out := w
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: flagNoColor}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
