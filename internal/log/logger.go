// Package log configures the structured logger shared by all components.
package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config captures options for the root logger.
type Config struct {
	Level   string    // "debug", "info", ...; empty means info
	Output  io.Writer // defaults to os.Stderr
	Service string    // attached to every entry
}

// Configure builds the root logger from cfg. Components derive from it with
// WithComponentFrom.
func Configure(cfg Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil {
			level = parsed
		}
	}
	zerolog.TimeFieldFormat = time.RFC3339

	writer := cfg.Output
	if writer == nil {
		writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	service := cfg.Service
	if service == "" {
		service = "resumectl"
	}

	return zerolog.New(writer).Level(level).With().
		Timestamp().
		Str(FieldService, service).
		Logger()
}

// WithComponentFrom annotates an explicit logger with the component name.
func WithComponentFrom(l zerolog.Logger, component string) zerolog.Logger {
	return l.With().Str(FieldComponent, component).Logger()
}
