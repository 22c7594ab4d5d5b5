// Package logging builds the zerolog logger used by the command line tools
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var ErrUnknownFormat = errors.New("unknown log format")

// Config selects the level, encoding and destination of log output
type Config struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=console json"`

	// Output is stdout, stderr or a file path that is appended to
	Output string `yaml:"output" default:"stderr" validate:"required"`
}

// Logger is a zerolog logger that owns its output when logging to a file
type Logger struct {
	zerolog.Logger
	closer io.Closer
}

// Close releases the log file if one was opened
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// New opens the configured output and returns a logger writing to it
func New(cfg Config) (*Logger, error) {
	var (
		out    io.Writer
		closer io.Closer
	)
	switch cfg.Output {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	default:
		file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("unable to open log file, %w", err)
		}
		out = file
		closer = file
	}

	zl, err := NewWithWriter(cfg, out)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}
	return &Logger{Logger: zl, closer: closer}, nil
}

// NewWithWriter returns a logger writing to w
func NewWithWriter(cfg Config, w io.Writer) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		lvl, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level, %w", err)
		}
		level = lvl
	}

	switch cfg.Format {
	case "", FormatConsole:
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		}
	case FormatJSON:
	default:
		return zerolog.Nop(), fmt.Errorf("got %q, %w", cfg.Format, ErrUnknownFormat)
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger(), nil
}
