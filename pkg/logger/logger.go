// Package logger builds the application's slog.Logger from environment
// configuration. JSON output is the default so log lines can be consumed by
// aggregation tooling; text output is for local development.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format represents logger output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config is the environment-driven logger configuration.
type Config struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`   // debug, info, warn, error
	Format Format `env:"LOG_FORMAT" envDefault:"json"`  // json or text
	Source bool   `env:"LOG_SOURCE" envDefault:"false"` // include source file:line
}

// New creates a logger from cfg, writing to stdout. Static attrs are attached
// to every record (e.g. service name, version).
func New(cfg Config, attrs ...slog.Attr) (*slog.Logger, error) {
	return NewWithOutput(cfg, os.Stdout, attrs...)
}

// NewWithOutput is New with an explicit output writer, used by tests.
func NewWithOutput(cfg Config, w io.Writer, attrs ...slog.Attr) (*slog.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.Source,
	}

	var handler slog.Handler
	switch cfg.Format {
	case FormatText:
		handler = slog.NewTextHandler(w, opts)
	case FormatJSON, "":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("invalid log format %q: must be %q or %q", cfg.Format, FormatJSON, FormatText)
	}

	if len(attrs) > 0 {
		handler = handler.WithAttrs(attrs)
	}

	return slog.New(handler), nil
}

// MustNew works like New but panics on invalid configuration. Logger
// misconfiguration should prevent startup rather than surface at runtime.
func MustNew(cfg Config, attrs ...slog.Attr) *slog.Logger {
	log, err := New(cfg, attrs...)
	if err != nil {
		panic(err)
	}
	return log
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q", s)
	}
}
