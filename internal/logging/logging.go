// Package logging builds the slog loggers used by the simulation host and the CLI.
package logging

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
	// FormatText outputs human-readable logs.
	FormatText Format = "text"
	// FormatJSON outputs one JSON object per record.
	FormatJSON Format = "json"
)

// Option configures logger creation.
type Option func(*config)

type config struct {
	level  slog.Level
	format Format
	output io.Writer
	attrs  []slog.Attr
}

// WithLevel sets the minimum level.
func WithLevel(l slog.Level) Option {
	return func(c *config) { c.level = l }
}

// WithFormat sets output format. Unknown formats panic so misconfiguration stops
// startup.
func WithFormat(f Format) Option {
	return func(c *config) {
		switch f {
		case FormatText, FormatJSON:
			c.format = f
		default:
			panic(fmt.Errorf("invalid log format %q: must be %q or %q", f, FormatText, FormatJSON))
		}
	}
}

// WithOutput sets the destination. Nil writers are ignored.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.output = w
		}
	}
}

// WithAttr adds static attributes to every record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(c *config) { c.attrs = append(c.attrs, attrs...) }
}

// New creates a configured logger. Defaults are text output at info level on stderr.
func New(opts ...Option) *slog.Logger {
	cfg := &config{level: slog.LevelInfo, format: FormatText, output: os.Stderr}
	for _, opt := range opts {
		opt(cfg)
	}

	handlerOpts := &slog.HandlerOptions{Level: cfg.level}

	var handler slog.Handler
	if cfg.format == FormatJSON {
		handler = slog.NewJSONHandler(cfg.output, handlerOpts)
	} else {
		handler = slog.NewTextHandler(cfg.output, handlerOpts)
	}

	if len(cfg.attrs) > 0 {
		handler = handler.WithAttrs(cfg.attrs)
	}

	return slog.New(handler)
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("parse log level %q: %w", s, err)
	}

	return l, nil
}

// Entity records the entity identifier under the key "entity".
func Entity(id fmt.Stringer) slog.Attr { return slog.String("entity", id.String()) }

// Name records an entity name under the key "name".
func Name(name string) slog.Attr { return slog.String("name", name) }

// State records a state label under the key "state".
func State(label string) slog.Attr { return slog.String("state", label) }

// Tick records the tick number under the key "tick".
func Tick(n uint64) slog.Attr { return slog.Uint64("tick", n) }

// Error records err under the key "error". A nil error yields an empty attribute.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}

	return slog.Any("error", err)
}
