// Package config loads the simulation settings from the environment.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the runtime settings of a simulation run.
type Config struct {
	// Scenario is the path of a YAML scenario. Empty selects the embedded default.
	Scenario string `env:"SNEAK_SCENARIO"`
	// Ticks is how many ticks a run lasts.
	Ticks int `env:"SNEAK_TICKS" envDefault:"600"`
	// TickRate throttles the loop to this many ticks per second. Zero runs unthrottled.
	TickRate int `env:"SNEAK_TICK_RATE" envDefault:"0"`
	// HistoryLimit bounds each machine's transition log.
	HistoryLimit int `env:"SNEAK_HISTORY_LIMIT" envDefault:"32"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"SNEAK_LOG_LEVEL" envDefault:"info"`
	// LogFormat is text or json.
	LogFormat string `env:"SNEAK_LOG_FORMAT" envDefault:"text"`
}

// ErrInvalidConfig is returned when a loaded value is out of range.
var ErrInvalidConfig = errors.New("invalid config")

// Load reads a .env file when present, then parses the environment.
func Load(envFiles ...string) (Config, error) {
	// The .env file is optional.
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case c.Ticks < 0:
		return fmt.Errorf("%w: ticks must not be negative, got %d", ErrInvalidConfig, c.Ticks)
	case c.TickRate < 0:
		return fmt.Errorf("%w: tick rate must not be negative, got %d", ErrInvalidConfig, c.TickRate)
	case c.HistoryLimit < 0:
		return fmt.Errorf("%w: history limit must not be negative, got %d", ErrInvalidConfig, c.HistoryLimit)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}

	return nil
}
