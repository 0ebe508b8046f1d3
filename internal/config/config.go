package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ErrInvalid reports a configuration value out of range.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all application configuration.
type Config struct {
	Pipeline PipelineConfig
	Logging  LogConfig
}

// PipelineConfig holds the pipeline tuning.
type PipelineConfig struct {
	QueueCapacity int           `envconfig:"MUNCH_QUEUE_CAPACITY" default:"10"`
	MaxLineLength int           `envconfig:"MUNCH_MAX_LINE_LENGTH" default:"50959"`
	QueueTimeout  time.Duration `envconfig:"MUNCH_QUEUE_TIMEOUT" default:"0s"`
	Stats         bool          `envconfig:"MUNCH_STATS" default:"true"`
	Metrics       bool          `envconfig:"MUNCH_METRICS" default:"false"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"warn"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load loads configuration from a .env file, when present, then from environment
// variables. Variables already set in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			QueueCapacity: 10,
			MaxLineLength: 50959,
			Stats:         true,
		},
		Logging: LogConfig{
			Level: "warn",
		},
	}
}

// Validate checks value ranges envconfig cannot express.
func (c *Config) Validate() error {
	switch {
	case c.Pipeline.QueueCapacity <= 0:
		return fmt.Errorf("%w: MUNCH_QUEUE_CAPACITY must be positive, got %d", ErrInvalid, c.Pipeline.QueueCapacity)
	case c.Pipeline.MaxLineLength <= 0:
		return fmt.Errorf("%w: MUNCH_MAX_LINE_LENGTH must be positive, got %d", ErrInvalid, c.Pipeline.MaxLineLength)
	case c.Pipeline.QueueTimeout < 0:
		return fmt.Errorf("%w: MUNCH_QUEUE_TIMEOUT must not be negative, got %s", ErrInvalid, c.Pipeline.QueueTimeout)
	}
	return nil
}
