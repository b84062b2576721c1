package app

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Config holds the process-level settings of the trainctl binary. They come
// from TRAINCTL_* environment variables, never from the training
// configuration itself.
type Config struct {
	LogLevel  string `env:"TRAINCTL_LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFormat string `env:"TRAINCTL_LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`

	// Model and Data name the registered classes to train. An empty Data
	// runs without a data module.
	Model string `env:"TRAINCTL_MODEL" envDefault:"LinearRegression" validate:"required"`
	Data  string `env:"TRAINCTL_DATA" envDefault:"SyntheticRegression"`

	ParseEnv           bool     `env:"TRAINCTL_PARSE_ENV" envDefault:"false"`
	DefaultConfigFiles []string `env:"TRAINCTL_DEFAULT_CONFIG_FILES" envSeparator:","`
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// ConfigFromEnv reads a Config from the given environment.
func ConfigFromEnv(environ map[string]string) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: environ})
	if err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	return NewConfig(cfg)
}

// Options turns the settings into App options.
func (c *Config) Options() []Option {
	return []Option{
		WithDataModule(c.Data),
		WithParseEnv(c.ParseEnv),
		WithDefaultConfigFiles(c.DefaultConfigFiles...),
		WithLogging(c.LogLevel, c.LogFormat, nil),
	}
}
