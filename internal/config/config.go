// Package config loads the validator configuration from YAML.
package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/januswing/strategy-miner/internal/types"
	"github.com/januswing/strategy-miner/pkg/errors"
)

// Config is the full validator configuration.
type Config struct {
	Symbol         string         `yaml:"symbol" validate:"required"`
	Interval       types.Interval `yaml:"interval" validate:"required"`
	Bars           int            `yaml:"bars" validate:"gt=0"`
	FeeRate        float64        `yaml:"fee_rate" validate:"gte=0,lt=1"`
	InitialCapital float64        `yaml:"initial_capital" validate:"gt=0"`

	Thresholds types.PassThresholds `yaml:"thresholds"`
	Monitor    MonitorConfig        `yaml:"monitor"`
	Store      StoreConfig          `yaml:"store"`
	Notifier   NotifierConfig       `yaml:"notifier"`
}

// MonitorConfig tunes the real-time monitor.
type MonitorConfig struct {
	IntervalSeconds int `yaml:"interval_seconds" validate:"gt=0"`
	MinSample       int `yaml:"min_sample" validate:"gt=0"`
}

// StoreConfig locates the candidate database.
type StoreConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// NotifierConfig holds the optional webhook endpoint.
type NotifierConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

// Default returns the standard configuration.
func Default() Config {
	return Config{
		Symbol:         "BTCUSDT",
		Interval:       types.Interval1d,
		Bars:           200,
		FeeRate:        0.001,
		InitialCapital: 10000,
		Thresholds:     types.DefaultThresholds(),
		Monitor: MonitorConfig{
			IntervalSeconds: 60,
			MinSample:       30,
		},
		Store: StoreConfig{
			Path: "strategies.duckdb",
		},
	}
}

// Load reads the config file at path. A missing file yields the defaults;
// a present file is merged over them and validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}

		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config file %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration against its struct constraints.
func (c Config) Validate() error {
	if !c.Interval.IsValid() {
		return errors.Newf(errors.ErrCodeInvalidInterval, "unsupported interval %q", c.Interval)
	}

	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	return nil
}
