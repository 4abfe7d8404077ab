package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/kartoza/wine-quality/internal/predictor"
)

// LogConfig controls where and how verbosely the app logs
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Config holds the application configuration
type Config struct {
	Port     int       `yaml:"port"`
	Endpoint string    `yaml:"endpoint"`
	Headless bool      `yaml:"headless"`
	Log      LogConfig `yaml:"log"`
	Version  string    `yaml:"-"`
}

// Default returns the configuration used when nothing is overridden
func Default() Config {
	return Config{
		Port:     8080,
		Endpoint: predictor.DefaultEndpoint,
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Version: "dev",
	}
}

// LoadFile reads a YAML file on top of the defaults. Keys absent from the
// file keep their default values.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks that the configuration can be used to start the app
func (c Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}

	u, err := url.Parse(c.Endpoint)
	switch {
	case c.Endpoint == "":
		errs = append(errs, errors.New("endpoint is required"))
	case err != nil:
		errs = append(errs, fmt.Errorf("invalid endpoint: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("endpoint must be an http(s) URL, got %q", c.Endpoint))
	case u.Host == "":
		errs = append(errs, fmt.Errorf("endpoint has no host: %q", c.Endpoint))
	}

	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}

	return errors.Join(errs...)
}
