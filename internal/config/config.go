// Package config loads the CLI configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration loaded from config.yaml.
// Every field can be overridden by environment variables or flags.
type Config struct {
	// AuthKey is the DeepL API authentication key.
	AuthKey string `yaml:"auth-key,omitempty"`

	// ServerURL overrides the API endpoint. Normally empty; the endpoint
	// is derived from the auth key.
	ServerURL string `yaml:"server-url,omitempty"`

	// ProxyURL routes all requests through a proxy. HTTP, HTTPS and
	// SOCKS5 URLs are supported.
	ProxyURL string `yaml:"proxy-url,omitempty"`

	// MaxRetries sets how often failed requests are retried. Default: 5.
	MaxRetries *int `yaml:"max-retries,omitempty"`

	// PollIntervalSeconds sets the document status poll cadence.
	// Default: 5.
	PollIntervalSeconds int `yaml:"poll-interval-seconds,omitempty"`

	// LoggingToFile writes logs to the given file with rotation instead
	// of stderr.
	LoggingToFile string `yaml:"logging-to-file,omitempty"`

	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose,omitempty"`
}

// NewDefaultConfig returns a config with all defaults applied.
func NewDefaultConfig() *Config {
	return &Config{
		PollIntervalSeconds: 5,
	}
}

// LoadConfigOptional loads the config file at path. A missing file is not an
// error when optional is set; defaults are returned instead.
func LoadConfigOptional(path string, optional bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && optional {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := NewDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.PollIntervalSeconds <= 0 {
		cfg.PollIntervalSeconds = 5
	}
	return cfg, nil
}
