// Package clientconfig loads the device-side YAML configuration.
package clientconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerURL string `yaml:"server_url"`
	Token     string `yaml:"token"`
	CachePath string `yaml:"cache_path"`
	LogLevel  string `yaml:"log_level,omitempty"`
}

// Load reads a device config file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("config: server_url is required")
	}
	if c.Token == "" {
		return fmt.Errorf("config: token is required")
	}
	if c.CachePath == "" {
		return fmt.Errorf("config: cache_path is required")
	}
	return nil
}
