package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the command-line tool configuration.
type Config struct {
	Parser ParserConfig `toml:"parser"`
	Output OutputConfig `toml:"output"`
	Log    LogConfig    `toml:"log"`
}

// ParserConfig holds parser settings
type ParserConfig struct {
	AllowMissing bool `toml:"allow_missing"`
	Lenient      bool `toml:"lenient"`
}

// OutputConfig holds output settings
type OutputConfig struct {
	Format string `toml:"format"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads the TOML file at path. An empty path yields the defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		path = os.ExpandEnv(path)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Output.Format == "" {
		c.Output.Format = "json"
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
}
