// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"perimeterwatch/internal/engine"
)

// GreptimeConfig points the alarm sink at a GreptimeDB instance.
type GreptimeConfig struct {
	Endpoint string `yaml:"endpoint"`
	Database string `yaml:"database"`
	Table    string `yaml:"table"`
}

// Config is the root configuration for the classification engine and its surfaces.
type Config struct {
	DebounceFrames       int            `yaml:"debounce_frames"`
	CooldownSeconds      float64        `yaml:"cooldown_seconds"`
	WarningLoiterSeconds float64        `yaml:"warning_loiter_seconds"`
	ResultsDir           string         `yaml:"results_dir"`
	LogLevel             string         `yaml:"log_level"`
	LogFormat            string         `yaml:"log_format"`
	Greptime             GreptimeConfig `yaml:"greptime"`
}

// Default returns the built-in configuration.
func Default() *Config {
	p := engine.DefaultParams()
	return &Config{
		DebounceFrames:       p.DebounceFrames,
		CooldownSeconds:      p.CooldownSeconds,
		WarningLoiterSeconds: p.WarningLoiterSeconds,
		ResultsDir:           "results",
		LogLevel:             "info",
		LogFormat:            "text",
		Greptime:             GreptimeConfig{Database: "public", Table: "perimeter_alarms"},
	}
}

// Load reads a YAML config, validates it against the CUE schema and applies
// environment overrides. An empty configPath yields the defaults. An empty
// schemaPath uses the embedded schema.
func Load(configPath, schemaPath string) (*Config, error) {
	cfg := Default()
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("cannot read config: %w", err)
		}
		schema, err := loadSchema(schemaPath)
		if err != nil {
			return nil, err
		}
		if err := ValidateWithCue(configPath, data, schema); err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot unmarshal config: %w", err)
		}
		log.Printf("[Config] Loaded configuration from %s", configPath)
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides fields from GREPTIMEDB_ENDPOINT, GREPTIMEDB_DATABASE,
// GREPTIMEDB_TABLE and PERIMETER_RESULTS_DIR.
func (c *Config) applyEnv() {
	if v := os.Getenv("GREPTIMEDB_ENDPOINT"); v != "" {
		c.Greptime.Endpoint = v
	}
	if v := os.Getenv("GREPTIMEDB_DATABASE"); v != "" {
		c.Greptime.Database = v
	}
	if v := os.Getenv("GREPTIMEDB_TABLE"); v != "" {
		c.Greptime.Table = v
	}
	if v := os.Getenv("PERIMETER_RESULTS_DIR"); v != "" {
		c.ResultsDir = v
	}
}

// Params returns the engine thresholds.
func (c *Config) Params() engine.Params {
	return engine.Params{
		DebounceFrames:       c.DebounceFrames,
		CooldownSeconds:      c.CooldownSeconds,
		WarningLoiterSeconds: c.WarningLoiterSeconds,
	}
}
