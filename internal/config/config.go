// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"fence-cost/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Store contains persistence configuration
	Store StoreConfig `json:"store"`

	// Estimate contains estimation defaults
	Estimate EstimateConfig `json:"estimate"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// StoreConfig contains persistence settings
type StoreConfig struct {
	// Path is the SQLite database path
	Path string `json:"path"`
}

// EstimateConfig contains estimation defaults
type EstimateConfig struct {
	// BusinessUnit is the default business unit for labor rates
	BusinessUnit string `json:"business_unit"`

	// BufferFt is the default waste buffer in feet when a line item omits one
	BufferFt string `json:"buffer_ft"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format (cli, json)
	DefaultFormat string `json:"default_format"`

	// ShowDetails shows the per-line-item breakdown
	ShowDetails bool `json:"show_details"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Version: "1",
		Store: StoreConfig{
			Path: "fence-cost.db",
		},
		Estimate: EstimateConfig{
			BusinessUnit: "DEFAULT",
			BufferFt:     "0",
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
			ShowDetails:   true,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads configuration from a JSON file, applying defaults for
// missing fields
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultPath returns the default config file location
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fence-cost.json"
	}
	return filepath.Join(home, ".fence-cost.json")
}

var (
	mu      sync.RWMutex
	current = Default()
)

// Get returns the current configuration
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Set replaces the current configuration
func Set(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	current = cfg
}
