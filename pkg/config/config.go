// Package config provides configuration loading and management for acrqa.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Thresholds are the pass/fail limits applied to the QA metrics
	Thresholds struct {
		// SNRMin is the minimum acceptable signal-to-noise ratio
		SNRMin float64 `yaml:"snrMin"`

		// PIUMin is the minimum acceptable percent integral uniformity
		PIUMin float64 `yaml:"piuMin"`

		// GhostingMax is the maximum acceptable ghosting ratio
		GhostingMax float64 `yaml:"ghostingMax"`

		// SpacingTolerance is the maximum relative difference between
		// row and column pixel spacing, as a fraction of the larger value
		SpacingTolerance float64 `yaml:"spacingTolerance"`
	} `yaml:"thresholds"`

	// Report parameters
	Report struct {
		// Title is the report title
		Title string `yaml:"title"`
	} `yaml:"report"`

	// Output parameters
	Output struct {
		// PlotDir is the directory where plot files are written
		PlotDir string `yaml:"plotDir"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default QA thresholds
	cfg.Thresholds.SNRMin = 20
	cfg.Thresholds.PIUMin = 85
	cfg.Thresholds.GhostingMax = 0.025
	cfg.Thresholds.SpacingTolerance = 0.02

	// Set default report parameters
	cfg.Report.Title = "ACR QA Report"

	// Set default output parameters
	cfg.Output.PlotDir = "plots"
	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
