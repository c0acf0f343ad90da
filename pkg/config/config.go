/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ssargent/procgen/pkg/generator"
	"github.com/ssargent/procgen/pkg/logging"
)

// Config represents the procgen configuration
type Config struct {
	OutputDir string    `yaml:"output_dir"`
	Processes int       `yaml:"processes"`
	Layout    string    `yaml:"layout"`
	Seed      uint64    `yaml:"seed"`
	Sync      bool      `yaml:"sync"`
	CodeSize  SizeRange `yaml:"code_size"`
	DataSize  SizeRange `yaml:"data_size"`
	Catalog   Catalog   `yaml:"catalog"`
	Metrics   Metrics   `yaml:"metrics"`
	Logging   Logging   `yaml:"logging"`
}

// SizeRange is an inclusive segment size range in bytes
type SizeRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Catalog contains process catalog configuration
type Catalog struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// Metrics contains metrics output configuration
type Metrics struct {
	File string `yaml:"file"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		OutputDir: "processes",
		Processes: 5,
		Layout:    string(generator.LayoutFiles),
		CodeSize:  SizeRange{Min: 16, Max: 80},
		DataSize:  SizeRange{Min: 64, Max: 192},
		Catalog: Catalog{
			Enabled: false,
			Dir:     "catalog",
		},
		Logging: Logging{
			Level:  "info",
			Format: string(logging.FormatText),
		},
	}
}

// GeneratorConfig converts the file configuration into generator settings
func (c *Config) GeneratorConfig() generator.Config {
	return generator.Config{
		Count:       c.Processes,
		OutputDir:   c.OutputDir,
		CodeSize:    generator.Range{Min: c.CodeSize.Min, Max: c.CodeSize.Max},
		DataSize:    generator.Range{Min: c.DataSize.Min, Max: c.DataSize.Max},
		Layout:      generator.Layout(c.Layout),
		Seed:        c.Seed,
		SyncOnClose: c.Sync,
	}
}

// Validate checks the configuration for unusable values
func (c *Config) Validate() error {
	if err := c.GeneratorConfig().Validate(); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	if c.Catalog.Enabled && c.Catalog.Dir == "" {
		return fmt.Errorf("catalog is enabled but catalog.dir is empty")
	}
	return nil
}

// LoadConfig loads configuration from the specified path.
// Fields missing from the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path
func SaveConfig(config *Config, configPath string) error {
	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// BootstrapConfig writes a default configuration to configPath, using
// outputDir when it is not empty
func BootstrapConfig(configPath string, outputDir string) (*Config, error) {
	config := DefaultConfig()
	if outputDir != "" {
		config.OutputDir = outputDir
	}

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./procgen.yaml"
	}

	// For Linux/macOS, use ~/.config/procgen/config.yaml
	configDir := filepath.Join(homeDir, ".config", "procgen")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
