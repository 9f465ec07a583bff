package ioconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lexgraph/lexdb/pkg/config"
	"github.com/lexgraph/lexdb/pkg/templates"
	"gopkg.in/yaml.v3"
)

// GetConfigDir returns the configuration directory. Uses
// ~/.config/lexdb/ on all platforms for consistency.
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "lexdb"), nil
}

// GetDefaultConfigPath returns the full path to the default config file.
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// GetDefaultSourcesPath returns the full path to the default source
// catalog.
func GetDefaultSourcesPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "sources.toml"), nil
}

// GenerateDefaultConfig creates documented default config and sources
// files at the default location. Does NOT overwrite existing files.
func GenerateDefaultConfig() (string, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return "", err
	}

	sourcesPath, err := GetDefaultSourcesPath()
	if err != nil {
		return "", err
	}

	files := map[string]string{
		configPath:  templates.ConfigYAML,
		sourcesPath: templates.SourcesTOML,
	}

	missing := 0
	for path := range files {
		if _, err := os.Stat(path); err != nil {
			missing++
		}
	}
	if missing == 0 {
		return "", fmt.Errorf(
			"config files already exist at %s", filepath.Dir(configPath))
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	for path, content := range files {
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return "", fmt.Errorf("failed to write %s: %w",
				filepath.Base(path), err)
		}
	}

	return configPath, nil
}

// ConfigFileExists checks if a config file exists at the default
// location.
func ConfigFileExists() (bool, error) {
	configPath, err := GetDefaultConfigPath()
	if err != nil {
		return false, err
	}

	_, err = os.Stat(configPath)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// ValidateGeneratedConfig reads and validates a generated config file.
func ValidateGeneratedConfig(configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}

	// The generated config has all values commented out.
	cfg.MergeWithDefaults()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}
