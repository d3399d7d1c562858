package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"suitectl/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/suitectl"
	configFileName = "config.yaml"
)

func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}

	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads config.yaml from configPath on top of the defaults and
// resolves relative storage paths against configPath. A missing file
// yields the defaults; an unreadable, malformed or invalid file is an error.
func LoadConfig(configPath string) (SuitectlConfig, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
	case err != nil:
		logging.Info("ConfigLoader", "Error loading config.yaml from %s: %s", configFilePath, err)
		return SuitectlConfig{}, err
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return SuitectlConfig{}, NewConfigurationErrorWithDetails(configFilePath, "", "parse",
				"config.yaml is not valid YAML", err.Error(), []string{"Check indentation and quoting"})
		}
		logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	}

	if errs := Validate(config, configFilePath); errs.HasErrors() {
		return SuitectlConfig{}, errs
	}

	config.resolvePaths(configPath)
	return config, nil
}

func (c *SuitectlConfig) resolvePaths(configPath string) {
	c.Storage.SuitesDir = resolve(configPath, c.Storage.SuitesDir)
	if c.Storage.BackupDir != "" {
		c.Storage.BackupDir = resolve(configPath, c.Storage.BackupDir)
	}
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// Save writes c to config.yaml in configPath.
func Save(configPath string, c SuitectlConfig) error {
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", configPath, err)
	}
	data, err := yaml.Marshal(&c)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}
	path := filepath.Join(configPath, configFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logging.Info("ConfigLoader", "Saved configuration to %s", path)
	return nil
}
