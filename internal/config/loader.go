package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/giantswarm/spotauth/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/spotauth"
	configFileName = "config.yaml"
)

// Environment variables that override the file.
const (
	EnvClientID     = "SPOTAUTH_CLIENT_ID"
	EnvClientSecret = "SPOTAUTH_CLIENT_SECRET"
	EnvRedirectURI  = "SPOTAUTH_REDIRECT_URI"
	EnvFlow         = "SPOTAUTH_FLOW"
)

// osUserHomeDir is replaced in tests.
var osUserHomeDir = os.UserHomeDir

// GetDefaultConfigPath returns ~/.config/spotauth.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadConfig loads config.yaml from configPath over the defaults, then
// applies environment overrides. A missing file is not an error.
func LoadConfig(configPath string) (Config, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
	case err != nil:
		return Config{}, fmt.Errorf("error reading config from %s: %w", configFilePath, err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
		}
		logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	}

	applyEnv(&config)

	if config.TokenDir == "" {
		config.TokenDir = filepath.Join(configPath, "tokens")
	}
	return config, nil
}

func applyEnv(config *Config) {
	config.ClientID = GetEnv(EnvClientID, config.ClientID)
	config.ClientSecret = GetEnv(EnvClientSecret, config.ClientSecret)
	config.RedirectURI = GetEnv(EnvRedirectURI, config.RedirectURI)
	config.Flow = GetEnv(EnvFlow, config.Flow)
}

// GetEnv returns the value of envVar, or defaultValue when it is unset or empty.
func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// Save writes config to configPath/config.yaml. The client secret is
// written too, so the file is created with 0600 permissions.
func Save(configPath string, config Config) error {
	if err := os.MkdirAll(configPath, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(&config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	path := filepath.Join(configPath, configFileName)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config to %s: %w", path, err)
	}
	logging.Info("ConfigLoader", "Saved configuration to %s", path)
	return nil
}
