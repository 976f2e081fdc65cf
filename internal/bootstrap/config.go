// Package bootstrap wires configuration, storage, the engine and the HTTP
// server into a runnable service.
package bootstrap

import (
	"fmt"
	"os"

	"github.com/asolytics/combo-engine/internal/config"
	"github.com/asolytics/combo-engine/internal/logging"
)

// LoadConfig loads configuration from CONFIG_PATH (default config.yml).
// A missing file is fine; env vars and defaults carry the config.
func LoadConfig() (*config.Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yml"
	}
	return config.Load(configPath)
}

// CreateLogger creates a logger instance from configuration.
func CreateLogger(cfg *config.Config) (*logging.Adapter, error) {
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}
