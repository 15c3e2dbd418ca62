// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string for the record store.
	DatabaseURL string
	// DataDir is the root directory of the blob store; image files live
	// under DataDir/images.
	DataDir string
	// GeminiAPIKey enables the receipt scanner when set.
	GeminiAPIKey string
	LogLevel     string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DataDir:      os.Getenv("DATA_DIR"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		LogLevel:     os.Getenv("LOG_LEVEL"),
	}

	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	cfg.DataDir = filepath.Clean(cfg.DataDir)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that all required configuration is present.
func (c *Config) validate() error {
	var errs []string

	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// ScannerEnabled reports whether the receipt scanner is configured.
func (c *Config) ScannerEnabled() bool {
	return c.GeminiAPIKey != ""
}
