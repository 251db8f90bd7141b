// Package config loads FamilySync settings from a YAML file and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/akilaweerasekara/Home-Inventory/internal/auth"
	"github.com/akilaweerasekara/Home-Inventory/pkg/logging"
)

// Config holds all settings.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
	Auth    AuthConfig    `yaml:"auth"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// StorageConfig selects where state is persisted.
type StorageConfig struct {
	// Path is the SQLite database file.
	Path string `yaml:"path"`

	// QuotaBytes limits the total stored size. Zero means no limit.
	QuotaBytes int64 `yaml:"quota_bytes"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
}

// AuthConfig selects the password credential.
type AuthConfig struct {
	// Credential is "checksum" (compatible with existing data) or "bcrypt".
	Credential string `yaml:"credential"`

	// BcryptCost is only used with the bcrypt credential.
	BcryptCost int `yaml:"bcrypt_cost"`
}

// MetricsConfig configures the metrics textfile.
type MetricsConfig struct {
	// File receives Prometheus text output on exit. Empty disables it.
	File string `yaml:"file"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Path: filepath.Join("data", "familysync.db"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Auth: AuthConfig{
			Credential: "checksum",
			BcryptCost: 10,
		},
	}
}

// Load reads the YAML file at path over the defaults and then applies
// environment overrides. A missing file is not an error, and an empty path
// skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults only
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings for values no component can accept.
func (c *Config) Validate() error {
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}
	if c.Storage.QuotaBytes < 0 {
		return fmt.Errorf("storage.quota_bytes cannot be negative")
	}
	if _, err := auth.NewCredential(c.Auth.Credential, c.Auth.BcryptCost); err != nil {
		return fmt.Errorf("invalid auth.credential: %w", err)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging.level: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	c.Storage.Path = getEnv("FAMILYSYNC_DB_PATH", getEnv("DB_PATH", c.Storage.Path))
	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Auth.Credential = getEnv("FAMILYSYNC_CREDENTIAL", c.Auth.Credential)
	c.Metrics.File = getEnv("FAMILYSYNC_METRICS_FILE", c.Metrics.File)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
