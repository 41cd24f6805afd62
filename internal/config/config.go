// Package config loads client configuration from a YAML file, an optional
// .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// EnvAPIBase selects the API root URL and overrides the config file.
	EnvAPIBase = "PAWSITIVE_API_BASE"
	// EnvConfigFile points at an alternate config file.
	EnvConfigFile = "PAWSITIVE_CONFIG"

	// DefaultAPIBaseURL is used when neither the file nor the environment set a root.
	DefaultAPIBaseURL = "http://localhost:8080/api"
	// DefaultRequestTimeout bounds every API round trip.
	DefaultRequestTimeout = 15 * time.Second
	// DefaultAdminRoleID is the role id the backend seeds for administrators.
	DefaultAdminRoleID int64 = 2
)

// Config is the top-level client configuration.
type Config struct {
	// APIBaseURL is the REST root, e.g. http://localhost:8080/api.
	APIBaseURL string `yaml:"api-base-url"`
	// StateDir holds the durable client state file.
	StateDir string `yaml:"state-dir"`
	// RequestTimeout bounds each API call.
	RequestTimeout time.Duration `yaml:"request-timeout"`
	// AdminRoleIDs lists role ids treated as administrative.
	AdminRoleIDs []int64 `yaml:"admin-role-ids"`
	// Debug enables debug logging regardless of Logging.Level.
	Debug bool `yaml:"debug"`
	// Logging configures log output.
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures logrus output and file rotation.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max-size-mb"`
	MaxBackups int    `yaml:"max-backups"`
	MaxAgeDays int    `yaml:"max-age-days"`
}

// Default returns a configuration populated with defaults.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads the YAML file at path (a missing file is not an error),
// then applies .env and environment overrides and fills defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	// .env never overrides variables already present in the environment.
	_ = godotenv.Load()

	if base := strings.TrimSpace(os.Getenv(EnvAPIBase)); base != "" {
		cfg.APIBaseURL = base
	}
	cfg.applyDefaults()
	return cfg, nil
}

// DefaultPath returns the config file location used when none is given.
func DefaultPath() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p
	}
	return filepath.Join(defaultStateDir(), "config.yaml")
}

func (c *Config) applyDefaults() {
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	if c.StateDir == "" {
		c.StateDir = defaultStateDir()
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if len(c.AdminRoleIDs) == 0 {
		c.AdminRoleIDs = []int64{DefaultAdminRoleID}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Debug {
		c.Logging.Level = "debug"
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = 10
	}
	if c.Logging.MaxBackups <= 0 {
		c.Logging.MaxBackups = 3
	}
	if c.Logging.MaxAgeDays <= 0 {
		c.Logging.MaxAgeDays = 28
	}
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".pawsitive"
	}
	return filepath.Join(home, ".pawsitive")
}
