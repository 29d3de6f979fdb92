// Package config handles loading and managing TennisScore configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tennisscore/tennisscore/pkg/match"
)

// Config is the top-level configuration for TennisScore.
type Config struct {
	Match    MatchConfig    `yaml:"match"`
	Storage  StorageConfig  `yaml:"storage"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
}

// MatchConfig holds the format applied to matches created without one.
type MatchConfig struct {
	DefaultFormat match.MatchFormat `yaml:"default_format"`
}

// StorageConfig selects the archive backend for finished matches.
type StorageConfig struct {
	Backend   string `yaml:"backend"` // local, s3 or gcs
	Path      string `yaml:"path"`    // local only
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"` // S3-compatible endpoints (MinIO, R2)
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// DatabaseConfig points at the Postgres instance holding point logs.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// ServerConfig controls the daemon's HTTP surface.
type ServerConfig struct {
	Port        string   `yaml:"port"`
	APIKey      string   `yaml:"api_key"`
	CacheSize   int      `yaml:"cache_size"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Match: MatchConfig{
			DefaultFormat: match.DefaultFormat(),
		},
		Storage: StorageConfig{
			Backend: "local",
			Path:    filepath.Join(CacheDir(), "archive"),
		},
		Server: ServerConfig{
			Port:      "8080",
			CacheSize: 256,
		},
	}
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the default match format and storage settings.
func (c *Config) Validate() error {
	if err := c.Match.DefaultFormat.Validate(); err != nil {
		return fmt.Errorf("match.default_format: %w", err)
	}
	switch c.Storage.Backend {
	case "local":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the local backend")
		}
	case "s3", "gcs":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for the %s backend", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("storage.backend %q is not one of local, s3, gcs", c.Storage.Backend)
	}
	if c.Server.CacheSize < 0 {
		return fmt.Errorf("server.cache_size must not be negative")
	}
	return nil
}

// FindConfigFile looks for .tennisscore/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".tennisscore", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// CacheDir returns ~/.cache/tennisscore, the default home for local data.
func CacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to temp dir if HOME isn't available
		home = os.TempDir()
	}
	return filepath.Join(home, ".cache", "tennisscore")
}
