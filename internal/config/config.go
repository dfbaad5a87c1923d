// Package config loads and validates symidx configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete symidx configuration
type Config struct {
	Version  int    `json:"version" mapstructure:"version"`
	RepoRoot string `json:"repoRoot" mapstructure:"repoRoot"`

	Indexer IndexerConfig `json:"indexer" mapstructure:"indexer"`
	Watcher WatcherConfig `json:"watcher" mapstructure:"watcher"`
	Cache   CacheConfig   `json:"cache" mapstructure:"cache"`
	Server  ServerConfig  `json:"server" mapstructure:"server"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// IndexerConfig contains scan and extraction settings
type IndexerConfig struct {
	Excludes         []string `json:"excludes" mapstructure:"excludes"`
	MaxFileSizeBytes int      `json:"maxFileSizeBytes" mapstructure:"maxFileSizeBytes"`
	Workers          int      `json:"workers" mapstructure:"workers"`
}

// WatcherConfig contains file watcher settings
type WatcherConfig struct {
	Enabled        bool     `json:"enabled" mapstructure:"enabled"`
	DebounceMs     int      `json:"debounceMs" mapstructure:"debounceMs"`
	IgnorePatterns []string `json:"ignorePatterns" mapstructure:"ignorePatterns"`
}

// CacheConfig contains the external index store settings
type CacheConfig struct {
	Enabled    bool   `json:"enabled" mapstructure:"enabled"`
	Addr       string `json:"addr" mapstructure:"addr"`
	Password   string `json:"password" mapstructure:"password"`
	DB         int    `json:"db" mapstructure:"db"`
	KeyPrefix  string `json:"keyPrefix" mapstructure:"keyPrefix"`
	TTLSeconds int    `json:"ttlSeconds" mapstructure:"ttlSeconds"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Bind string `json:"bind" mapstructure:"bind"`
	Port int    `json:"port" mapstructure:"port"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		RepoRoot: ".",
		Indexer: IndexerConfig{
			Excludes: []string{
				"node_modules",
				"vendor",
				"__pycache__",
				".git",
				".symidx",
				"dist",
				"build",
			},
			MaxFileSizeBytes: 1000000,
			Workers:          4,
		},
		Watcher: WatcherConfig{
			Enabled:    true,
			DebounceMs: 2000,
			IgnorePatterns: []string{
				"*.log",
				"*.tmp",
				"*.swp",
			},
		},
		Cache: CacheConfig{
			Enabled:    true,
			Addr:       "localhost:6379",
			DB:         0,
			KeyPrefix:  "symidx",
			TTLSeconds: 3600,
		},
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 7420,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .symidx/config.json under repoRoot.
// A missing config file yields the defaults, not an error.
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("version", defaults.Version)
	v.SetDefault("repoRoot", repoRoot)
	v.SetDefault("indexer", defaults.Indexer)
	v.SetDefault("watcher", defaults.Watcher)
	v.SetDefault("cache", defaults.Cache)
	v.SetDefault("server", defaults.Server)
	v.SetDefault("logging", defaults.Logging)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(repoRoot, ".symidx"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			cfg := DefaultConfig()
			cfg.RepoRoot = repoRoot
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Save writes the configuration to .symidx/config.json
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, ".symidx")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0o644)
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Watcher.DebounceMs <= 0 {
		return &ConfigError{Field: "watcher.debounceMs", Message: "must be positive"}
	}
	if c.Indexer.Workers <= 0 {
		return &ConfigError{Field: "indexer.workers", Message: "must be positive"}
	}
	if c.Cache.Enabled && c.Cache.TTLSeconds <= 0 {
		return &ConfigError{Field: "cache.ttlSeconds", Message: "must be positive when cache is enabled"}
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return &ConfigError{Field: "server.port", Message: "out of range"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
