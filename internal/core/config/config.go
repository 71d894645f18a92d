// Package config handles configuration loading and validation for jsob.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hay-kot/criterio"
	"gopkg.in/yaml.v3"

	"github.com/hay-kot/jsob/internal/core/alert"
	"github.com/hay-kot/jsob/internal/core/history"
	"github.com/hay-kot/jsob/internal/core/transform"
)

// Storage backends.
const (
	BackendJSONFile = "jsonfile"
	BackendSQLite   = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	History       HistoryConfig   `yaml:"history"`
	Storage       StorageConfig   `yaml:"storage"`
	Alert         AlertConfig     `yaml:"alert"`
	Obfuscate     ObfuscateConfig `yaml:"obfuscate"`
	DefaultMethod string          `yaml:"default_method"`
	DataDir       string          `yaml:"-"` // set by caller, not from config file
}

// HistoryConfig controls the bounded conversion history.
type HistoryConfig struct {
	Capacity   int                    `yaml:"capacity"`
	Overflow   history.OverflowPolicy `yaml:"overflow"`    // grow | reject
	StorageKey string                 `yaml:"storage_key"` // key the collection is saved under
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Backend        string `yaml:"backend"` // jsonfile | sqlite
	RecoverCorrupt bool   `yaml:"recover_corrupt"`
}

// AlertConfig controls the success notice.
type AlertConfig struct {
	Duration time.Duration `yaml:"duration"`
}

// ObfuscateConfig tunes the obfuscation engine.
type ObfuscateConfig struct {
	WrapIIFE bool `yaml:"wrap_iife"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		History: HistoryConfig{
			Capacity:   history.DefaultCapacity,
			Overflow:   history.OverflowGrow,
			StorageKey: history.DefaultKey,
		},
		Storage: StorageConfig{
			Backend:        BackendJSONFile,
			RecoverCorrupt: true,
		},
		Alert: AlertConfig{
			Duration: alert.DefaultDuration,
		},
		DefaultMethod: string(transform.MethodObfuscate),
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.History.Overflow == "" {
		c.History.Overflow = defaults.History.Overflow
	}
	if c.History.StorageKey == "" {
		c.History.StorageKey = defaults.History.StorageKey
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaults.Storage.Backend
	}
	if c.Alert.Duration == 0 {
		c.Alert.Duration = defaults.Alert.Duration
	}
	if c.DefaultMethod == "" {
		c.DefaultMethod = defaults.DefaultMethod
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.DataDir == "" {
		errs = errs.Append("data_dir", fmt.Errorf("data directory cannot be empty"))
	}

	if c.History.Capacity < 1 {
		errs = errs.Append("history.capacity", fmt.Errorf("must be at least 1, got %d", c.History.Capacity))
	}

	if !c.History.Overflow.Valid() {
		errs = errs.Append("history.overflow", fmt.Errorf("must be %q or %q, got %q",
			history.OverflowGrow, history.OverflowReject, c.History.Overflow))
	}

	switch c.Storage.Backend {
	case BackendJSONFile, BackendSQLite:
	default:
		errs = errs.Append("storage.backend", fmt.Errorf("must be %q or %q, got %q",
			BackendJSONFile, BackendSQLite, c.Storage.Backend))
	}

	if c.Alert.Duration < 0 {
		errs = errs.Append("alert.duration", fmt.Errorf("cannot be negative"))
	}

	if _, err := transform.ParseMethod(c.DefaultMethod); err != nil {
		errs = errs.Append("default_method", err)
	}

	return errs.ToError()
}

// Method returns the parsed default method.
func (c *Config) Method() transform.Method {
	m, err := transform.ParseMethod(c.DefaultMethod)
	if err != nil {
		return transform.MethodObfuscate
	}
	return m
}

// StoreFile returns the path to the JSON key-value file.
func (c *Config) StoreFile() string {
	return filepath.Join(c.DataDir, "store.json")
}

// DatabaseFile returns the path to the SQLite database.
func (c *Config) DatabaseFile() string {
	return filepath.Join(c.DataDir, "store.db")
}
