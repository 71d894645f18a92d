package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/jsob/internal/core/history"
	"github.com/hay-kot/jsob/internal/core/transform"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	return &cfg
}

func hasField(errs criterio.FieldErrors, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

func TestValidateDeep_ValidConfig(t *testing.T) {
	cfg := validConfig(t)
	cfg.Storage.Backend = BackendSQLite
	cfg.History.Overflow = history.OverflowReject

	err := cfg.ValidateDeep("")
	assert.NoError(t, err, "expected valid config")
}

func TestValidateDeep_InvalidFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"zero capacity", func(c *Config) { c.History.Capacity = 0 }, "history.capacity"},
		{"negative capacity", func(c *Config) { c.History.Capacity = -3 }, "history.capacity"},
		{"unknown overflow", func(c *Config) { c.History.Overflow = "drop" }, "history.overflow"},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "redis" }, "storage.backend"},
		{"negative duration", func(c *Config) { c.Alert.Duration = -time.Second }, "alert.duration"},
		{"unknown method", func(c *Config) { c.DefaultMethod = "uglify" }, "default_method"},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, "data_dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.ValidateDeep("")

			var fieldErrs criterio.FieldErrors
			require.ErrorAs(t, err, &fieldErrs)
			assert.Len(t, fieldErrs, 1)
			assert.Equal(t, tt.field, fieldErrs[0].Field)
		})
	}
}

func TestValidateDeep_CollectsAllErrors(t *testing.T) {
	cfg := validConfig(t)
	cfg.History.Capacity = 0
	cfg.Storage.Backend = "redis"

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 2)
}

func TestValidateDeep_DataDirIsFile(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "notadir")
	require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0o644))

	cfg := validConfig(t)
	cfg.DataDir = tmpFile

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.True(t, hasField(fieldErrs, "data_dir"), "expected error about data dir")
}

func TestValidateDeep_ConfigFileIsDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := validConfig(t)

	err := cfg.ValidateDeep(tmpDir)

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.True(t, hasField(fieldErrs, "config_file"), "expected error about config file being a directory")
}

func TestValidateDeep_MissingConfigFileIsFine(t *testing.T) {
	cfg := validConfig(t)

	err := cfg.ValidateDeep(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.NoError(t, err)
}

func TestWarnings(t *testing.T) {
	cfg := validConfig(t)
	assert.Empty(t, cfg.Warnings(), "defaults produce no warnings")

	cfg.History.Capacity = 1000
	cfg.Obfuscate.WrapIIFE = true
	cfg.Storage.RecoverCorrupt = false

	var items []string
	for _, w := range cfg.Warnings() {
		items = append(items, w.Item)
	}
	assert.ElementsMatch(t, []string{"history.capacity", "obfuscate.wrap_iife", "storage.recover_corrupt"}, items)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load(filepath.Join(dataDir, "nope.yaml"), dataDir)
	require.NoError(t, err)

	assert.Equal(t, history.DefaultCapacity, cfg.History.Capacity)
	assert.Equal(t, history.OverflowGrow, cfg.History.Overflow)
	assert.Equal(t, history.DefaultKey, cfg.History.StorageKey)
	assert.Equal(t, BackendJSONFile, cfg.Storage.Backend)
	assert.True(t, cfg.Storage.RecoverCorrupt)
	assert.Equal(t, 3*time.Second, cfg.Alert.Duration)
	assert.Equal(t, transform.MethodObfuscate, cfg.Method())
	assert.Equal(t, dataDir, cfg.DataDir)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
history:
  capacity: 25
  overflow: reject
storage:
  backend: sqlite
alert:
  duration: 1500ms
default_method: minify
obfuscate:
  wrap_iife: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, dir)
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.History.Capacity)
	assert.Equal(t, history.OverflowReject, cfg.History.Overflow)
	assert.Equal(t, history.DefaultKey, cfg.History.StorageKey, "unset key falls back to default")
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, 1500*time.Millisecond, cfg.Alert.Duration)
	assert.Equal(t, transform.MethodMinify, cfg.Method())
	assert.True(t, cfg.Obfuscate.WrapIIFE)
	assert.Equal(t, filepath.Join(dir, "store.db"), cfg.DatabaseFile())
	assert.Equal(t, filepath.Join(dir, "store.json"), cfg.StoreFile())
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history:\n  capacity: 0\n"), 0o644))

	_, err := Load(path, dir)

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.True(t, hasField(fieldErrs, "history.capacity"))
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history: [unterminated"), 0o644))

	_, err := Load(path, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}
