package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/hay-kot/jsob/internal/core/alert"
	"github.com/hay-kot/jsob/internal/core/config"
	"github.com/hay-kot/jsob/internal/core/history"
	"github.com/hay-kot/jsob/internal/core/kv"
	"github.com/hay-kot/jsob/internal/core/transform"
	"github.com/hay-kot/jsob/internal/jsob"
	"github.com/hay-kot/jsob/internal/store/jsonfile"
	"github.com/hay-kot/jsob/internal/store/sqlite"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	LogFormat  string
	ConfigPath string
	DataDir    string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// KV is the durable store selected by storage.backend
	KV kv.Store

	// Transformer runs minify and obfuscate
	Transformer *transform.Service

	// Alerts drives the success notice
	Alerts *alert.Scheduler

	// Controller orchestrates conversions and history
	Controller *jsob.Controller

	closers []func() error
}

// Open builds the runtime from the loaded Config: the storage backend, the
// history store restored from it, the alert scheduler and the controller.
func (f *Flags) Open(ctx context.Context, log zerolog.Logger) error {
	cfg := f.Config
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}

	store, err := f.openKV(cfg, log)
	if err != nil {
		return err
	}
	f.KV = store

	var (
		persister = history.NewKVPersister(store, cfg.History.StorageKey, log.With().Str("component", "persist").Logger())
		hist      = history.NewStore(persister, history.Options{
			Capacity: cfg.History.Capacity,
			Overflow: cfg.History.Overflow,
		}, log.With().Str("component", "history").Logger())
	)

	if err := hist.Load(ctx); err != nil {
		return err
	}

	f.Alerts = alert.New(cfg.Alert.Duration)
	f.closers = append(f.closers, func() error {
		f.Alerts.Stop()
		return nil
	})

	f.Transformer = transform.New(transform.NewESBuild(transform.ESBuildOptions{
		WrapIIFE: cfg.Obfuscate.WrapIIFE,
	}))

	f.Controller = jsob.New(f.Transformer, hist, f.Alerts, cfg.Method(), log.With().Str("component", "jsob").Logger())
	return nil
}

func (f *Flags) openKV(cfg *config.Config, log zerolog.Logger) (kv.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		db, err := sqlite.NewDB(sqlite.Config{Path: cfg.DatabaseFile()})
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		f.closers = append(f.closers, db.Close)
		return sqlite.NewKVStore(db), nil
	default:
		return jsonfile.NewKVStore(cfg.StoreFile(), jsonfile.Options{
			RecoverCorrupt: cfg.Storage.RecoverCorrupt,
			Logger:         log.With().Str("component", "kvstore").Logger(),
		}), nil
	}
}

// Close releases everything Open acquired, in reverse order.
func (f *Flags) Close() error {
	var firstErr error
	for i := len(f.closers) - 1; i >= 0; i-- {
		if err := f.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.closers = nil
	return firstErr
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "jsob", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "jsob")
}
