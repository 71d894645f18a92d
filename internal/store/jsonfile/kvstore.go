// Package jsonfile provides a JSON file-based key-value store.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/jsob/internal/core/kv"
)

// ErrCorrupted is returned when the store file exists but cannot be parsed.
var ErrCorrupted = kv.ErrCorrupted

// KVFile is the root JSON structure stored on disk for KV data.
type KVFile struct {
	Entries map[string]kv.Entry `json:"entries"`
}

// Options configures a KVStore.
type Options struct {
	// RecoverCorrupt moves an unparseable store file aside to <path>.corrupt
	// and continues with an empty store instead of failing.
	RecoverCorrupt bool
	Logger         zerolog.Logger
}

// KVStore implements kv.Store using a JSON file for persistence.
type KVStore struct {
	path string
	opts Options
	mu   sync.RWMutex
}

// NewKVStore creates a new JSON file KV store at the given path.
func NewKVStore(path string, opts Options) *KVStore {
	return &KVStore{path: path, opts: opts}
}

// Path returns the backing file path.
func (s *KVStore) Path() string {
	return s.path
}

// lock takes a flock on <path>.lock. LOCK_SH admits concurrent readers in
// other processes, LOCK_EX admits a single writer.
func (s *KVStore) lock(how int) (unlock func(), err error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(s.path+".lock", os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), how); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("acquire file lock: %w", err)
	}

	return func() {
		_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
		_ = f.Close()
	}, nil
}

// Get returns an entry by key. Returns kv.ErrKeyNotFound if not found.
func (s *KVStore) Get(_ context.Context, key string) (kv.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	unlock, err := s.lock(syscall.LOCK_SH)
	if err != nil {
		return kv.Entry{}, err
	}
	defer unlock()

	file, err := s.load(false)
	if err != nil {
		return kv.Entry{}, err
	}

	entry, ok := file.Entries[key]
	if !ok {
		return kv.Entry{}, kv.ErrKeyNotFound
	}
	return entry, nil
}

// Set creates or updates an entry, keeping its original creation time.
func (s *KVStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lock(syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer unlock()

	file, err := s.load(s.opts.RecoverCorrupt)
	if err != nil {
		return err
	}

	now := time.Now()
	entry, ok := file.Entries[key]
	if !ok {
		entry = kv.Entry{Key: key, CreatedAt: now}
	}
	entry.Value = value
	entry.UpdatedAt = now
	file.Entries[key] = entry

	return s.save(file)
}

// load reads the KV file from disk.
// Returns empty KVFile if file doesn't exist. When recoverCorrupt is set a corrupted
// file is moved aside and an empty KVFile is returned.
func (s *KVStore) load(recoverCorrupt bool) (KVFile, error) {
	empty := KVFile{Entries: make(map[string]kv.Entry)}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return empty, nil
		}
		return KVFile{}, fmt.Errorf("read %s: %w", s.path, err)
	}

	if len(data) == 0 {
		return empty, nil
	}

	var file KVFile
	if err := json.Unmarshal(data, &file); err != nil {
		if !recoverCorrupt {
			return KVFile{}, fmt.Errorf("%w: parse %s: %v", ErrCorrupted, s.path, err)
		}

		backup := s.path + ".corrupt"
		if rerr := os.Rename(s.path, backup); rerr != nil {
			return KVFile{}, fmt.Errorf("move corrupted store aside: %w", rerr)
		}
		s.opts.Logger.Warn().Err(err).Str("backup", backup).Msg("store file corrupted, starting empty")
		return empty, nil
	}

	if file.Entries == nil {
		file.Entries = make(map[string]kv.Entry)
	}

	return file, nil
}

// save replaces the store file through a synced temp file and a rename, so a
// crash leaves either the old or the new contents.
func (s *KVStore) save(file KVFile) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	_, err = f.Write(data)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
