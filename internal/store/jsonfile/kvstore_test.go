package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/jsob/internal/core/kv"
)

func newTestStore(t *testing.T, recoverCorrupt bool) *KVStore {
	t.Helper()
	return NewKVStore(filepath.Join(t.TempDir(), "store.json"), Options{
		RecoverCorrupt: recoverCorrupt,
		Logger:         zerolog.Nop(),
	})
}

func TestKVStore_SetAndGet(t *testing.T) {
	store := newTestStore(t, false)
	ctx := context.Background()

	const payload = `[{"input":"var a = 1;","output":"vara=1;","method":"minify"}]`

	if err := store.Set(ctx, "_histories", payload); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	entry, err := store.Get(ctx, "_histories")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if entry.Key != "_histories" {
		t.Errorf("Key = %q, want %q", entry.Key, "_histories")
	}
	if entry.Value != payload {
		t.Errorf("Value = %q, want %q", entry.Value, payload)
	}
	if entry.CreatedAt.IsZero() || entry.UpdatedAt.IsZero() {
		t.Error("timestamps should be set")
	}
}

func TestKVStore_GetNotFound(t *testing.T) {
	store := newTestStore(t, false)

	_, err := store.Get(context.Background(), "nonexistent")
	if !errors.Is(err, kv.ErrKeyNotFound) {
		t.Errorf("Get error = %v, want ErrKeyNotFound", err)
	}
}

func TestKVStore_UpdatePreservesCreatedAt(t *testing.T) {
	store := newTestStore(t, false)
	ctx := context.Background()

	if err := store.Set(ctx, "key", "value1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	entry1, _ := store.Get(ctx, "key")
	time.Sleep(10 * time.Millisecond)

	if err := store.Set(ctx, "key", "value2"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	entry2, _ := store.Get(ctx, "key")

	if entry2.Value != "value2" {
		t.Errorf("Value = %q, want %q", entry2.Value, "value2")
	}
	if !entry2.CreatedAt.Equal(entry1.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", entry1.CreatedAt, entry2.CreatedAt)
	}
	if !entry2.UpdatedAt.After(entry1.UpdatedAt) {
		t.Errorf("UpdatedAt should be after original: %v <= %v", entry2.UpdatedAt, entry1.UpdatedAt)
	}
}

func TestKVStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	ctx := context.Background()

	if err := NewKVStore(path, Options{}).Set(ctx, "_histories", "[]"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	entry, err := NewKVStore(path, Options{}).Get(ctx, "_histories")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if entry.Value != "[]" {
		t.Errorf("Value = %q, want %q", entry.Value, "[]")
	}
}

func TestKVStore_ConcurrentAccess(t *testing.T) {
	store := newTestStore(t, false)
	ctx := context.Background()

	const goroutines = 10
	const iterations = 20

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				key := fmt.Sprintf("key-%d-%d", id, j)
				if err := store.Set(ctx, key, "value"); err != nil {
					t.Errorf("Set failed: %v", err)
					return
				}
				if _, err := store.Get(ctx, key); err != nil {
					t.Errorf("Get failed: %v", err)
					return
				}
			}
		}(i)
	}

	wg.Wait()

	file, err := store.load(false)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(file.Entries) != goroutines*iterations {
		t.Errorf("Expected %d entries, got %d", goroutines*iterations, len(file.Entries))
	}
}

// Two handles on one file stand in for two jsob processes; only the flock
// serializes them.
func TestKVStore_SharedFileAcrossHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	ctx := context.Background()

	stores := []*KVStore{NewKVStore(path, Options{}), NewKVStore(path, Options{})}

	var wg sync.WaitGroup
	for i, store := range stores {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 25 {
				if err := store.Set(ctx, fmt.Sprintf("h%d-%d", i, j), "[]"); err != nil {
					t.Errorf("Set failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	file, err := stores[0].load(false)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(file.Entries) != 50 {
		t.Errorf("Expected 50 entries, got %d", len(file.Entries))
	}
}

func TestKVStore_CorruptedFile(t *testing.T) {
	store := newTestStore(t, false)
	ctx := context.Background()

	if err := os.WriteFile(store.Path(), []byte("{invalid json"), 0o644); err != nil {
		t.Fatalf("Failed to write corrupted file: %v", err)
	}

	_, err := store.Get(ctx, "any")
	if !errors.Is(err, ErrCorrupted) {
		t.Errorf("Get error = %v, want ErrCorrupted", err)
	}

	err = store.Set(ctx, "key", "value")
	if !errors.Is(err, ErrCorrupted) {
		t.Errorf("Set error = %v, want ErrCorrupted", err)
	}
}

func TestKVStore_RecoverCorrupted(t *testing.T) {
	store := newTestStore(t, true)
	ctx := context.Background()

	if err := os.WriteFile(store.Path(), []byte("{invalid json"), 0o644); err != nil {
		t.Fatalf("Failed to write corrupted file: %v", err)
	}

	if err := store.Set(ctx, "key", "value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	entry, err := store.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if entry.Value != "value" {
		t.Errorf("Value = %q, want %q", entry.Value, "value")
	}

	backup, err := os.ReadFile(store.Path() + ".corrupt")
	if err != nil {
		t.Fatalf("corrupt backup missing: %v", err)
	}
	if string(backup) != "{invalid json" {
		t.Errorf("backup = %q, want original bytes", backup)
	}
}

func TestKVStore_SaveIsPrivateAndClean(t *testing.T) {
	store := newTestStore(t, false)

	if err := store.Set(context.Background(), "_histories", "[]"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("store file mode = %v, want 0600", perm)
	}

	if _, err := os.Stat(store.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}
}
