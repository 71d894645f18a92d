package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/jsob/internal/core/kv"
)

func setupTestDB(t *testing.T) (*DB, context.Context) {
	t.Helper()
	db, err := NewDB(Config{Path: ":memory:"})
	require.NoError(t, err, "failed to create test database")
	t.Cleanup(func() { _ = db.Close() })
	return db, context.Background()
}

func TestKVStore_GetNotFound(t *testing.T) {
	db, ctx := setupTestDB(t)
	store := NewKVStore(db)

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, kv.ErrKeyNotFound)
}

func TestKVStore_SetAndGet(t *testing.T) {
	db, ctx := setupTestDB(t)
	store := NewKVStore(db)

	require.NoError(t, store.Set(ctx, "_histories", `[{"input":"a"}]`))

	entry, err := store.Get(ctx, "_histories")
	require.NoError(t, err)
	assert.Equal(t, "_histories", entry.Key)
	assert.Equal(t, `[{"input":"a"}]`, entry.Value)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestKVStore_SetOverwrites(t *testing.T) {
	db, ctx := setupTestDB(t)
	store := NewKVStore(db)

	require.NoError(t, store.Set(ctx, "k", "one"))
	require.NoError(t, store.Set(ctx, "k", "two"))

	entry, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "two", entry.Value)

	var count int
	require.NoError(t, db.GetContext(ctx, &count, `SELECT COUNT(*) FROM kv`))
	assert.Equal(t, 1, count)
}

func TestKVStore_PersistsAcrossConnections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.db")
	ctx := context.Background()

	db, err := NewDB(Config{Path: path})
	require.NoError(t, err)
	require.NoError(t, NewKVStore(db).Set(ctx, "k", "v"))
	require.NoError(t, db.Close())

	db, err = NewDB(Config{Path: path})
	require.NoError(t, err)
	defer db.Close()

	entry, err := NewKVStore(db).Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", entry.Value)
}
