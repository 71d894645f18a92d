package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hay-kot/jsob/internal/core/kv"
)

// KVStore implements kv.Store on top of the kv table.
type KVStore struct {
	db *DB
}

func NewKVStore(db *DB) *KVStore {
	return &KVStore{db: db}
}

func (s *KVStore) Get(ctx context.Context, key string) (kv.Entry, error) {
	query := `
		SELECT key, value, created_at, updated_at
		FROM kv
		WHERE key = ?
	`

	var entry kv.Entry
	err := s.db.GetContext(ctx, &entry, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return kv.Entry{}, kv.ErrKeyNotFound
	}
	if err != nil {
		return kv.Entry{}, fmt.Errorf("failed to query key %q: %w", key, err)
	}

	return entry, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO kv (key, value, created_at, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`

	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to store key %q: %w", key, err)
	}

	return nil
}
