// Package kv defines the durable key-value storage used to persist jsob state.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned when a key does not exist.
var ErrKeyNotFound = errors.New("key not found")

// ErrCorrupted is returned when stored data exists but cannot be parsed.
var ErrCorrupted = errors.New("store corrupted")

// Entry represents a KV store entry with metadata.
type Entry struct {
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Store defines persistence operations for KV data.
type Store interface {
	// Get returns the entry stored under key. Returns ErrKeyNotFound if absent.
	Get(ctx context.Context, key string) (Entry, error)
	// Set creates or replaces the value stored under key.
	Set(ctx context.Context, key, value string) error
}
