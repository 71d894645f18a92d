package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/jsob/internal/core/kv"
	"github.com/hay-kot/jsob/internal/core/transform"
)

// DefaultKey is the storage key history is persisted under.
const DefaultKey = "_histories"

// Persister loads and saves the full history collection.
type Persister interface {
	// Load returns the stored collection. Absent or corrupted data yields
	// an empty collection and no error; any other read failure is returned.
	Load(ctx context.Context) ([]Entry, error)
	// Save replaces the stored collection.
	Save(ctx context.Context, entries []Entry) error
}

// KVPersister stores the collection as a JSON array under a single key.
type KVPersister struct {
	store kv.Store
	key   string
	log   zerolog.Logger
}

// NewKVPersister creates a persister for key. An empty key uses DefaultKey.
func NewKVPersister(store kv.Store, key string, log zerolog.Logger) *KVPersister {
	if key == "" {
		key = DefaultKey
	}
	return &KVPersister{store: store, key: key, log: log}
}

// Load implements Persister.
func (p *KVPersister) Load(ctx context.Context) ([]Entry, error) {
	entry, err := p.store.Get(ctx, p.key)
	if err != nil {
		switch {
		case errors.Is(err, kv.ErrKeyNotFound):
			return nil, nil
		case errors.Is(err, kv.ErrCorrupted):
			p.log.Warn().Err(err).Str("key", p.key).Msg("history store corrupted, starting empty")
			return nil, nil
		default:
			return nil, fmt.Errorf("read history: %w", err)
		}
	}

	entries, err := Decode([]byte(entry.Value), p.log)
	if err != nil {
		p.log.Warn().Err(err).Str("key", p.key).Msg("history corrupted, starting empty")
		return nil, nil
	}

	return entries, nil
}

// Save implements Persister.
func (p *KVPersister) Save(ctx context.Context, entries []Entry) error {
	data, err := Encode(entries)
	if err != nil {
		return err
	}

	if err := p.store.Set(ctx, p.key, string(data)); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// Encode serializes entries as a JSON array.
func Encode(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("marshal history: %w", err)
	}
	return data, nil
}

// record is the on-disk shape. It also accepts the isProtected field written
// by earlier versions.
type record struct {
	Input       string    `json:"input"`
	Output      string    `json:"output"`
	Method      string    `json:"method"`
	Protected   *bool     `json:"protected"`
	IsProtected *bool     `json:"isProtected"`
	CreatedAt   time.Time `json:"created_at"`
}

// Decode parses a serialized collection. Records with an unknown method or an
// empty input are dropped and logged; a malformed document is an error.
func Decode(data []byte, log zerolog.Logger) ([]Entry, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse history: %w", err)
	}

	entries := make([]Entry, 0, len(records))
	for i, r := range records {
		method, err := transform.ParseMethod(r.Method)
		if err != nil {
			log.Warn().Err(err).Int("index", i).Msg("dropping history record")
			continue
		}
		if r.Input == "" {
			log.Warn().Int("index", i).Msg("dropping history record with empty input")
			continue
		}

		protected := false
		switch {
		case r.Protected != nil:
			protected = *r.Protected
		case r.IsProtected != nil:
			protected = *r.IsProtected
		}

		entries = append(entries, Entry{
			Input:     r.Input,
			Output:    r.Output,
			Method:    method,
			Protected: protected,
			CreatedAt: r.CreatedAt,
		})
	}

	return entries, nil
}
