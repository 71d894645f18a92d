package history

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
)

// DefaultCapacity is the number of entries kept when none is configured.
const DefaultCapacity = 10

// Options configures a Store.
type Options struct {
	Capacity int
	Overflow OverflowPolicy
}

// Store owns the bounded, newest-first collection of conversions. Every
// mutation is saved through the Persister before it becomes visible in
// memory, so a failed save leaves the store unchanged.
type Store struct {
	mu        sync.RWMutex
	entries   []Entry
	capacity  int
	overflow  OverflowPolicy
	persister Persister
	log       zerolog.Logger
}

// NewStore creates an empty Store. Call Load to restore persisted entries.
func NewStore(p Persister, opts Options, log zerolog.Logger) *Store {
	if opts.Capacity < 1 {
		opts.Capacity = DefaultCapacity
	}
	if !opts.Overflow.Valid() {
		opts.Overflow = OverflowGrow
	}

	return &Store{
		capacity:  opts.Capacity,
		overflow:  opts.Overflow,
		persister: p,
		log:       log,
	}
}

// Capacity returns the configured maximum size.
func (s *Store) Capacity() int {
	return s.capacity
}

// Load replaces the in-memory collection with the persisted one.
func (s *Store) Load(ctx context.Context) error {
	entries, err := s.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()

	s.log.Debug().Int("entries", len(entries)).Msg("history loaded")
	return nil
}

// Entries returns a copy of the collection, newest first.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries)
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Entry returns the entry at index i.
func (s *Store) Entry(i int) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkIndex(i); err != nil {
		return Entry{}, err
	}
	return s.entries[i], nil
}

// Append inserts e as the newest entry and evicts the oldest unprotected
// entries until the collection fits its capacity. The new entry is never
// evicted by its own insertion.
func (s *Store) Append(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Entry, 0, len(s.entries)+1)
	next = append(next, e)
	next = append(next, s.entries...)

	evicted := 0
	for len(next) > s.capacity {
		victim := oldestUnprotected(next)
		if victim < 0 {
			break
		}
		next = slices.Delete(next, victim, victim+1)
		evicted++
	}

	if len(next) > s.capacity {
		if s.overflow == OverflowReject {
			return ErrHistoryFull
		}
		s.log.Info().
			Int("len", len(next)).
			Int("capacity", s.capacity).
			Msg("history over capacity, all older entries protected")
	}

	if err := s.commit(ctx, next); err != nil {
		return err
	}

	s.log.Debug().Str("method", e.Method.String()).Int("evicted", evicted).Msg("history entry appended")
	return nil
}

// RemoveAt deletes the entry at index i unless it is protected.
func (s *Store) RemoveAt(ctx context.Context, i int) (RemoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(i); err != nil {
		return Rejected, err
	}

	if s.entries[i].Protected {
		s.log.Debug().Int("index", i).Msg("refusing to remove protected entry")
		return Rejected, nil
	}

	next := slices.Delete(slices.Clone(s.entries), i, i+1)
	if err := s.commit(ctx, next); err != nil {
		return Rejected, err
	}

	return Removed, nil
}

// ToggleProtect flips the protection flag of the entry at index i and
// returns the new value.
func (s *Store) ToggleProtect(ctx context.Context, i int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndex(i); err != nil {
		return false, err
	}

	next := slices.Clone(s.entries)
	next[i].Protected = !next[i].Protected

	if err := s.commit(ctx, next); err != nil {
		return s.entries[i].Protected, err
	}

	return next[i].Protected, nil
}

// ClearAll removes every unprotected entry and returns how many were removed.
// Protected entries keep their relative order.
func (s *Store) ClearAll(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Protected {
			next = append(next, e)
		}
	}

	removed := len(s.entries) - len(next)
	if err := s.commit(ctx, next); err != nil {
		return 0, err
	}

	return removed, nil
}

// commit saves next and then installs it. Callers must hold s.mu.
func (s *Store) commit(ctx context.Context, next []Entry) error {
	if err := s.persister.Save(ctx, next); err != nil {
		s.log.Error().Err(err).Msg("history save failed")
		return err
	}
	s.entries = next
	return nil
}

// checkIndex callers must hold s.mu.
func (s *Store) checkIndex(i int) error {
	if i < 0 || i >= len(s.entries) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, len(s.entries))
	}
	return nil
}

// oldestUnprotected returns the index of the last unprotected entry, skipping
// the newest entry at index 0, or -1 if there is none.
func oldestUnprotected(entries []Entry) int {
	for i := len(entries) - 1; i > 0; i-- {
		if !entries[i].Protected {
			return i
		}
	}
	return -1
}
