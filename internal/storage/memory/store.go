// Package memory provides an in-process storage.Store, used as the default
// driver and by tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"lotpool/internal/event"
	"lotpool/internal/storage"
)

// Store keeps round records and event journals in maps.
type Store struct {
	mu     sync.RWMutex
	rounds map[string]storage.RoundRecord
	events map[string][]event.Event
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		rounds: make(map[string]storage.RoundRecord),
		events: make(map[string][]event.Event),
	}
}

// SaveRound implements storage.RoundStore.
func (s *Store) SaveRound(ctx context.Context, record storage.RoundRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds[record.ID] = record
	return nil
}

// GetRound implements storage.RoundStore.
func (s *Store) GetRound(ctx context.Context, id string) (storage.RoundRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.RoundRecord{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.rounds[id]
	if !ok {
		return storage.RoundRecord{}, storage.ErrNotFound
	}
	return record, nil
}

// ListRounds implements storage.RoundStore.
func (s *Store) ListRounds(ctx context.Context) ([]storage.RoundRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]storage.RoundRecord, 0, len(s.rounds))
	for _, record := range s.rounds {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

// AppendEvent implements storage.EventStore.
func (s *Store) AppendEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	evt.Seq = uint64(len(s.events[evt.RoundID])) + 1
	s.events[evt.RoundID] = append(s.events[evt.RoundID], evt)
	return evt, nil
}

// ListEvents implements storage.EventStore.
func (s *Store) ListEvents(ctx context.Context, roundID string) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	journal := s.events[roundID]
	out := make([]event.Event, len(journal))
	copy(out, journal)
	return out, nil
}

// Close implements storage.Store.
func (s *Store) Close() error { return nil }
