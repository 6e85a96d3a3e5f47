// Package bolt provides a BoltDB-backed storage.Store.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"lotpool/internal/event"
	"lotpool/internal/storage"
)

const (
	roundBucket = "rounds"
	eventBucket = "events"
)

// Store persists rounds and event journals in a single BoltDB file. Round
// records are JSON values keyed by id; each round's journal is a nested
// bucket with big-endian sequence keys.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(roundBucket)); err != nil {
			return fmt.Errorf("create round bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(eventBucket)); err != nil {
			return fmt.Errorf("create event bucket: %w", err)
		}
		return nil
	})
}

// SaveRound implements storage.RoundStore.
func (s *Store) SaveRound(ctx context.Context, record storage.RoundRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("round id is required")
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal round: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(roundBucket)).Put([]byte(record.ID), raw)
	})
}

// GetRound implements storage.RoundStore.
func (s *Store) GetRound(ctx context.Context, id string) (storage.RoundRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.RoundRecord{}, err
	}
	var record storage.RoundRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket([]byte(roundBucket)).Get([]byte(id))
		if raw == nil {
			return storage.ErrNotFound
		}
		return json.Unmarshal(raw, &record)
	})
	if err != nil {
		return storage.RoundRecord{}, err
	}
	return record, nil
}

// ListRounds implements storage.RoundStore.
func (s *Store) ListRounds(ctx context.Context) ([]storage.RoundRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var records []storage.RoundRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(roundBucket)).ForEach(func(_, raw []byte) error {
			var record storage.RoundRecord
			if err := json.Unmarshal(raw, &record); err != nil {
				return fmt.Errorf("unmarshal round: %w", err)
			}
			records = append(records, record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// AppendEvent implements storage.EventStore.
func (s *Store) AppendEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		journal, err := tx.Bucket([]byte(eventBucket)).CreateBucketIfNotExists([]byte(evt.RoundID))
		if err != nil {
			return fmt.Errorf("create journal bucket: %w", err)
		}
		seq, err := journal.NextSequence()
		if err != nil {
			return fmt.Errorf("next seq: %w", err)
		}
		evt.Seq = seq
		raw, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		var key [8]byte
		binary.BigEndian.PutUint64(key[:], seq)
		return journal.Put(key[:], raw)
	})
	if err != nil {
		return event.Event{}, err
	}
	return evt, nil
}

// ListEvents implements storage.EventStore.
func (s *Store) ListEvents(ctx context.Context, roundID string) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var events []event.Event
	err := s.db.View(func(tx *bbolt.Tx) error {
		journal := tx.Bucket([]byte(eventBucket)).Bucket([]byte(roundID))
		if journal == nil {
			return nil
		}
		return journal.ForEach(func(_, raw []byte) error {
			var evt event.Event
			if err := json.Unmarshal(raw, &evt); err != nil {
				return fmt.Errorf("unmarshal event: %w", err)
			}
			events = append(events, evt)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}
