// Package storage defines the persistence interfaces for round snapshots and
// the per-round event journal.
package storage

import (
	"context"
	"errors"
	"time"

	"lotpool/internal/event"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// RoundRecord is the persisted shape of a round.
type RoundRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	EntryFee     int64     `json:"entryFee"`
	DrawTime     time.Time `json:"drawTime"`
	Creator      string    `json:"creator"`
	Participants []string  `json:"participants"`
	PrizePool    int64     `json:"prizePool"`
	Winner       string    `json:"winner,omitempty"`
	IsDrawn      bool      `json:"isDrawn"`
	State        string    `json:"state"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RoundStore persists round snapshots.
type RoundStore interface {
	SaveRound(ctx context.Context, record RoundRecord) error
	GetRound(ctx context.Context, id string) (RoundRecord, error)
	ListRounds(ctx context.Context) ([]RoundRecord, error)
}

// EventStore persists the ordered event journal per round.
type EventStore interface {
	// AppendEvent assigns the next sequence number within the round and
	// persists the event, returning the sequenced copy.
	AppendEvent(ctx context.Context, evt event.Event) (event.Event, error)
	// ListEvents returns a round's events in sequence order.
	ListEvents(ctx context.Context, roundID string) ([]event.Event, error)
}

// Store combines round and event persistence behind one handle.
type Store interface {
	RoundStore
	EventStore
	Close() error
}
