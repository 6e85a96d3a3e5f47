// Package event defines the append-only journal records emitted by round
// transitions, so observers can reconstruct round history without re-deriving
// it from current state.
package event

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind identifies the type of a round event.
type Kind string

const (
	// KindRoundCreated records the creation of a round by the registry.
	KindRoundCreated Kind = "round.created"
	// KindEntered records a participant entering a round.
	KindEntered Kind = "round.entered"
	// KindWinnerDrawn records the selection of a winner.
	KindWinnerDrawn Kind = "round.winner_drawn"
	// KindPrizeClaimed records the payout of the pool to the winner.
	KindPrizeClaimed Kind = "round.prize_claimed"
	// KindStateChanged records a lifecycle state edge.
	KindStateChanged Kind = "round.state_changed"
	// KindSponsorReceived records a sponsorship contribution to the pool.
	KindSponsorReceived Kind = "round.sponsor_received"
	// KindDrawTimeChanged records a deadline edit by the creator.
	KindDrawTimeChanged Kind = "round.draw_time_changed"
	// KindRoundReset records the creator clearing a closed round.
	KindRoundReset Kind = "round.reset"
)

// Event is one immutable record in a round's journal.
type Event struct {
	// RoundID is the round this event belongs to.
	RoundID string `json:"roundId"`
	// Seq is the sequence number within the round (starts at 1).
	// Assigned by storage on append.
	Seq uint64 `json:"seq"`
	// Timestamp is when the transition occurred.
	Timestamp time.Time `json:"timestamp"`
	// Kind identifies the transition.
	Kind Kind `json:"kind"`
	// PayloadJSON holds kind-specific data as JSON.
	PayloadJSON json.RawMessage `json:"payload"`
}

// New builds an unsequenced event with the payload marshaled to JSON.
func New(roundID string, ts time.Time, kind Kind, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	return Event{
		RoundID:     roundID,
		Timestamp:   ts,
		Kind:        kind,
		PayloadJSON: raw,
	}, nil
}
