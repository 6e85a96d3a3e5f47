package models

import "time"

// Principal is an opaque caller identity supplied by the transport layer.
// The engine never authenticates principals, it only compares them.
type Principal string

// None is the zero principal, used where no winner has been chosen yet.
const None Principal = ""

func (p Principal) String() string { return string(p) }

// RoundState is the lifecycle state of a lottery round.
type RoundState string

const (
	// StateOpen accepts entries, sponsorships and deadline edits.
	StateOpen RoundState = "OPEN"
	// StateDrawing is the transient state while a winner is being selected.
	StateDrawing RoundState = "DRAWING"
	// StateClaimable means a winner has been chosen and the payout is pending.
	StateClaimable RoundState = "CLAIMABLE"
	// StateClosed means the payout has completed. Terminal for funds.
	StateClosed RoundState = "CLOSED"
)

// RoundDetails is a point-in-time snapshot of a round, for display.
type RoundDetails struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Creator          Principal  `json:"creator"`
	EntryFee         int64      `json:"entryFee"`
	DrawTime         time.Time  `json:"drawTime"`
	PoolBalance      int64      `json:"poolBalance"`
	State            RoundState `json:"state"`
	Winner           Principal  `json:"winner,omitempty"`
	ParticipantCount int        `json:"participantCount"`
}
