package event

import "time"

// RoundCreatedPayload captures the payload for round.created events.
type RoundCreatedPayload struct {
	Name           string    `json:"name"`
	Creator        string    `json:"creator"`
	EntryFee       int64     `json:"entryFee"`
	DrawTime       time.Time `json:"drawTime"`
	InitialFunding int64     `json:"initialFunding,omitempty"`
}

// EnteredPayload captures the payload for round.entered events.
type EnteredPayload struct {
	Participant string `json:"participant"`
	Payment     int64  `json:"payment"`
	PoolBalance int64  `json:"poolBalance"`
}

// WinnerDrawnPayload captures the payload for round.winner_drawn events.
type WinnerDrawnPayload struct {
	Winner           string `json:"winner"`
	ParticipantCount int    `json:"participantCount"`
	Index            int    `json:"index"`
	Caller           string `json:"caller"`
}

// PrizeClaimedPayload captures the payload for round.prize_claimed events.
type PrizeClaimedPayload struct {
	Winner string `json:"winner"`
	Amount int64  `json:"amount"`
}

// StateChangedPayload captures the payload for round.state_changed events.
type StateChangedPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// SponsorReceivedPayload captures the payload for round.sponsor_received events.
type SponsorReceivedPayload struct {
	Sponsor     string `json:"sponsor"`
	Amount      int64  `json:"amount"`
	PoolBalance int64  `json:"poolBalance"`
}

// DrawTimeChangedPayload captures the payload for round.draw_time_changed events.
type DrawTimeChangedPayload struct {
	OldTime time.Time `json:"oldTime"`
	NewTime time.Time `json:"newTime"`
}

// RoundResetPayload captures the payload for round.reset events.
type RoundResetPayload struct {
	ClearedParticipants int    `json:"clearedParticipants"`
	ClearedWinner       string `json:"clearedWinner,omitempty"`
}
