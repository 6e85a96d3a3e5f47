package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/logger"

	"lotpool/internal/custody"
	"lotpool/internal/errcode"
	"lotpool/internal/event"
	"lotpool/internal/models"
	"lotpool/internal/random"
	"lotpool/internal/storage"
)

// Round is one time-boxed lottery: participants pay the fixed entry fee into
// the pool, a winner is selected once the deadline passes, and only that
// winner may withdraw the pool.
//
// Every mutating operation runs inside the round's exclusive critical
// section and either completes with its full effect or fails with none.
type Round struct {
	mu sync.Mutex

	id       string
	name     string
	entryFee int64
	drawTime time.Time
	creator  models.Principal

	participants []models.Principal
	entered      map[models.Principal]struct{}
	prizePool    int64
	winner       models.Principal
	isDrawn      bool
	state        models.RoundState

	src    random.Source
	ledger custody.Ledger
	store  storage.Store
	now    func() time.Time
}

// Enter adds the caller as a participant. The payment must equal the entry
// fee exactly; a zero-fee round requires (and only accepts) a zero payment.
// If the deadline has already passed when the entry lands, the entry is
// accepted and immediately cascades into the draw, with the entrant as the
// entropy-influencing caller.
func (r *Round) Enter(ctx context.Context, caller models.Principal, payment int64) (models.RoundDetails, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller == models.None {
		return models.RoundDetails{}, errcode.New(errcode.CodeEmptyPrincipal, "caller is required")
	}
	if r.state != models.StateOpen {
		return models.RoundDetails{}, errcode.New(errcode.CodeNotOpen,
			"round %s is %s, not accepting entries", r.id, r.state)
	}
	if _, ok := r.entered[caller]; ok {
		return models.RoundDetails{}, errcode.New(errcode.CodeAlreadyEntered,
			"%s already entered round %s", caller, r.id)
	}
	if payment != r.entryFee {
		return models.RoundDetails{}, errcode.New(errcode.CodeWrongPayment,
			"round %s requires exactly %d, got %d", r.id, r.entryFee, payment)
	}
	if err := r.ledger.Deposit(r.id, payment); err != nil {
		return models.RoundDetails{}, err
	}

	r.participants = append(r.participants, caller)
	r.entered[caller] = struct{}{}
	r.prizePool += payment

	r.emit(ctx, event.KindEntered, event.EnteredPayload{
		Participant: caller.String(),
		Payment:     payment,
		PoolBalance: r.prizePool,
	})

	// A late entry triggers the draw itself; the entrant becomes the caller
	// in the entropy formula, which is part of the preserved bias profile.
	if !r.now().Before(r.drawTime) {
		if err := r.drawLocked(ctx, caller); err != nil {
			r.persist(ctx)
			return r.detailsLocked(), err
		}
	}

	r.persist(ctx)
	return r.detailsLocked(), nil
}

// Sponsor adds funds to the pool without adding the caller as a participant.
func (r *Round) Sponsor(ctx context.Context, caller models.Principal, amount int64) (models.RoundDetails, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller == models.None {
		return models.RoundDetails{}, errcode.New(errcode.CodeEmptyPrincipal, "caller is required")
	}
	if r.state != models.StateOpen {
		return models.RoundDetails{}, errcode.New(errcode.CodeNotOpen,
			"round %s is %s, not accepting sponsorships", r.id, r.state)
	}
	if amount <= 0 {
		return models.RoundDetails{}, errcode.New(errcode.CodeZeroSponsorship,
			"sponsorship must be positive, got %d", amount)
	}
	if err := r.ledger.Deposit(r.id, amount); err != nil {
		return models.RoundDetails{}, err
	}

	r.prizePool += amount
	r.emit(ctx, event.KindSponsorReceived, event.SponsorReceivedPayload{
		Sponsor:     caller.String(),
		Amount:      amount,
		PoolBalance: r.prizePool,
	})
	r.persist(ctx)
	return r.detailsLocked(), nil
}

// Draw selects the winner once the deadline has passed. Any caller may
// trigger it; the caller feeds into the entropy formula.
func (r *Round) Draw(ctx context.Context, caller models.Principal) (models.RoundDetails, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != models.StateOpen {
		return models.RoundDetails{}, errcode.New(errcode.CodeNotOpen,
			"round %s is %s, nothing to draw", r.id, r.state)
	}
	if r.now().Before(r.drawTime) {
		return models.RoundDetails{}, errcode.New(errcode.CodeDrawTooEarly,
			"round %s draws at %s", r.id, r.drawTime.Format(time.RFC3339))
	}
	if err := r.drawLocked(ctx, caller); err != nil {
		return models.RoundDetails{}, err
	}
	r.persist(ctx)
	return r.detailsLocked(), nil
}

// drawLocked performs the selection. Callers must hold r.mu and have
// verified the deadline.
func (r *Round) drawLocked(ctx context.Context, caller models.Principal) error {
	if r.isDrawn {
		return errcode.New(errcode.CodeAlreadyDrawn, "round %s already has a winner", r.id)
	}
	n := len(r.participants)
	if n == 0 {
		return errcode.New(errcode.CodeNoParticipants, "round %s has no participants", r.id)
	}

	r.setStateLocked(ctx, models.StateDrawing)

	index := r.src.Index(r.now(), r.id, n, caller) % n
	r.winner = r.participants[index]
	r.isDrawn = true

	r.emit(ctx, event.KindWinnerDrawn, event.WinnerDrawnPayload{
		Winner:           r.winner.String(),
		ParticipantCount: n,
		Index:            index,
		Caller:           caller.String(),
	})
	r.setStateLocked(ctx, models.StateClaimable)
	logger.Infof("round %s drew winner %s from %d participants", r.id, r.winner, n)
	return nil
}

// Claim pays the full custodied balance to the winner and closes the round.
// The payout and the state change are atomic: if the transfer fails, the
// round stays Claimable and the pool is untouched.
func (r *Round) Claim(ctx context.Context, caller models.Principal) (int64, models.RoundDetails, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != models.StateClaimable {
		return 0, models.RoundDetails{}, errcode.New(errcode.CodeNotClaimable,
			"round %s is %s, nothing to claim", r.id, r.state)
	}
	if caller != r.winner {
		return 0, models.RoundDetails{}, errcode.New(errcode.CodeNotWinner,
			"%s is not the winner of round %s", caller, r.id)
	}

	amount := r.prizePool
	if err := r.ledger.Payout(r.id, caller, amount); err != nil {
		if errcode.CodeOf(err) == errcode.CodeUnknown {
			err = errcode.New(errcode.CodePayoutFailed,
				"payout of %d for round %s failed: %v", amount, r.id, err)
		}
		return 0, models.RoundDetails{}, err
	}

	r.prizePool = 0
	r.emit(ctx, event.KindPrizeClaimed, event.PrizeClaimedPayload{
		Winner: caller.String(),
		Amount: amount,
	})
	r.setStateLocked(ctx, models.StateClosed)
	r.persist(ctx)
	logger.Infof("round %s paid out %d to %s", r.id, amount, caller)
	return amount, r.detailsLocked(), nil
}

// SetDrawTime moves the deadline. Only the creator may edit it, only while
// the round is open, and only to a strictly future instant.
func (r *Round) SetDrawTime(ctx context.Context, caller models.Principal, newTime time.Time) (models.RoundDetails, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.creator {
		return models.RoundDetails{}, errcode.New(errcode.CodeNotCreator,
			"%s is not the creator of round %s", caller, r.id)
	}
	if r.state != models.StateOpen {
		return models.RoundDetails{}, errcode.New(errcode.CodeNotOpen,
			"round %s is %s, deadline is fixed", r.id, r.state)
	}
	if !newTime.After(r.now()) {
		return models.RoundDetails{}, errcode.New(errcode.CodeInvalidDeadline,
			"draw time must be in the future")
	}

	old := r.drawTime
	r.drawTime = newTime
	r.emit(ctx, event.KindDrawTimeChanged, event.DrawTimeChangedPayload{
		OldTime: old,
		NewTime: newTime,
	})
	r.persist(ctx)
	return r.detailsLocked(), nil
}

// Reset clears participants, the entered set, the winner and the drawn flag.
// It does not reopen the round: a closed round stays closed, so a reset
// round can never accept entries again.
func (r *Round) Reset(ctx context.Context, caller models.Principal) (models.RoundDetails, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.creator {
		return models.RoundDetails{}, errcode.New(errcode.CodeNotCreator,
			"%s is not the creator of round %s", caller, r.id)
	}
	if r.state != models.StateClosed {
		return models.RoundDetails{}, errcode.New(errcode.CodeNotClosed,
			"round %s is %s, only closed rounds reset", r.id, r.state)
	}

	cleared := len(r.participants)
	clearedWinner := r.winner
	r.participants = nil
	r.entered = make(map[models.Principal]struct{})
	r.winner = models.None
	r.isDrawn = false

	r.emit(ctx, event.KindRoundReset, event.RoundResetPayload{
		ClearedParticipants: cleared,
		ClearedWinner:       clearedWinner.String(),
	})
	r.persist(ctx)
	return r.detailsLocked(), nil
}

// CanDraw reports whether a draw would currently succeed.
func (r *Round) CanDraw() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.now().Before(r.drawTime) &&
		r.state == models.StateOpen &&
		!r.isDrawn &&
		len(r.participants) > 0
}

// Details returns a point-in-time snapshot of the round.
func (r *Round) Details() models.RoundDetails {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.detailsLocked()
}

// Participants returns the participants in insertion order.
func (r *Round) Participants() []models.Principal {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Principal, len(r.participants))
	copy(out, r.participants)
	return out
}

func (r *Round) detailsLocked() models.RoundDetails {
	return models.RoundDetails{
		ID:               r.id,
		Name:             r.name,
		Creator:          r.creator,
		EntryFee:         r.entryFee,
		DrawTime:         r.drawTime,
		PoolBalance:      r.prizePool,
		State:            r.state,
		Winner:           r.winner,
		ParticipantCount: len(r.participants),
	}
}

func (r *Round) setStateLocked(ctx context.Context, next models.RoundState) {
	prev := r.state
	r.state = next
	r.emit(ctx, event.KindStateChanged, event.StateChangedPayload{
		From: string(prev),
		To:   string(next),
	})
}

// emit appends an event to the journal. The journal is an observational side
// channel: a storage failure is logged and never rolls back a committed
// domain mutation.
func (r *Round) emit(ctx context.Context, kind event.Kind, payload any) {
	evt, err := event.New(r.id, r.now(), kind, payload)
	if err != nil {
		logger.Errorf("round %s: build %s event: %v", r.id, kind, err)
		return
	}
	if _, err := r.store.AppendEvent(ctx, evt); err != nil {
		logger.Errorf("round %s: append %s event: %v", r.id, kind, err)
	}
}

func (r *Round) persist(ctx context.Context) {
	participants := make([]string, len(r.participants))
	for i, p := range r.participants {
		participants[i] = p.String()
	}
	record := storage.RoundRecord{
		ID:           r.id,
		Name:         r.name,
		EntryFee:     r.entryFee,
		DrawTime:     r.drawTime,
		Creator:      r.creator.String(),
		Participants: participants,
		PrizePool:    r.prizePool,
		Winner:       r.winner.String(),
		IsDrawn:      r.isDrawn,
		State:        string(r.state),
		UpdatedAt:    r.now(),
	}
	if err := r.store.SaveRound(ctx, record); err != nil {
		logger.Errorf("round %s: save snapshot: %v", r.id, err)
	}
}
