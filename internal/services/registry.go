// Package services implements the lottery lifecycle engine: the per-round
// state machine and the registry that creates and indexes rounds.
package services

import (
	"context"
	"strings"
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

// Registry owns the mapping from round identifier to Round. Rounds are
// created once, never replaced and never deleted; identifiers are immutable
// for the lifetime of the registry.
type Registry struct {
	mu     sync.RWMutex
	rounds map[string]*Round
	order  []string

	src    random.Source
	ledger custody.Ledger
	store  storage.Store
	now    func() time.Time
}

// NewRegistry creates an empty registry wired to the given entropy source,
// custody ledger and store.
func NewRegistry(src random.Source, ledger custody.Ledger, store storage.Store) *Registry {
	return &Registry{
		rounds: make(map[string]*Round),
		src:    src,
		ledger: ledger,
		store:  store,
		now:    time.Now,
	}
}

// CreateRound constructs a new open round under id. The id must be unused,
// the draw time strictly in the future and the entry fee non-negative (a fee
// of zero makes a free round). Initial funding, if any, is credited to the
// pool immediately.
func (g *Registry) CreateRound(ctx context.Context, id, name string, entryFee int64,
	drawTime time.Time, creator models.Principal, initialFunding int64) (models.RoundDetails, error) {

	if strings.TrimSpace(id) == "" {
		return models.RoundDetails{}, errcode.New(errcode.CodeEmptyRoundID, "round id is required")
	}
	if creator == models.None {
		return models.RoundDetails{}, errcode.New(errcode.CodeEmptyPrincipal, "creator is required")
	}
	if entryFee < 0 {
		return models.RoundDetails{}, errcode.New(errcode.CodeInvalidFee,
			"entry fee must be non-negative, got %d", entryFee)
	}
	if initialFunding < 0 {
		return models.RoundDetails{}, errcode.New(errcode.CodeInvalidFunding,
			"initial funding must be non-negative, got %d", initialFunding)
	}
	if !drawTime.After(g.now()) {
		return models.RoundDetails{}, errcode.New(errcode.CodeInvalidDeadline,
			"draw time must be in the future")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.rounds[id]; exists {
		return models.RoundDetails{}, errcode.New(errcode.CodeDuplicateRoundID,
			"round id %q is already taken", id)
	}
	if err := g.ledger.Deposit(id, initialFunding); err != nil {
		return models.RoundDetails{}, err
	}

	round := &Round{
		id:        id,
		name:      name,
		entryFee:  entryFee,
		drawTime:  drawTime,
		creator:   creator,
		entered:   make(map[models.Principal]struct{}),
		prizePool: initialFunding,
		state:     models.StateOpen,
		src:       g.src,
		ledger:    g.ledger,
		store:     g.store,
		now:       g.now,
	}
	g.rounds[id] = round
	g.order = append(g.order, id)

	round.emit(ctx, event.KindRoundCreated, event.RoundCreatedPayload{
		Name:           name,
		Creator:        creator.String(),
		EntryFee:       entryFee,
		DrawTime:       drawTime,
		InitialFunding: initialFunding,
	})
	round.persist(ctx)
	logger.Infof("created round %s (%q) by %s, fee %d", id, name, creator, entryFee)
	return round.Details(), nil
}

// Lookup returns the round stored under id.
func (g *Registry) Lookup(id string) (*Round, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	round, ok := g.rounds[id]
	if !ok {
		return nil, errcode.New(errcode.CodeRoundNotFound, "no round with id %q", id)
	}
	return round, nil
}

// ListRoundIDs returns all round identifiers in creation order.
func (g *Registry) ListRoundIDs() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Enter forwards an entry command to the named round.
func (g *Registry) Enter(ctx context.Context, id string, caller models.Principal, payment int64) (models.RoundDetails, error) {
	round, err := g.Lookup(id)
	if err != nil {
		return models.RoundDetails{}, err
	}
	return round.Enter(ctx, caller, payment)
}

// Sponsor forwards a sponsorship command to the named round.
func (g *Registry) Sponsor(ctx context.Context, id string, caller models.Principal, amount int64) (models.RoundDetails, error) {
	round, err := g.Lookup(id)
	if err != nil {
		return models.RoundDetails{}, err
	}
	return round.Sponsor(ctx, caller, amount)
}

// Draw forwards a draw command to the named round.
func (g *Registry) Draw(ctx context.Context, id string, caller models.Principal) (models.RoundDetails, error) {
	round, err := g.Lookup(id)
	if err != nil {
		return models.RoundDetails{}, err
	}
	return round.Draw(ctx, caller)
}

// Claim forwards a claim command to the named round, returning the amount
// paid out.
func (g *Registry) Claim(ctx context.Context, id string, caller models.Principal) (int64, models.RoundDetails, error) {
	round, err := g.Lookup(id)
	if err != nil {
		return 0, models.RoundDetails{}, err
	}
	return round.Claim(ctx, caller)
}

// SetDrawTime forwards a deadline edit to the named round.
func (g *Registry) SetDrawTime(ctx context.Context, id string, caller models.Principal, newTime time.Time) (models.RoundDetails, error) {
	round, err := g.Lookup(id)
	if err != nil {
		return models.RoundDetails{}, err
	}
	return round.SetDrawTime(ctx, caller, newTime)
}

// Reset forwards a reset command to the named round.
func (g *Registry) Reset(ctx context.Context, id string, caller models.Principal) (models.RoundDetails, error) {
	round, err := g.Lookup(id)
	if err != nil {
		return models.RoundDetails{}, err
	}
	return round.Reset(ctx, caller)
}

// GetDetails returns a snapshot of the named round.
func (g *Registry) GetDetails(id string) (models.RoundDetails, error) {
	round, err := g.Lookup(id)
	if err != nil {
		return models.RoundDetails{}, err
	}
	return round.Details(), nil
}

// GetParticipants returns the named round's participants in entry order.
func (g *Registry) GetParticipants(id string) ([]models.Principal, error) {
	round, err := g.Lookup(id)
	if err != nil {
		return nil, err
	}
	return round.Participants(), nil
}

// CanDraw reports whether a draw on the named round would currently succeed.
func (g *Registry) CanDraw(id string) (bool, error) {
	round, err := g.Lookup(id)
	if err != nil {
		return false, err
	}
	return round.CanDraw(), nil
}

// Events returns the named round's journal in sequence order.
func (g *Registry) Events(ctx context.Context, id string) ([]event.Event, error) {
	if _, err := g.Lookup(id); err != nil {
		return nil, err
	}
	return g.store.ListEvents(ctx, id)
}
