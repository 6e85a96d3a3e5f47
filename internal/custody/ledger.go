// Package custody tracks the funds actually held for each round and delivers
// payouts to principals. The pool counter kept by the engine must always
// match the balance held here; both are mutated inside the same per-round
// critical section.
package custody

import (
	"sync"

	"lotpool/internal/errcode"
	"lotpool/internal/models"
)

// Ledger is the custody interface the round engine depends on.
type Ledger interface {
	// Deposit credits amount to the round's custodied balance.
	Deposit(roundID string, amount int64) error
	// Balance returns the round's custodied balance.
	Balance(roundID string) int64
	// Payout debits the round's full balance of amount and credits it to
	// the principal's account. It either delivers in full or fails with no
	// effect.
	Payout(roundID string, to models.Principal, amount int64) error
}

// MemoryLedger is an in-process Ledger keeping round balances and principal
// accounts in maps.
type MemoryLedger struct {
	mu       sync.Mutex
	rounds   map[string]int64
	accounts map[models.Principal]int64
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		rounds:   make(map[string]int64),
		accounts: make(map[models.Principal]int64),
	}
}

// Deposit implements Ledger.
func (l *MemoryLedger) Deposit(roundID string, amount int64) error {
	if amount < 0 {
		return errcode.New(errcode.CodeInvalidFunding, "cannot deposit negative amount %d", amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rounds[roundID] += amount
	return nil
}

// Balance implements Ledger.
func (l *MemoryLedger) Balance(roundID string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rounds[roundID]
}

// Payout implements Ledger.
func (l *MemoryLedger) Payout(roundID string, to models.Principal, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	held := l.rounds[roundID]
	if held < amount {
		return errcode.New(errcode.CodeInsufficientCustody,
			"round %s holds %d, cannot pay out %d", roundID, held, amount)
	}
	l.rounds[roundID] = held - amount
	l.accounts[to] += amount
	return nil
}

// AccountBalance returns the total paid out to a principal so far.
func (l *MemoryLedger) AccountBalance(p models.Principal) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accounts[p]
}
