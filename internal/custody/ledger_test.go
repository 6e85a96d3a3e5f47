package custody

import (
	"testing"

	"lotpool/internal/errcode"
)

func TestMemoryLedger(t *testing.T) {
	t.Run("deposits accumulate per round", func(t *testing.T) {
		ledger := NewMemoryLedger()

		if err := ledger.Deposit("r1", 10); err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if err := ledger.Deposit("r1", 5); err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if err := ledger.Deposit("r2", 3); err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}

		if got := ledger.Balance("r1"); got != 15 {
			t.Errorf("Balance(r1) = %d, want 15", got)
		}
		if got := ledger.Balance("r2"); got != 3 {
			t.Errorf("Balance(r2) = %d, want 3", got)
		}
	})

	t.Run("rejects negative deposits", func(t *testing.T) {
		ledger := NewMemoryLedger()

		err := ledger.Deposit("r1", -1)
		if errcode.CodeOf(err) != errcode.CodeInvalidFunding {
			t.Fatalf("Expected invalid funding error, got %v", err)
		}
	})

	t.Run("payout moves the balance to the principal", func(t *testing.T) {
		ledger := NewMemoryLedger()
		if err := ledger.Deposit("r1", 20); err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}

		if err := ledger.Payout("r1", "alice", 20); err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if got := ledger.Balance("r1"); got != 0 {
			t.Errorf("Balance(r1) = %d, want 0", got)
		}
		if got := ledger.AccountBalance("alice"); got != 20 {
			t.Errorf("AccountBalance(alice) = %d, want 20", got)
		}
	})

	t.Run("payout beyond the held balance fails with no effect", func(t *testing.T) {
		ledger := NewMemoryLedger()
		if err := ledger.Deposit("r1", 5); err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}

		err := ledger.Payout("r1", "alice", 6)
		if errcode.CodeOf(err) != errcode.CodeInsufficientCustody {
			t.Fatalf("Expected insufficient custody error, got %v", err)
		}
		if got := ledger.Balance("r1"); got != 5 {
			t.Errorf("Balance(r1) = %d, want 5", got)
		}
		if got := ledger.AccountBalance("alice"); got != 0 {
			t.Errorf("AccountBalance(alice) = %d, want 0", got)
		}
	})
}
