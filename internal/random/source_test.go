package random

import (
	"testing"
	"time"

	"lotpool/internal/models"
)

func TestWeakTimingEntropyIsDeterministic(t *testing.T) {
	src := WeakTimingEntropy{}
	now := time.Date(2026, time.March, 1, 12, 0, 0, 123456789, time.UTC)

	first := src.Index(now, "round-1", 7, "alice")
	for i := 0; i < 100; i++ {
		if got := src.Index(now, "round-1", 7, "alice"); got != first {
			t.Fatalf("Same inputs produced different indices: %d vs %d", got, first)
		}
	}
}

func TestWeakTimingEntropyInputsChangeSelection(t *testing.T) {
	src := WeakTimingEntropy{}
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	// A caller who controls the submission instant can walk the timestamp
	// until the index lands where they want; verify the instant actually
	// feeds the selection.
	base := src.Index(now, "round-1", 1000, "alice")
	varied := false
	for i := 1; i <= 50; i++ {
		if src.Index(now.Add(time.Duration(i)*time.Nanosecond), "round-1", 1000, "alice") != base {
			varied = true
			break
		}
	}
	if !varied {
		t.Error("Timestamp does not influence the selection index")
	}
}

func TestWeakTimingEntropyStaysInRange(t *testing.T) {
	src := WeakTimingEntropy{}
	now := time.Now()

	for _, n := range []int{1, 2, 3, 10, 97} {
		for i := 0; i < 50; i++ {
			idx := src.Index(now.Add(time.Duration(i)*time.Millisecond), "r", n, models.Principal("p"))
			if idx < 0 || idx >= n {
				t.Fatalf("Index %d out of range [0, %d)", idx, n)
			}
		}
	}
}

func TestSecureStaysInRange(t *testing.T) {
	src := Secure{}

	for _, n := range []int{1, 2, 5, 64} {
		for i := 0; i < 50; i++ {
			idx := src.Index(time.Now(), "r", n, "p")
			if idx < 0 || idx >= n {
				t.Fatalf("Index %d out of range [0, %d)", idx, n)
			}
		}
	}
}
