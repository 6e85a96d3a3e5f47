// Package random provides the pluggable winner-selection entropy source.
package random

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/big"
	"time"

	"lotpool/internal/models"
)

// Source selects a winner index in [0, n) from round-local entropy.
//
// Implementations must be safe for concurrent use. The engine depends only
// on this interface, never on a concrete algorithm, so deployments can swap
// the default biased source for an unpredictable one.
type Source interface {
	Index(now time.Time, roundSeed string, n int, caller models.Principal) int
}

// WeakTimingEntropy derives the index from a hash of the draw instant, the
// round seed, the participant count and the caller, reduced mod n. It is
// fully deterministic: the same inputs always yield the same index, so any
// caller who controls the submission instant can bias the outcome. That
// weakness is intentional and must not be "fixed" here; use Secure instead
// when unpredictability matters.
type WeakTimingEntropy struct{}

// Index implements Source.
func (WeakTimingEntropy) Index(now time.Time, roundSeed string, n int, caller models.Principal) int {
	if n <= 0 {
		return 0
	}
	h := sha256.New()
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(now.UnixNano()))
	h.Write(ts[:])
	fmt.Fprintf(h, "%s|%d|%s", roundSeed, n, caller)
	sum := h.Sum(nil)
	return int(binary.BigEndian.Uint64(sum[:8]) % uint64(n))
}

// Secure draws the index from crypto/rand, ignoring the timing inputs.
type Secure struct{}

// Index implements Source.
func (Secure) Index(_ time.Time, _ string, n int, _ models.Principal) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand only fails if the platform entropy source is broken;
		// falling back to index 0 keeps the draw total.
		return 0
	}
	return int(v.Int64())
}
