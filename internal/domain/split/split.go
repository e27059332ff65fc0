// Package split validates reward-split policies and computes payouts.
//
// A split is an ordered triple of percentages for ranks one through three.
// Payout arithmetic is integer-only: each share floors, and whatever the
// three floors leave behind stays in the vault.
package split

import (
	"fmt"
)

// percentTotal is the required sum of the three shares.
const percentTotal = 100

// Percentages is the ordered rank-1..rank-3 share triple.
type Percentages = [3]uint16

// Validate checks that the triple sums to exactly 100.
func Validate(p Percentages) error {
	var sum uint64
	for _, share := range p {
		sum += uint64(share)
	}
	if sum != percentTotal {
		return fmt.Errorf("%w: shares %v sum to %d, want %d", ErrInvalidSplit, p, sum, percentTotal)
	}
	return nil
}

// Payout returns the floored share of total for the given zero-based rank
// slot. The slot must be in [0,2].
func Payout(total uint64, p Percentages, slot int) uint64 {
	if slot < 0 || slot > 2 {
		return 0
	}
	// Quotient and remainder are split so total*pct stays within uint64.
	pct := uint64(p[slot])
	return (total/percentTotal)*pct + (total%percentTotal)*pct/percentTotal
}

// Remainder returns the dust left in the vault after all three floored
// payouts, for a fully claimed event.
func Remainder(total uint64, p Percentages) uint64 {
	paid := Payout(total, p, 0) + Payout(total, p, 1) + Payout(total, p, 2)
	return total - paid
}
