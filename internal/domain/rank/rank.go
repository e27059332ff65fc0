// Package rank orders leaderboard entries and selects settlement winners.
//
// Ordering: points DESC, ties broken by first-credit order (the order the
// store created the entries in). The caller passes entries in that order and
// the stable sort preserves it, so the ranking is deterministic.
package rank

import (
	"sort"

	"github.com/okian/bounty/internal/domain/model"
)

// podiumSize is the number of winner slots a settlement fills.
const podiumSize = 3

// Order returns a ranked copy of entries: points descending, earlier first
// credit first among equals. The input slice is not modified.
func Order(entries []model.Entry) []model.Entry {
	ranked := make([]model.Entry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Points > ranked[j].Points
	})
	return ranked
}

// Top3 freezes the top three contributors into a winners snapshot.
// Returns ErrNotEnoughContributors when fewer than three distinct
// contributors have been credited.
func Top3(entries []model.Entry) (model.Winners, error) {
	if len(entries) < podiumSize {
		return model.Winners{}, ErrNotEnoughContributors
	}
	ranked := Order(entries)
	return model.Winners{
		Winner:     ranked[0].Contributor,
		RunnerUp:   ranked[1].Contributor,
		ThirdPlace: ranked[2].Contributor,
	}, nil
}

// TotalPoints sums the accumulated points across all entries.
func TotalPoints(entries []model.Entry) uint64 {
	var total uint64
	for _, e := range entries {
		total += e.Points
	}
	return total
}
