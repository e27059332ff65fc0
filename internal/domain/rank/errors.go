package rank

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrNotEnoughContributors = errors.New("not enough contributors to settle")
)
