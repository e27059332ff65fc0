package split

import "errors"

// Sentinel kinds for split errors.
var (
	ErrInvalidSplit = errors.New("invalid reward split")
)
