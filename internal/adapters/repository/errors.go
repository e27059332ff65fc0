package repository

import (
	"errors"

	"github.com/okian/bounty/internal/domain/rank"
)

// Sentinel kinds for store errors. Callers match them with errors.Is; the
// HTTP layer maps each to a stable machine-readable code.
var (
	// Directory.
	ErrEventExists   = errors.New("event already exists")
	ErrEventNotFound = errors.New("event not found")

	// Validation.
	ErrInvalidRewardSplit = errors.New("invalid reward split")
	ErrInvalidSchedule    = errors.New("end time must be after start time")
	ErrInvalidIssueInput  = errors.New("issue must arrive unresolved")
	ErrDuplicateIssueID   = errors.New("duplicate issue id")

	// Authorization.
	ErrUnauthorizedMaintainer = errors.New("only the event maintainer can perform this action")
	ErrInvalidMaintainer      = errors.New("invalid maintainer")

	// Lookup / state.
	ErrInvalidIssueID        = errors.New("invalid issue id")
	ErrEventNotEnded         = errors.New("event not ended")
	ErrNotEnoughContributors = rank.ErrNotEnoughContributors
	ErrSettlementLocked      = errors.New("settlement locked by a prior claim")
	ErrNotSettled            = errors.New("event not settled")

	// Claims.
	ErrNotAWinner     = errors.New("caller is not a recorded winner")
	ErrAlreadyClaimed = errors.New("reward already claimed")

	// Resource. Unreachable while funding and payout arithmetic agree.
	ErrInsufficientVaultBalance = errors.New("insufficient vault balance")
)
