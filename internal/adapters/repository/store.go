// Package repository defines the event directory store interface and errors.
//
// The store is the core of the system: a deterministic directory of event
// records keyed by (maintainer, id, name), each owning its issue ledger,
// leaderboard, vault and winners snapshot. Every mutating call is a
// whole-or-nothing transaction with a synchronous accept-or-reject outcome.
package repository

import (
	"context"
	"time"

	"github.com/okian/bounty/internal/domain/model"
)

// CreateEventParams carries the inputs of event creation.
type CreateEventParams struct {
	ID               uint64
	Name             string
	StartTime        time.Time
	EndTime          time.Time
	Maintainer       string
	SplitPercentages [3]uint16
	RewardAmount     uint64
	RewardAssetID    string // optional collectible escrowed for the rank-1 winner
}

// Store provides transactional access to event state.
type Store interface {
	// CreateEvent atomically records the event, its empty issue ledger and
	// leaderboard, and escrows the reward pool (and optional collectible)
	// into a fresh vault, debiting the maintainer.
	CreateEvent(ctx context.Context, p CreateEventParams) (model.Event, error)

	// AddIssues appends open issues to the event's ledger in call order.
	// Only the maintainer may append; every issue must arrive unresolved
	// and issue ids must be unique across the ledger's whole history.
	AddIssues(ctx context.Context, caller string, key model.EventKey, issues []model.Issue) ([]model.Issue, error)

	// ResolveIssue marks an open issue resolved by contributor and credits
	// the contributor's leaderboard entry by the issue's points, atomically.
	// Resolution is terminal; a second resolve of the same issue is rejected
	// with ErrInvalidIssueID and changes nothing.
	ResolveIssue(ctx context.Context, caller string, key model.EventKey, issueID uint64, contributor string) (model.Issue, model.Entry, error)

	// FinishEvent freezes the current leaderboard into the top-3 winners
	// snapshot. Re-settlement is allowed until the first claim lands.
	FinishEvent(ctx context.Context, caller string, key model.EventKey) (model.Winners, error)

	// ClaimRewards pays the caller its split share of the reward pool,
	// exactly once per winner, moving the collectible alongside the rank-1
	// payout when one is held.
	ClaimRewards(ctx context.Context, caller string, key model.EventKey) (model.Receipt, error)

	// Reads. Unrestricted; no caller authorization.

	// Event returns the immutable event record.
	Event(ctx context.Context, key model.EventKey) (model.Event, error)
	// Issues returns the ledger contents in append order.
	Issues(ctx context.Context, key model.EventKey) ([]model.Issue, error)
	// Leaderboard returns entries in first-credit order.
	Leaderboard(ctx context.Context, key model.EventKey) ([]model.Entry, error)
	// Winners returns the settlement snapshot, or ErrNotSettled.
	Winners(ctx context.Context, key model.EventKey) (model.Winners, error)
	// Vault returns the escrow's account id, balance and held collectible.
	Vault(ctx context.Context, key model.EventKey) (model.Vault, error)

	// Count returns the number of registered events.
	Count(ctx context.Context) int
}
