// Package model contains domain records passed between layers.
package model

import (
	"fmt"
	"time"
)

// EventKey uniquely addresses one event. A different maintainer may reuse
// the same id and name; the triple is what must be unique.
type EventKey struct {
	Maintainer string
	ID         uint64
	Name       string
}

// VaultAccount derives the deterministic bank account holding the event's
// escrowed reward pool.
func (k EventKey) VaultAccount() string {
	return fmt.Sprintf("vault/%s/%d/%s", k.Maintainer, k.ID, k.Name)
}

func (k EventKey) String() string {
	return fmt.Sprintf("%s/%d/%s", k.Maintainer, k.ID, k.Name)
}

// Event is the immutable campaign record. It is created once and never
// mutated afterwards.
type Event struct {
	ID                uint64
	Name              string
	Maintainer        string
	StartTime         time.Time
	EndTime           time.Time
	SplitPercentages  [3]uint16 // ordered rank-1..rank-3 shares, sum to 100
	TotalRewardAmount uint64
	RewardAssetID     string // optional collectible for the rank-1 winner
	CreatedAt         time.Time
}

// Key returns the addressing triple for the event.
func (e Event) Key() EventKey {
	return EventKey{Maintainer: e.Maintainer, ID: e.ID, Name: e.Name}
}

// Issue is a unit of work worth a fixed point value. It is appended open and
// mutated exactly once by resolution; Resolved is terminal.
type Issue struct {
	IssueID     uint64
	Points      uint64
	Resolved    bool
	Contributor string // set only on resolution
	ResolvedAt  *time.Time
}

// Entry is one leaderboard row: per-contributor accumulated points.
// Points only ever grow. Entries are created lazily on first credit and the
// store keeps them in first-credit order, which settlement uses to break ties.
type Entry struct {
	Contributor string
	Points      uint64
}

// Winners is the frozen top-3 snapshot written by settlement. The claimed
// flags are the exactly-once guard for reward claims; they are the only part
// of the snapshot that mutates after the write.
type Winners struct {
	Winner     string
	RunnerUp   string
	ThirdPlace string
	SettledAt  time.Time
	Claimed    [3]bool
}

// Slot returns the zero-based rank slot for contributor, or -1 when the
// contributor is not a recorded winner.
func (w Winners) Slot(contributor string) int {
	switch contributor {
	case w.Winner:
		return 0
	case w.RunnerUp:
		return 1
	case w.ThirdPlace:
		return 2
	}
	return -1
}

// Vault is the read shape of an event's escrow.
type Vault struct {
	Account   string
	Balance   uint64
	AssetHeld string // empty once the collectible has been transferred out
}

// Receipt records one successful reward claim.
type Receipt struct {
	ReceiptID string
	Event     EventKey
	Claimant  string
	Rank      int // 1..3
	Payout    uint64
	AssetID   string // set when the collectible moved with the payout
	ClaimedAt time.Time
}

// ChangeKind labels a journal record.
type ChangeKind string

// Journal record kinds, one per committed mutation of the core.
const (
	ChangeEventCreated  ChangeKind = "event_created"
	ChangeIssuesAdded   ChangeKind = "issues_added"
	ChangeIssueResolved ChangeKind = "issue_resolved"
	ChangeEventSettled  ChangeKind = "event_settled"
	ChangeRewardClaimed ChangeKind = "reward_claimed"
)

// Change is one committed mutation, emitted to the journal pipeline after the
// core transaction lands. It is observability data only: nothing in the core
// depends on it.
type Change struct {
	ChangeID string
	Kind     ChangeKind
	Event    EventKey
	Actor    string
	Amount   uint64 // currency moved, when any
	Points   uint64 // points credited, when any
	At       time.Time
}
