package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/bounty/internal/adapters/bank"
	"github.com/okian/bounty/internal/domain/model"
	"github.com/okian/bounty/internal/domain/rank"
	"github.com/okian/bounty/internal/domain/split"
	"github.com/okian/bounty/pkg/metrics"
)

// In-memory Store implementation.
//
// Layout: a directory map keyed by the (maintainer, id, name) triple, one
// record per event. The directory mutex guards the map; each record carries
// its own mutex serializing every mutation of that event's ledger,
// leaderboard, vault and winners. Concurrent resolves of the same issue
// therefore cannot both succeed, and a rejected call leaves no partial state
// because every precondition is checked before the first write.

// eventRecord bundles all state one event exclusively owns.
type eventRecord struct {
	mu sync.Mutex

	event      model.Event
	issues     []model.Issue
	issueIndex map[uint64]int // issueID -> position in issues

	entries    []model.Entry  // first-credit order; ties settle on it
	entryIndex map[string]int // contributor -> position in entries

	winners   *model.Winners
	claims    int    // successful claims; any claim locks re-settlement
	assetHeld string // collectible still in escrow, empty once transferred
}

// MemStore implements Store on top of the bank capabilities.
type MemStore struct {
	mu     sync.RWMutex
	events map[model.EventKey]*eventRecord

	ledger bank.Ledger
	assets bank.AssetRegistry
	now    func() time.Time
}

// NewMemStore creates an empty event directory backed by the given bank
// capabilities.
func NewMemStore(ledger bank.Ledger, assets bank.AssetRegistry, opts ...Option) *MemStore {
	s := &MemStore{
		events: make(map[model.EventKey]*eventRecord),
		ledger: ledger,
		assets: assets,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// record looks up the event record for key.
func (s *MemStore) record(key model.EventKey) (*eventRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.events[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, key)
	}
	return rec, nil
}

// CreateEvent atomically registers the event and escrows its reward pool.
func (s *MemStore) CreateEvent(ctx context.Context, p CreateEventParams) (model.Event, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := split.Validate(p.SplitPercentages); err != nil {
		return model.Event{}, fmt.Errorf("%w: %v", ErrInvalidRewardSplit, err)
	}
	if !p.EndTime.After(p.StartTime) {
		return model.Event{}, fmt.Errorf("%w: start %s, end %s", ErrInvalidSchedule, p.StartTime, p.EndTime)
	}

	key := model.EventKey{Maintainer: p.Maintainer, ID: p.ID, Name: p.Name}

	// The directory lock is held across the escrow transfers so the whole
	// creation commits or none of it does.
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[key]; ok {
		return model.Event{}, fmt.Errorf("%w: %s", ErrEventExists, key)
	}

	vaultAcct := key.VaultAccount()
	if err := s.ledger.Transfer(ctx, p.Maintainer, vaultAcct, p.RewardAmount); err != nil {
		return model.Event{}, fmt.Errorf("escrow reward pool: %w", err)
	}
	if p.RewardAssetID != "" {
		if err := s.assets.TransferAsset(ctx, p.RewardAssetID, p.Maintainer, vaultAcct); err != nil {
			// Undo the currency escrow; the record was never inserted.
			if refundErr := s.ledger.Transfer(ctx, vaultAcct, p.Maintainer, p.RewardAmount); refundErr != nil {
				return model.Event{}, fmt.Errorf("escrow collectible: %w (refund also failed: %v)", err, refundErr)
			}
			return model.Event{}, fmt.Errorf("escrow collectible: %w", err)
		}
	}

	ev := model.Event{
		ID:                p.ID,
		Name:              p.Name,
		Maintainer:        p.Maintainer,
		StartTime:         p.StartTime,
		EndTime:           p.EndTime,
		SplitPercentages:  p.SplitPercentages,
		TotalRewardAmount: p.RewardAmount,
		RewardAssetID:     p.RewardAssetID,
		CreatedAt:         s.now(),
	}
	s.events[key] = &eventRecord{
		event:      ev,
		issueIndex: make(map[uint64]int),
		entryIndex: make(map[string]int),
		assetHeld:  p.RewardAssetID,
	}
	return ev, nil
}

// AddIssues appends open issues to the ledger in call order.
func (s *MemStore) AddIssues(ctx context.Context, caller string, key model.EventKey, issues []model.Issue) ([]model.Issue, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	rec, err := s.record(key)
	if err != nil {
		return nil, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if caller != rec.event.Maintainer {
		return nil, fmt.Errorf("%w: caller %q", ErrUnauthorizedMaintainer, caller)
	}

	// Validate the whole batch before touching the ledger so a rejected
	// call appends nothing.
	seen := make(map[uint64]struct{}, len(issues))
	for _, is := range issues {
		if is.Resolved || is.Contributor != "" || is.ResolvedAt != nil {
			return nil, fmt.Errorf("%w: issue %d", ErrInvalidIssueInput, is.IssueID)
		}
		if _, dup := seen[is.IssueID]; dup {
			return nil, fmt.Errorf("%w: %d repeated in batch", ErrDuplicateIssueID, is.IssueID)
		}
		if _, dup := rec.issueIndex[is.IssueID]; dup {
			return nil, fmt.Errorf("%w: %d already in ledger", ErrDuplicateIssueID, is.IssueID)
		}
		seen[is.IssueID] = struct{}{}
	}

	for _, is := range issues {
		rec.issueIndex[is.IssueID] = len(rec.issues)
		rec.issues = append(rec.issues, model.Issue{IssueID: is.IssueID, Points: is.Points})
	}
	return copyIssues(rec.issues), nil
}

// ResolveIssue flips an open issue to resolved and credits the contributor.
func (s *MemStore) ResolveIssue(ctx context.Context, caller string, key model.EventKey, issueID uint64, contributor string) (model.Issue, model.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	rec, err := s.record(key)
	if err != nil {
		return model.Issue{}, model.Entry{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if caller != rec.event.Maintainer {
		return model.Issue{}, model.Entry{}, fmt.Errorf("%w: caller %q", ErrInvalidMaintainer, caller)
	}

	// One kind covers both a missing and an already-resolved issue.
	pos, ok := rec.issueIndex[issueID]
	if !ok || rec.issues[pos].Resolved {
		return model.Issue{}, model.Entry{}, fmt.Errorf("%w: %d", ErrInvalidIssueID, issueID)
	}

	resolvedAt := s.now()
	issue := &rec.issues[pos]
	issue.Resolved = true
	issue.Contributor = contributor
	issue.ResolvedAt = &resolvedAt

	entryPos, ok := rec.entryIndex[contributor]
	if !ok {
		entryPos = len(rec.entries)
		rec.entryIndex[contributor] = entryPos
		rec.entries = append(rec.entries, model.Entry{Contributor: contributor})
	}
	rec.entries[entryPos].Points += issue.Points

	return *issue, rec.entries[entryPos], nil
}

// FinishEvent freezes the leaderboard into the winners snapshot.
func (s *MemStore) FinishEvent(ctx context.Context, caller string, key model.EventKey) (model.Winners, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	rec, err := s.record(key)
	if err != nil {
		return model.Winners{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if caller != rec.event.Maintainer {
		return model.Winners{}, fmt.Errorf("%w: caller %q", ErrUnauthorizedMaintainer, caller)
	}
	if now := s.now(); now.Before(rec.event.EndTime) {
		return model.Winners{}, fmt.Errorf("%w: ends %s", ErrEventNotEnded, rec.event.EndTime)
	}
	if rec.claims > 0 {
		return model.Winners{}, fmt.Errorf("%w: %d claims already paid", ErrSettlementLocked, rec.claims)
	}

	winners, err := rank.Top3(rec.entries)
	if err != nil {
		return model.Winners{}, err
	}
	winners.SettledAt = s.now()
	rec.winners = &winners
	return winners, nil
}

// ClaimRewards pays the caller's share exactly once.
func (s *MemStore) ClaimRewards(ctx context.Context, caller string, key model.EventKey) (model.Receipt, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	rec, err := s.record(key)
	if err != nil {
		return model.Receipt{}, err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.winners == nil {
		return model.Receipt{}, fmt.Errorf("%w: %s", ErrNotSettled, key)
	}
	slot := rec.winners.Slot(caller)
	if slot < 0 {
		return model.Receipt{}, fmt.Errorf("%w: %q", ErrNotAWinner, caller)
	}
	if rec.winners.Claimed[slot] {
		return model.Receipt{}, fmt.Errorf("%w: %q at rank %d", ErrAlreadyClaimed, caller, slot+1)
	}

	payout := split.Payout(rec.event.TotalRewardAmount, rec.event.SplitPercentages, slot)
	vaultAcct := key.VaultAccount()

	balance, err := s.ledger.Balance(ctx, vaultAcct)
	if err != nil {
		return model.Receipt{}, fmt.Errorf("read vault balance: %w", err)
	}
	if balance < payout {
		return model.Receipt{}, fmt.Errorf("%w: vault holds %d, payout %d", ErrInsufficientVaultBalance, balance, payout)
	}
	if err := s.ledger.Transfer(ctx, vaultAcct, caller, payout); err != nil {
		return model.Receipt{}, fmt.Errorf("pay reward: %w", err)
	}

	assetMoved := ""
	if slot == 0 && rec.assetHeld != "" {
		if err := s.assets.TransferAsset(ctx, rec.assetHeld, vaultAcct, caller); err != nil {
			// Undo the payout so the rejected claim leaves no trace.
			if refundErr := s.ledger.Transfer(ctx, caller, vaultAcct, payout); refundErr != nil {
				return model.Receipt{}, fmt.Errorf("transfer collectible: %w (refund also failed: %v)", err, refundErr)
			}
			return model.Receipt{}, fmt.Errorf("transfer collectible: %w", err)
		}
		assetMoved = rec.assetHeld
		rec.assetHeld = ""
	}

	// The claimed flag is the exactly-once guard; it commits with the debit
	// under the record lock.
	rec.winners.Claimed[slot] = true
	rec.claims++

	return model.Receipt{
		ReceiptID: uuid.NewString(),
		Event:     key,
		Claimant:  caller,
		Rank:      slot + 1,
		Payout:    payout,
		AssetID:   assetMoved,
		ClaimedAt: s.now(),
	}, nil
}

// Event returns a copy of the immutable event record.
func (s *MemStore) Event(ctx context.Context, key model.EventKey) (model.Event, error) {
	defer s.trackQuery(time.Now())

	rec, err := s.record(key)
	if err != nil {
		return model.Event{}, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.event, nil
}

// Issues returns the ledger contents in append order.
func (s *MemStore) Issues(ctx context.Context, key model.EventKey) ([]model.Issue, error) {
	defer s.trackQuery(time.Now())

	rec, err := s.record(key)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return copyIssues(rec.issues), nil
}

// Leaderboard returns entries in first-credit order.
func (s *MemStore) Leaderboard(ctx context.Context, key model.EventKey) ([]model.Entry, error) {
	defer s.trackQuery(time.Now())

	rec, err := s.record(key)
	if err != nil {
		return nil, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	entries := make([]model.Entry, len(rec.entries))
	copy(entries, rec.entries)
	return entries, nil
}

// Winners returns the settlement snapshot.
func (s *MemStore) Winners(ctx context.Context, key model.EventKey) (model.Winners, error) {
	defer s.trackQuery(time.Now())

	rec, err := s.record(key)
	if err != nil {
		return model.Winners{}, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.winners == nil {
		return model.Winners{}, fmt.Errorf("%w: %s", ErrNotSettled, key)
	}
	return *rec.winners, nil
}

// Vault returns the escrow account, its balance and any held collectible.
func (s *MemStore) Vault(ctx context.Context, key model.EventKey) (model.Vault, error) {
	defer s.trackQuery(time.Now())

	rec, err := s.record(key)
	if err != nil {
		return model.Vault{}, err
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()

	acct := key.VaultAccount()
	balance, err := s.ledger.Balance(ctx, acct)
	if err != nil {
		return model.Vault{}, fmt.Errorf("read vault balance: %w", err)
	}
	return model.Vault{Account: acct, Balance: balance, AssetHeld: rec.assetHeld}, nil
}

// Count returns the number of registered events.
func (s *MemStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

func (s *MemStore) trackQuery(start time.Time) {
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
}

func copyIssues(issues []model.Issue) []model.Issue {
	out := make([]model.Issue, len(issues))
	copy(out, issues)
	return out
}
