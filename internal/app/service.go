// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/bounty/internal/adapters/bank"
	"github.com/okian/bounty/internal/adapters/journal"
	changequeue "github.com/okian/bounty/internal/adapters/mq/queue"
	workerpool "github.com/okian/bounty/internal/adapters/mq/worker"
	"github.com/okian/bounty/internal/adapters/repository"
	"github.com/okian/bounty/internal/domain/dedupe"
	"github.com/okian/bounty/internal/domain/model"
	"github.com/okian/bounty/internal/domain/rank"
	"github.com/okian/bounty/internal/domain/types"
	"github.com/okian/bounty/pkg/logger"
	"github.com/okian/bounty/pkg/metrics"
)

// Default wiring constants.
const (
	defaultWorkerCount = 4
	defaultQueueSize   = 10_000
	defaultJournalSize = 10_000
	defaultDedupeSize  = 50_000
)

// Service implements the API dependencies for the bounty campaign system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store       repository.Store
	bank        *bank.InMemoryBank
	deduper     dedupe.Deduper
	changeQueue changequeue.Queue
	journal     journal.Store
	workerPool  *workerpool.Pool

	// Configuration
	workerCount    int
	queueSize      int
	journalSize    int
	dedupeSize     int
	openingBalance uint64
	seedAccounts   map[string]uint64
	seedAssets     map[string]string

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of journal worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the change queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithJournalSize sets the number of changes the journal retains.
func WithJournalSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.journalSize = size
		}
	}
}

// WithDedupeSize sets the size of the request-idempotency cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithOpeningBalance sets the balance lazily-created bank accounts start with.
func WithOpeningBalance(amount uint64) Option {
	return func(s *Service) {
		s.openingBalance = amount
	}
}

// WithSeedAccounts funds named bank accounts at startup.
func WithSeedAccounts(accounts map[string]uint64) Option {
	return func(s *Service) {
		s.seedAccounts = accounts
	}
}

// WithSeedAssets registers collectible assets and their owners at startup.
func WithSeedAssets(assets map[string]string) Option {
	return func(s *Service) {
		s.seedAssets = assets
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: defaultWorkerCount,
		queueSize:   defaultQueueSize,
		journalSize: defaultJournalSize,
		dedupeSize:  defaultDedupeSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting bounty campaign service...")

	bankOpts := []bank.Option{bank.WithOpeningBalance(s.openingBalance)}
	for account, balance := range s.seedAccounts {
		bankOpts = append(bankOpts, bank.WithAccount(account, balance))
	}
	for assetID, owner := range s.seedAssets {
		bankOpts = append(bankOpts, bank.WithAsset(assetID, owner))
	}
	s.bank = bank.NewInMemoryBank(bankOpts...)

	s.store = repository.NewMemStore(s.bank, s.bank)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.journal = journal.NewRingStore(
		journal.WithCapacity(s.journalSize),
	)
	s.changeQueue = changequeue.NewInMemoryQueue(
		changequeue.WithCapacity(s.queueSize),
		changequeue.WithBufferSize(s.queueSize),
	)

	s.workerPool = workerpool.NewPool(s.workerCount, s.changeQueue, s.journal)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "bounty campaign service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("journalSize", s.journalSize),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping bounty campaign service...")

	if q, ok := s.changeQueue.(*changequeue.InMemoryQueue); ok {
		_ = q.Close()
	}
	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	s.started = false
	s.logger.Info(ctx, "bounty campaign service stopped")
}

// SeenAndRecord atomically checks if a request id was seen and records it if
// not. Returns true if the request was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordRequestDuplicate()
	}
	return seen
}

// Unrecord removes a request ID from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// emit records a committed change onto the journal pipeline. The journal is
// best-effort: backpressure drops the change and the operation stays
// committed.
func (s *Service) emit(ctx context.Context, c model.Change) {
	c.ChangeID = uuid.NewString()
	c.At = time.Now()
	if !s.changeQueue.Enqueue(ctx, c) {
		s.logger.Warn(ctx, "change dropped by journal backpressure",
			logger.String("kind", string(c.Kind)),
			logger.String("event", c.Event.String()),
		)
	}
}

// CreateEvent registers a campaign and escrows its reward pool.
func (s *Service) CreateEvent(ctx context.Context, p repository.CreateEventParams) (model.Event, error) {
	ev, err := s.store.CreateEvent(ctx, p)
	if err != nil {
		return model.Event{}, err
	}

	metrics.RecordEventCreated()
	metrics.UpdateTotalEvents(s.store.Count(ctx))
	s.emit(ctx, model.Change{
		Kind:   model.ChangeEventCreated,
		Event:  ev.Key(),
		Actor:  ev.Maintainer,
		Amount: ev.TotalRewardAmount,
	})
	s.logger.Info(ctx, "event created",
		logger.String("event", ev.Key().String()),
		logger.Uint64("rewardAmount", ev.TotalRewardAmount),
	)
	return ev, nil
}

// AddIssues appends open issues to an event's ledger.
func (s *Service) AddIssues(ctx context.Context, caller string, key model.EventKey, issues []model.Issue) ([]model.Issue, error) {
	all, err := s.store.AddIssues(ctx, caller, key, issues)
	if err != nil {
		return nil, err
	}

	metrics.RecordIssuesAdded(len(issues))
	s.emit(ctx, model.Change{
		Kind:  model.ChangeIssuesAdded,
		Event: key,
		Actor: caller,
	})
	return all, nil
}

// ResolveIssue marks an issue resolved and credits its contributor.
func (s *Service) ResolveIssue(ctx context.Context, caller string, key model.EventKey, issueID uint64, contributor string) (model.Issue, model.Entry, error) {
	issue, entry, err := s.store.ResolveIssue(ctx, caller, key, issueID, contributor)
	if err != nil {
		return model.Issue{}, model.Entry{}, err
	}

	metrics.RecordIssueResolved()
	metrics.RecordPointsCredited(issue.Points)
	s.emit(ctx, model.Change{
		Kind:   model.ChangeIssueResolved,
		Event:  key,
		Actor:  contributor,
		Points: issue.Points,
	})
	return issue, entry, nil
}

// FinishEvent freezes the leaderboard into the winners snapshot.
func (s *Service) FinishEvent(ctx context.Context, caller string, key model.EventKey) (model.Winners, error) {
	winners, err := s.store.FinishEvent(ctx, caller, key)
	if err != nil {
		return model.Winners{}, err
	}

	metrics.RecordSettlement()
	s.emit(ctx, model.Change{
		Kind:  model.ChangeEventSettled,
		Event: key,
		Actor: caller,
	})
	s.logger.Info(ctx, "event settled",
		logger.String("event", key.String()),
		logger.String("winner", winners.Winner),
	)
	return winners, nil
}

// ClaimRewards pays a recorded winner its share of the pool.
func (s *Service) ClaimRewards(ctx context.Context, caller string, key model.EventKey) (model.Receipt, error) {
	receipt, err := s.store.ClaimRewards(ctx, caller, key)
	if err != nil {
		return model.Receipt{}, err
	}

	metrics.RecordClaim(receipt.Payout)
	s.emit(ctx, model.Change{
		Kind:   model.ChangeRewardClaimed,
		Event:  key,
		Actor:  caller,
		Amount: receipt.Payout,
	})
	s.logger.Info(ctx, "reward claimed",
		logger.String("event", key.String()),
		logger.String("claimant", caller),
		logger.Uint64("payout", receipt.Payout),
	)
	return receipt, nil
}

// Event returns the immutable event record.
func (s *Service) Event(ctx context.Context, key model.EventKey) (model.Event, error) {
	return s.store.Event(ctx, key)
}

// Issues returns the ledger contents in append order.
func (s *Service) Issues(ctx context.Context, key model.EventKey) ([]model.Issue, error) {
	return s.store.Issues(ctx, key)
}

// Leaderboard returns ranked entries plus the total points accumulated.
func (s *Service) Leaderboard(ctx context.Context, key model.EventKey) ([]types.Entry, uint64, error) {
	entries, err := s.store.Leaderboard(ctx, key)
	if err != nil {
		return nil, 0, err
	}

	ranked := rank.Order(entries)
	out := make([]types.Entry, len(ranked))
	for i, e := range ranked {
		out[i] = types.Entry{
			Rank:        i + 1,
			Contributor: e.Contributor,
			Points:      e.Points,
		}
	}
	return out, rank.TotalPoints(entries), nil
}

// Winners returns the settlement snapshot.
func (s *Service) Winners(ctx context.Context, key model.EventKey) (model.Winners, error) {
	return s.store.Winners(ctx, key)
}

// Vault returns the escrow account, balance and held collectible.
func (s *Service) Vault(ctx context.Context, key model.EventKey) (model.Vault, error) {
	return s.store.Vault(ctx, key)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
	}

	if s.started {
		stats["totalEvents"] = s.store.Count(ctx)
		stats["queueLength"] = s.changeQueue.Len(ctx)
		stats["journalLength"] = s.journal.Len(ctx)
		stats["changesByKind"] = s.journal.CountByKind(ctx)
		stats["recentChanges"] = s.journal.Recent(ctx, 20)
		stats["dedupeSize"] = s.Size()

		metrics.UpdateTotalEvents(s.store.Count(ctx))
	}

	return stats
}
