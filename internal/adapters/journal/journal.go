// Package journal keeps a bounded, append-only trail of committed changes.
//
// The journal is observability data: it backs the /stats recent-activity view
// and per-kind counters. Core invariants never read it.
package journal

import (
	"context"
	"sync"

	"github.com/okian/bounty/internal/domain/model"
	"github.com/okian/bounty/pkg/metrics"
)

// defaultCapacity bounds the retained change history.
const defaultCapacity = 10_000

// Store records committed changes and serves recent history.
type Store interface {
	// Append records one committed change.
	Append(ctx context.Context, c model.Change) error

	// Recent returns up to n changes, newest first.
	Recent(ctx context.Context, n int) []model.Change

	// CountByKind returns how many changes of each kind have been recorded
	// over the journal's lifetime, including evicted ones.
	CountByKind(ctx context.Context) map[model.ChangeKind]uint64

	// Len returns the number of retained changes.
	Len(ctx context.Context) int
}

// RingStore implements Store with a fixed-capacity ring buffer.
type RingStore struct {
	mu       sync.RWMutex
	buf      []model.Change
	next     int // write position
	full     bool
	counts   map[model.ChangeKind]uint64
	capacity int
}

// Option applies a configuration option to the RingStore.
type Option func(*RingStore)

// WithCapacity bounds the number of retained changes.
func WithCapacity(n int) Option {
	return func(s *RingStore) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// NewRingStore creates a journal with configuration options.
func NewRingStore(opts ...Option) *RingStore {
	s := &RingStore{
		capacity: defaultCapacity,
		counts:   make(map[model.ChangeKind]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.buf = make([]model.Change, s.capacity)
	return s
}

// Append records one committed change, evicting the oldest when full.
func (s *RingStore) Append(_ context.Context, c model.Change) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf[s.next] = c
	s.next++
	if s.next == s.capacity {
		s.next = 0
		s.full = true
	}
	s.counts[c.Kind]++

	metrics.RecordJournalAppend()
	metrics.UpdateJournalSize(s.lenLocked())
	return nil
}

// Recent returns up to n changes, newest first.
func (s *RingStore) Recent(_ context.Context, n int) []model.Change {
	s.mu.RLock()
	defer s.mu.RUnlock()

	length := s.lenLocked()
	if n > length {
		n = length
	}
	if n <= 0 {
		return nil
	}
	out := make([]model.Change, 0, n)
	for i := 1; i <= n; i++ {
		pos := s.next - i
		if pos < 0 {
			pos += s.capacity
		}
		out = append(out, s.buf[pos])
	}
	return out
}

// CountByKind returns lifetime per-kind counts.
func (s *RingStore) CountByKind(_ context.Context) map[model.ChangeKind]uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[model.ChangeKind]uint64, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out
}

// Len returns the number of retained changes.
func (s *RingStore) Len(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lenLocked()
}

func (s *RingStore) lenLocked() int {
	if s.full {
		return s.capacity
	}
	return s.next
}
