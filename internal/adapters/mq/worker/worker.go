// Package worker defines the workers that drain the change queue into the
// journal.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/bounty/internal/domain/model"
	"github.com/okian/bounty/pkg/logger"
	"github.com/okian/bounty/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount  = 4
	poolShutdownTimeout = 30 * time.Second
)

// Change abstracts what workers read off the queue.
type Change = model.Change

// Appender records one committed change; the journal store implements it.
type Appender interface {
	Append(ctx context.Context, c Change) error
}

// Queue defines how workers receive changes.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Change
}

// Worker processes changes from the queue until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// JournalWorker implements Worker by appending dequeued changes.
type JournalWorker struct {
	queue    Queue
	appender Appender
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewJournalWorker creates a new worker with configuration options.
func NewJournalWorker(queue Queue, appender Appender, opts ...Option) *JournalWorker {
	w := &JournalWorker{
		queue:    queue,
		appender: appender,
		name:     "journal-worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("journal-worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Run starts the worker loop.
func (w *JournalWorker) Run(ctx context.Context) {
	defer close(w.done)

	changes := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			if err := w.process(ctx, c); err != nil {
				w.logger.Error(ctx, "error recording change", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *JournalWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process appends a single change to the journal.
func (w *JournalWorker) process(ctx context.Context, c Change) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := w.appender.Append(ctx, c); err != nil {
		metrics.RecordWorkerError()
		w.logger.Error(ctx, "journal append failed",
			logger.String("changeID", c.ChangeID),
			logger.String("kind", string(c.Kind)),
			logger.Error(err),
		)
		return fmt.Errorf("append change %s: %w", c.ChangeID, err)
	}

	w.logger.Debug(ctx, "change recorded",
		logger.String("changeID", c.ChangeID),
		logger.String("kind", string(c.Kind)),
		logger.String("event", c.Event.String()),
	)
	return nil
}

// Pool manages multiple journal workers.
type Pool struct {
	workers []*JournalWorker

	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, appender Appender) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
		if n := runtime.NumCPU(); n > workerCount {
			workerCount = n
		}
	}

	pool := &Pool{
		workers: make([]*JournalWorker, workerCount),
		logger:  logger.Get().Named("journal-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewJournalWorker(
			queue,
			appender,
			WithName("journal-worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "journal workers started", logger.Int("count", len(p.workers)))
}

// Stop gracefully shuts down all workers.
func (p *Pool) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), poolShutdownTimeout)
	defer cancel()

	for _, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil {
			p.logger.Warn(ctx, "worker shutdown failed", logger.Error(err))
		}
	}
	metrics.UpdateWorkerCount(0)
}
