package worker

import (
	"context"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/okian/bounty/internal/adapters/mq/queue"
	"github.com/okian/bounty/internal/domain/model"
	"github.com/okian/bounty/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// recordingAppender captures appended changes for assertions.
type recordingAppender struct {
	mu      sync.Mutex
	changes []model.Change
}

func (a *recordingAppender) Append(_ context.Context, c model.Change) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.changes = append(a.changes, c)
	return nil
}

func (a *recordingAppender) len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.changes)
}

func TestJournalWorker_ProcessesChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewInMemoryQueue(queue.WithCapacity(10))
	app := &recordingAppender{}
	w := NewJournalWorker(q, app, WithName("test-worker"))

	go w.Run(ctx)

	for i := 0; i < 5; i++ {
		if !q.Enqueue(ctx, model.Change{ChangeID: strconv.Itoa(i), Kind: model.ChangeIssueResolved}) {
			t.Fatalf("enqueue %d rejected", i)
		}
	}

	deadline := time.After(2 * time.Second)
	for app.len() < 5 {
		select {
		case <-deadline:
			t.Fatalf("expected 5 appends, got %d", app.len())
		case <-time.After(10 * time.Millisecond):
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
	defer shutdownCancel()
	if err := w.Shutdown(shutdownCtx); err != nil {
		t.Errorf("shutdown failed: %v", err)
	}
}

func TestPool_DrainsQueue(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := queue.NewInMemoryQueue(queue.WithCapacity(1000))
	app := &recordingAppender{}
	pool := NewPool(4, q, app)
	pool.Start(ctx)

	const total = 200
	for i := 0; i < total; i++ {
		if !q.Enqueue(ctx, model.Change{ChangeID: strconv.Itoa(i)}) {
			t.Fatalf("enqueue %d rejected", i)
		}
	}

	deadline := time.After(5 * time.Second)
	for app.len() < total {
		select {
		case <-deadline:
			t.Fatalf("expected %d appends, got %d", total, app.len())
		case <-time.After(10 * time.Millisecond):
		}
	}

	pool.Stop()

	// No change may be recorded twice.
	seen := make(map[string]bool, total)
	app.mu.Lock()
	defer app.mu.Unlock()
	for _, c := range app.changes {
		if seen[c.ChangeID] {
			t.Errorf("change %s recorded twice", c.ChangeID)
		}
		seen[c.ChangeID] = true
	}
}
