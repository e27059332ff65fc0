// Package worker defines the workers that drain the change queue into the
// journal.
package worker

import (
	"github.com/okian/bounty/pkg/logger"
)

// Option applies a configuration option to the JournalWorker.
type Option func(*JournalWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *JournalWorker) {
		if name != "" {
			w.name = name
			w.logger = logger.Get().Named(name)
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *JournalWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}
