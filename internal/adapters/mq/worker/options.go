// Package worker runs queued analysis jobs and records their outcome.
package worker

import (
	"github.com/okian/tackline/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// withActiveGauge shares a busy-worker counter between workers of a pool.
func withActiveGauge(g *activeGauge) Option {
	return func(w *InMemoryWorker) {
		if g != nil {
			w.active = g
		}
	}
}
