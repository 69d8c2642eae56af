// Package worker runs the asynchronous record pipeline.
package worker

import "github.com/crease-io/crease/pkg/logger"

// Option applies a configuration option to the QueueWorker.
type Option func(*QueueWorker)

// WithName sets the worker's name, used for logging.
func WithName(name string) Option {
	return func(w *QueueWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *QueueWorker) {
		if l != nil {
			w.logger = l
		}
	}
}
