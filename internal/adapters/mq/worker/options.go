package worker

import (
	"github.com/okian/pitwall/pkg/logger"
)

// Option applies a configuration option to the CoachWorker.
type Option func(*CoachWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *CoachWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *CoachWorker) {
		if l != nil {
			w.logger = l
		}
	}
}
