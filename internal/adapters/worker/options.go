package worker

import (
	"github.com/okian/trainops/pkg/logger"
	"github.com/okian/trainops/pkg/metrics"
)

// Option applies a configuration option to the Pool.
type Option func(*Pool)

// WithLogger sets a custom logger for the pool.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics records batch metrics on m instead of the global manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(p *Pool) {
		if m != nil {
			p.metrics = m
		}
	}
}
