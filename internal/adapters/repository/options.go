package repository

import (
	"github.com/okian/trainops/pkg/logger"
	"github.com/okian/trainops/pkg/metrics"
)

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithPath loads the dataset from path instead of the bundled seed.
func WithPath(path string) Option {
	return func(s *FileStore) {
		s.path = path
	}
}

// WithLogger sets the logger used for load summaries and data quality warnings.
func WithLogger(l logger.Logger) Option {
	return func(s *FileStore) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics records dataset metrics on m instead of the global manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *FileStore) {
		if m != nil {
			s.metrics = m
		}
	}
}
