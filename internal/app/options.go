package service

import (
	"github.com/okian/trainops/internal/adapters/repository"
	"github.com/okian/trainops/internal/domain/model"
	"github.com/okian/trainops/internal/domain/risk"
	"github.com/okian/trainops/pkg/logger"
	"github.com/okian/trainops/pkg/metrics"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets where Start loads the dataset from.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDataset uses ds directly and skips loading in Start.
func WithDataset(ds *model.Dataset) Option {
	return func(s *Service) {
		if ds != nil {
			s.dataset = ds
		}
	}
}

// WithWorkerCount sets the batch concurrency limit.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithRiskWeights overrides the risk signal weights. Invalid weights are ignored.
func WithRiskWeights(w risk.Weights) Option {
	return func(s *Service) {
		if w.Valid() {
			s.weights = w
		}
	}
}

// WithPMRoleSynonyms sets the role names that earn the product manager bonus.
func WithPMRoleSynonyms(names []string) Option {
	return func(s *Service) {
		if len(names) > 0 {
			s.pmRoles = append([]string(nil), names...)
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records on m instead of the global manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}
