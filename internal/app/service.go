// Package service wires the dataset snapshot to the analytics components and
// exposes one method per command.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/okian/trainops/internal/adapters/repository"
	"github.com/okian/trainops/internal/adapters/worker"
	"github.com/okian/trainops/internal/domain/dedupe"
	"github.com/okian/trainops/internal/domain/filter"
	"github.com/okian/trainops/internal/domain/kpi"
	"github.com/okian/trainops/internal/domain/model"
	"github.com/okian/trainops/internal/domain/recommend"
	"github.com/okian/trainops/internal/domain/report"
	"github.com/okian/trainops/internal/domain/risk"
	"github.com/okian/trainops/internal/domain/types"
	"github.com/okian/trainops/internal/validation"
	"github.com/okian/trainops/pkg/logger"
	"github.com/okian/trainops/pkg/metrics"
)

// Operation names used in logs and metrics.
const (
	OpKPI       = "kpi"
	OpWeekly    = "weekly"
	OpRisk      = "risk"
	OpRecommend = "recommend"
	OpAAR       = "aar"
	OpBatch     = "batch"

	batchTopRisk = 3
)

// Service owns the immutable dataset snapshot and the components computing
// over it. After Start every method is safe for concurrent use.
type Service struct {
	mu sync.RWMutex

	// Core components
	store       repository.Store
	dataset     *model.Dataset
	scorer      *risk.Scorer
	recommender *recommend.Recommender
	reports     *report.Generator
	pool        *worker.Pool

	// Configuration
	workerCount int
	weights     risk.Weights
	pmRoles     []string

	started bool

	logger  logger.Logger
	metrics *metrics.Manager
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		weights:     risk.DefaultWeights(),
		pmRoles:     recommend.DefaultPMRoleSynonyms(),
		logger:      logger.Nop(),
		metrics:     metrics.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the dataset unless one was supplied and builds the components.
// Calling Start twice is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.dataset == nil {
		if s.store == nil {
			s.store = repository.NewFileStore(
				repository.WithLogger(s.logger.Named("repository")),
				repository.WithMetrics(s.metrics),
			)
		}
		ds, err := s.store.Load(ctx)
		if err != nil {
			return err
		}
		s.dataset = ds
	}

	s.scorer = risk.NewScorer(risk.WithWeights(s.weights))
	s.recommender = recommend.New(recommend.WithPMRoleSynonyms(s.pmRoles))
	s.reports = report.NewGenerator(s.scorer)
	s.pool = worker.NewPool(s.workerCount,
		worker.WithLogger(s.logger.Named("worker")),
		worker.WithMetrics(s.metrics))

	s.started = true
	s.logger.Debug(ctx, "service started",
		logger.Int("workers", s.workerCount),
		logger.Any("risk_weights", s.weights),
		logger.Any("pm_roles", s.pmRoles))
	return nil
}

// Dataset returns the loaded snapshot, or nil before Start.
func (s *Service) Dataset() *model.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset
}

// KPIs aggregates indicators for an optional company and cohort.
func (s *Service) KPIs(ctx context.Context, req types.KPIRequest) (kpi.Result, error) {
	var out kpi.Result
	err := s.run(ctx, OpKPI, &req, func(ds *model.Dataset) error {
		out = kpi.Compute(ds, kpi.Scope{CompanyID: req.CompanyID, CohortID: req.CohortID})
		return nil
	})
	return out, err
}

// Risk ranks the learners of a cohort, keeping at most req.Top entries.
func (s *Service) Risk(ctx context.Context, req types.RiskRequest) ([]risk.Entry, error) {
	var out []risk.Entry
	err := s.run(ctx, OpRisk, &req, func(ds *model.Dataset) error {
		ranked := s.scorer.Score(ds, req.CohortID)
		s.metrics.UpdateAtRiskLearners(req.CohortID, len(risk.AtLeast(ranked, report.WeeklyRiskThreshold)))
		out = risk.Top(ranked, req.Top)
		return nil
	})
	return out, err
}

// Recommend selects catalog modules for a learner profile.
func (s *Service) Recommend(ctx context.Context, req types.RecommendRequest) (recommend.Result, error) {
	var out recommend.Result
	err := s.run(ctx, OpRecommend, &req, func(ds *model.Dataset) error {
		out = s.recommender.Recommend(ds.Modules(), recommend.Request{
			Role:  req.Role,
			Level: req.Level,
			Weeks: req.Weeks,
			Tags:  req.Tags,
		})
		return nil
	})
	return out, err
}

// WeeklyReport renders the weekly status report of a company cohort.
func (s *Service) WeeklyReport(ctx context.Context, req types.WeeklyRequest) (string, error) {
	var out string
	err := s.run(ctx, OpWeekly, &req, func(ds *model.Dataset) error {
		out = s.reports.Weekly(ds, req.CompanyID, req.CohortID)
		return nil
	})
	return out, err
}

// AAR renders the after-action report of a cohort.
func (s *Service) AAR(ctx context.Context, req types.AARRequest) (string, error) {
	var out string
	err := s.run(ctx, OpAAR, &req, func(ds *model.Dataset) error {
		out = s.reports.AAR(ds, req.CohortID)
		return nil
	})
	return out, err
}

// Batch summarizes every cohort, optionally of one company, ordered by
// cohort id. Cohorts are evaluated concurrently on the worker pool.
func (s *Service) Batch(ctx context.Context, req types.BatchRequest) ([]types.CohortSummary, error) {
	var out []types.CohortSummary
	err := s.run(ctx, OpBatch, &req, func(ds *model.Dataset) error {
		cohorts := distinctCohorts(filter.Where(ds.Cohorts(), model.CohortFields, filter.Constraints{
			"company_id": filter.Optional(req.CompanyID),
		}))
		res, err := s.pool.Run(ctx, cohorts, worker.EvaluatorFunc(func(_ context.Context, c model.Cohort) (types.CohortSummary, error) {
			return s.summarize(ds, c), nil
		}))
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	return out, err
}

func (s *Service) summarize(ds *model.Dataset, c model.Cohort) types.CohortSummary {
	id := c.ID.String()
	ranked := s.scorer.Score(ds, id)
	atRisk := len(risk.AtLeast(ranked, report.WeeklyRiskThreshold))
	s.metrics.UpdateAtRiskLearners(id, atRisk)
	return types.CohortSummary{
		CohortID:  id,
		CompanyID: c.CompanyID.String(),
		KPIs:      kpi.Compute(ds, kpi.Scope{CohortID: id}),
		AtRisk:    atRisk,
		TopRisk:   risk.Top(ranked, batchTopRisk),
	}
}

// run validates req, executes fn against the snapshot and records the
// outcome in logs and metrics.
func (s *Service) run(ctx context.Context, op string, req any, fn func(*model.Dataset) error) error {
	s.mu.RLock()
	ds, started := s.dataset, s.started
	s.mu.RUnlock()

	if !started {
		s.metrics.RecordComputationError(op)
		return fmt.Errorf("%s: %w", op, ErrNotStarted)
	}
	if err := validation.ValidateStruct(req); err != nil {
		s.metrics.RecordComputationError(op)
		s.logger.Warn(ctx, "rejected request", logger.String("operation", op), logger.Error(err))
		return err
	}
	if err := ctx.Err(); err != nil {
		s.metrics.RecordComputationError(op)
		return err
	}

	start := time.Now()
	if err := fn(ds); err != nil {
		s.metrics.RecordComputationError(op)
		s.logger.Error(ctx, "computation failed", logger.String("operation", op), logger.Error(err))
		return err
	}
	elapsed := time.Since(start)
	s.metrics.RecordComputation(op, float64(elapsed.Microseconds())/1000)
	s.logger.Debug(ctx, "computation finished",
		logger.String("operation", op),
		logger.Any("request", req),
		logger.Duration("elapsed", elapsed))
	return nil
}

func distinctCohorts(cohorts []model.Cohort) []model.Cohort {
	seen := dedupe.New(len(cohorts))
	out := make([]model.Cohort, 0, len(cohorts))
	for _, c := range cohorts {
		if !seen.SeenAndRecord(c.ID.String()) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
