// Package worker evaluates cohorts concurrently with a bounded pool.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/trainops/internal/domain/model"
	"github.com/okian/trainops/internal/domain/types"
	"github.com/okian/trainops/pkg/logger"
	"github.com/okian/trainops/pkg/metrics"
)

// Batch job outcomes recorded in metrics.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Evaluator produces the summary of one cohort. Implementations must only
// read shared state.
type Evaluator interface {
	Evaluate(ctx context.Context, cohort model.Cohort) (types.CohortSummary, error)
}

// EvaluatorFunc adapts a function to Evaluator.
type EvaluatorFunc func(ctx context.Context, cohort model.Cohort) (types.CohortSummary, error)

// Evaluate calls f.
func (f EvaluatorFunc) Evaluate(ctx context.Context, cohort model.Cohort) (types.CohortSummary, error) {
	return f(ctx, cohort)
}

// Pool runs evaluations with at most size in flight.
type Pool struct {
	size    int
	logger  logger.Logger
	metrics *metrics.Manager
}

// NewPool creates a pool. A size below 1 uses runtime.NumCPU().
func NewPool(size int, opts ...Option) *Pool {
	if size < 1 {
		size = runtime.NumCPU()
	}
	p := &Pool{
		size:    size,
		logger:  logger.Nop(),
		metrics: metrics.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.metrics.UpdateWorkerCount(size)
	return p
}

// Size returns the concurrency limit.
func (p *Pool) Size() int {
	return p.size
}

// Run evaluates every cohort and returns the summaries in input order. The
// first error cancels the evaluations that have not started yet.
func (p *Pool) Run(ctx context.Context, cohorts []model.Cohort, eval Evaluator) ([]types.CohortSummary, error) {
	start := time.Now()
	out := make([]types.CohortSummary, len(cohorts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.size)

	for i, c := range cohorts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := eval.Evaluate(gctx, c)
			if err != nil {
				p.metrics.RecordBatchJob(OutcomeError)
				return fmt.Errorf("cohort %s: %w", c.ID, err)
			}
			p.metrics.RecordBatchJob(OutcomeOK)
			out[i] = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		p.logger.Error(ctx, "batch evaluation failed", logger.Error(err))
		return nil, err
	}

	p.logger.Debug(ctx, "batch evaluation finished",
		logger.Int("cohorts", len(cohorts)),
		logger.Int("workers", p.size),
		logger.Duration("elapsed", time.Since(start)))
	return out, nil
}
