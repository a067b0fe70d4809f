package bucket

import (
	"context"
	"fmt"
	"time"

	"candidate-router/internal/entity"
	"candidate-router/internal/pkg/logger"
	"candidate-router/internal/repository/unitofwork"

	"github.com/cespare/xxhash/v2"
)

const buckets = 100

// PercentageSource reports the share of traffic, 0 to 100, routed to the new
// system.
type PercentageSource interface {
	CurrentPercentage(ctx context.Context) (int, error)
}

type Router struct {
	source     PercentageSource
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
	now        func() time.Time
}

func NewRouter(source PercentageSource, uowFactory unitofwork.RepositoryFactory, logger logger.ILogger) *Router {
	return &Router{
		source:     source,
		uowFactory: uowFactory,
		logger:     logger,
		now:        time.Now,
	}
}

// Bucket maps a candidate to a stable value in [0,100).
func Bucket(candidateId string) int {
	return int(xxhash.Sum64String(candidateId) % buckets)
}

// Assign is the pure routing rule. A candidate on the new system stays there
// as the percentage rises.
func Assign(candidateId string, pct int) entity.System {
	if Bucket(candidateId) < pct {
		return entity.SystemNew
	}
	return entity.SystemLegacy
}

// Route picks the system for a candidate. When the percentage cannot be read
// the candidate goes to legacy and the error is returned alongside.
func (r *Router) Route(ctx context.Context, candidateId string) (entity.System, error) {
	pct, err := r.source.CurrentPercentage(ctx)
	if err != nil {
		r.logger.Warn("BUCKET", "Rollout percentage unavailable, routing to legacy", map[string]interface{}{
			"candidate_id": candidateId,
			"error":        err.Error(),
		})
		return entity.SystemLegacy, fmt.Errorf("read rollout percentage: %w", err)
	}
	return Assign(candidateId, pct), nil
}

// RecordComparison appends a shadow comparison sample.
func (r *Router) RecordComparison(ctx context.Context, sample *entity.ABComparisonSample) error {
	if sample.RecordedAt.IsZero() {
		sample.RecordedAt = r.now()
	}
	if err := r.uowFactory.NewUnitOfWork(ctx).ABComparisonRepository().Create(ctx, sample); err != nil {
		return fmt.Errorf("record comparison: %w", err)
	}
	return nil
}
