package contract

import (
	"context"
	"time"

	"candidate-router/internal/entity"
	"candidate-router/internal/repository/specification"
)

// PerformanceSampleRepository is append-only.
type PerformanceSampleRepository interface {
	Create(ctx context.Context, sample *entity.PerformanceSample) error
	CreateBatch(ctx context.Context, samples []*entity.PerformanceSample) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// AggregateBySystem groups samples recorded in [from, to) by system.
	AggregateBySystem(ctx context.Context, from time.Time, to *time.Time) ([]entity.SystemAggregate, error)
}

// ABComparisonRepository is append-only.
type ABComparisonRepository interface {
	Create(ctx context.Context, sample *entity.ABComparisonSample) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ABComparisonSample, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
