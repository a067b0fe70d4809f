package implementation

import (
	"context"
	"time"

	"candidate-router/internal/entity"
	"candidate-router/internal/mapper"
	"candidate-router/internal/model"
	"candidate-router/internal/repository/contract"
	"candidate-router/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PerformanceSampleRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SampleMapper
}

func NewPerformanceSampleRepository(db *gorm.DB) contract.PerformanceSampleRepository {
	return &PerformanceSampleRepositoryImpl{
		db:     db,
		mapper: mapper.NewSampleMapper(),
	}
}

func (r *PerformanceSampleRepositoryImpl) prepare(sample *entity.PerformanceSample) *model.PerformanceSample {
	if sample.Id == uuid.Nil {
		sample.Id = uuid.New()
	}
	if sample.RecordedAt.IsZero() {
		sample.RecordedAt = time.Now()
	}
	sample.RecordedAt = sample.RecordedAt.UTC()
	return r.mapper.PerformanceToModel(sample)
}

func (r *PerformanceSampleRepositoryImpl) Create(ctx context.Context, sample *entity.PerformanceSample) error {
	return r.db.WithContext(ctx).Create(r.prepare(sample)).Error
}

func (r *PerformanceSampleRepositoryImpl) CreateBatch(ctx context.Context, samples []*entity.PerformanceSample) error {
	if len(samples) == 0 {
		return nil
	}
	models := make([]*model.PerformanceSample, 0, len(samples))
	for _, s := range samples {
		models = append(models, r.prepare(s))
	}
	return r.db.WithContext(ctx).CreateInBatches(models, 200).Error
}

func (r *PerformanceSampleRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.PerformanceSample{})
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type systemAggregateRow struct {
	System        string
	Total         int64
	Successes     int64
	Errors        int64
	AvgConfidence float64
}

func (r *PerformanceSampleRepositoryImpl) AggregateBySystem(ctx context.Context, from time.Time, to *time.Time) ([]entity.SystemAggregate, error) {
	var rows []systemAggregateRow
	query := r.db.WithContext(ctx).
		Model(&model.PerformanceSample{}).
		Select(`system,
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0) AS successes,
			COALESCE(SUM(CASE WHEN errored THEN 1 ELSE 0 END), 0) AS errors,
			COALESCE(AVG(confidence), 0) AS avg_confidence`)
	query = specification.SamplesRecordedBetween(from, to).Apply(query)
	if err := query.Group("system").Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]entity.SystemAggregate, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.SystemAggregate{
			System:        entity.System(row.System),
			Total:         row.Total,
			Successes:     row.Successes,
			Errors:        row.Errors,
			AvgConfidence: row.AvgConfidence,
		})
	}
	return out, nil
}

type ABComparisonRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SampleMapper
}

func NewABComparisonRepository(db *gorm.DB) contract.ABComparisonRepository {
	return &ABComparisonRepositoryImpl{
		db:     db,
		mapper: mapper.NewSampleMapper(),
	}
}

func (r *ABComparisonRepositoryImpl) Create(ctx context.Context, sample *entity.ABComparisonSample) error {
	if sample.Id == uuid.Nil {
		sample.Id = uuid.New()
	}
	if sample.RecordedAt.IsZero() {
		sample.RecordedAt = time.Now()
	}
	sample.RecordedAt = sample.RecordedAt.UTC()
	return r.db.WithContext(ctx).Create(r.mapper.ComparisonToModel(sample)).Error
}

func (r *ABComparisonRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ABComparisonSample, error) {
	var models []*model.ABComparisonSample
	query := r.db.WithContext(ctx).Order("recorded_at ASC")
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ComparisonsToEntities(models), nil
}

func (r *ABComparisonRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.ABComparisonSample{})
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
