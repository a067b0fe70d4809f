package implementation

import (
	"context"
	"errors"
	"time"

	"candidate-router/internal/entity"
	"candidate-router/internal/mapper"
	"candidate-router/internal/model"
	"candidate-router/internal/repository/contract"
	"candidate-router/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MigrationPhaseRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.MigrationPhaseMapper
}

func NewMigrationPhaseRepository(db *gorm.DB) contract.MigrationPhaseRepository {
	return &MigrationPhaseRepositoryImpl{
		db:     db,
		mapper: mapper.NewMigrationPhaseMapper(),
	}
}

func (r *MigrationPhaseRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *MigrationPhaseRepositoryImpl) FindOpen(ctx context.Context) (*entity.MigrationPhase, error) {
	return r.FindOne(ctx, specification.OpenPhase{})
}

func (r *MigrationPhaseRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MigrationPhase, error) {
	var m model.MigrationPhase
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *MigrationPhaseRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MigrationPhase, error) {
	var models []*model.MigrationPhase
	query := r.applySpecifications(r.db.WithContext(ctx).Order("started_at ASC"), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *MigrationPhaseRepositoryImpl) Insert(ctx context.Context, phase *entity.MigrationPhase) error {
	if phase.Id == uuid.Nil {
		phase.Id = uuid.New()
	}
	if phase.StartedAt.IsZero() {
		phase.StartedAt = time.Now()
	}
	phase.StartedAt = phase.StartedAt.UTC()
	m := r.mapper.ToModel(phase)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*phase = *r.mapper.ToEntity(m)
	return nil
}

func (r *MigrationPhaseRepositoryImpl) Close(ctx context.Context, id uuid.UUID, closure entity.PhaseClosure) (bool, error) {
	updates := map[string]interface{}{
		"ended_at":      closure.EndedAt.UTC(),
		"auto_advanced": closure.AutoAdvanced,
		"notes":         closure.Notes,
		"open_slot":     nil,
	}
	if closure.Metrics != nil {
		updates["success_rate"] = closure.Metrics.SuccessRate
		updates["error_rate"] = closure.Metrics.ErrorRate
		updates["confidence_improvement"] = closure.Metrics.ConfidenceImprovement
		updates["escalation_rate"] = closure.Metrics.EscalationRate
		updates["sample_count"] = closure.Metrics.SampleCount
		updates["metrics"] = r.mapper.MetricsToJSON(closure.Metrics)
	}

	res := r.db.WithContext(ctx).
		Model(&model.MigrationPhase{}).
		Where("id = ? AND ended_at IS NULL", id).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
