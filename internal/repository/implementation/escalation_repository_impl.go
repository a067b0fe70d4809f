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

type EscalationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.EscalationMapper
}

func NewEscalationRepository(db *gorm.DB) contract.EscalationRepository {
	return &EscalationRepositoryImpl{
		db:     db,
		mapper: mapper.NewEscalationMapper(),
	}
}

func (r *EscalationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *EscalationRepositoryImpl) Create(ctx context.Context, escalation *entity.Escalation) error {
	if escalation.Id == uuid.Nil {
		escalation.Id = uuid.New()
	}
	if escalation.CreatedAt.IsZero() {
		escalation.CreatedAt = time.Now()
	}
	escalation.CreatedAt = escalation.CreatedAt.UTC()
	m := r.mapper.ToModel(escalation)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*escalation = *r.mapper.ToEntity(m)
	return nil
}

func (r *EscalationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Escalation, error) {
	var m model.Escalation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *EscalationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Escalation, error) {
	var models []*model.Escalation
	query := r.applySpecifications(r.db.WithContext(ctx).Order("created_at ASC"), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *EscalationRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Escalation{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *EscalationRepositoryImpl) Resolve(ctx context.Context, id uuid.UUID, resolution string, resolvedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Escalation{}).
		Where("id = ? AND status = ?", id, string(entity.EscalationStatusOpen)).
		Updates(map[string]interface{}{
			"status":      string(entity.EscalationStatusResolved),
			"resolution":  resolution,
			"resolved_at": resolvedAt.UTC(),
			"open_slot":   nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
