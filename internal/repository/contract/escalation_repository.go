package contract

import (
	"context"
	"time"

	"candidate-router/internal/entity"
	"candidate-router/internal/repository/specification"

	"github.com/google/uuid"
)

// EscalationRepository stores escalations. Create returns
// gorm.ErrDuplicatedKey when an open escalation already exists for the same
// (candidate, message).
type EscalationRepository interface {
	Create(ctx context.Context, escalation *entity.Escalation) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Escalation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Escalation, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// Resolve closes an open escalation. It reports false when no open row
	// matched the id.
	Resolve(ctx context.Context, id uuid.UUID, resolution string, resolvedAt time.Time) (bool, error)
}
