package contract

import (
	"context"

	"candidate-router/internal/entity"
	"candidate-router/internal/repository/specification"

	"github.com/google/uuid"
)

// MigrationPhaseRepository is the rollout log. Insert returns
// gorm.ErrDuplicatedKey when another phase is already open.
type MigrationPhaseRepository interface {
	FindOpen(ctx context.Context) (*entity.MigrationPhase, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MigrationPhase, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MigrationPhase, error)
	Insert(ctx context.Context, phase *entity.MigrationPhase) error
	// Close reports false when the phase was not open.
	Close(ctx context.Context, id uuid.UUID, closure entity.PhaseClosure) (bool, error)
}
