package unitofwork

import (
	"context"

	"candidate-router/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	EscalationRepository() contract.EscalationRepository
	MigrationPhaseRepository() contract.MigrationPhaseRepository
	PerformanceSampleRepository() contract.PerformanceSampleRepository
	ABComparisonRepository() contract.ABComparisonRepository
}
