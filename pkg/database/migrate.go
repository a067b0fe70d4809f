package database

import (
	"candidate-router/internal/model"

	"gorm.io/gorm"
)

// Models lists every table owned by this service.
func Models() []interface{} {
	return []interface{}{
		&model.MigrationPhase{},
		&model.PerformanceSample{},
		&model.ABComparisonSample{},
		&model.Escalation{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
