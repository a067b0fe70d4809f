package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PhaseOpenSlot is the only value open_slot takes. The unique index on it
// allows a single open phase; closed phases hold NULL.
const PhaseOpenSlot = 1

type MigrationPhase struct {
	Id                    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name                  string    `gorm:"type:varchar(30);not null;index"`
	RolloutPercentage     int       `gorm:"not null"`
	StartedAt             time.Time `gorm:"not null;index"`
	EndedAt               *time.Time
	SuccessRate           *float64
	ErrorRate             *float64
	ConfidenceImprovement *float64
	EscalationRate        *float64
	SampleCount           int            `gorm:"default:0"`
	AutoAdvanced          bool           `gorm:"default:false"`
	Notes                 string         `gorm:"type:text"`
	Metrics               datatypes.JSON `gorm:"type:jsonb"`
	OpenSlot              *int           `gorm:"uniqueIndex"`
}

func (MigrationPhase) TableName() string {
	return "migration_phases"
}
