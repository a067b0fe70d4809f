package model

import (
	"time"

	"github.com/google/uuid"
)

type PerformanceSample struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	System         string    `gorm:"type:varchar(10);not null;index:idx_performance_samples_system_recorded"`
	Success        bool      `gorm:"not null"`
	Errored        bool      `gorm:"not null;default:false"`
	Confidence     float64   `gorm:"not null"`
	ResponseTimeMs int64     `gorm:"not null"`
	CandidateId    string    `gorm:"type:varchar(128)"`
	MessageId      string    `gorm:"type:varchar(128)"`
	Intent         string    `gorm:"type:varchar(50)"`
	RecordedAt     time.Time `gorm:"not null;index:idx_performance_samples_system_recorded"`
}

func (PerformanceSample) TableName() string {
	return "performance_samples"
}

type ABComparisonSample struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey"`
	MessageId        string    `gorm:"type:varchar(128);not null;index"`
	CandidateId      string    `gorm:"type:varchar(128);not null"`
	RoutedTo         string    `gorm:"type:varchar(10);not null"`
	NewSuccess       bool
	NewConfidence    float64
	LegacySuccess    bool
	LegacyConfidence float64
	RecordedAt       time.Time `gorm:"not null;index"`
}

func (ABComparisonSample) TableName() string {
	return "ab_comparison_samples"
}
