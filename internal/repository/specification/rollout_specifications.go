package specification

import (
	"time"

	"gorm.io/gorm"
)

type OpenPhase struct{}

func (s OpenPhase) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("ended_at IS NULL")
}

type PhaseByName struct {
	Name string
}

func (s PhaseByName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name = ?", s.Name)
}

type SamplesBySystem struct {
	System string
}

func (s SamplesBySystem) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("system = ?", s.System)
}

func SamplesRecordedBetween(from time.Time, to *time.Time) Specification {
	return TimeWindow{Field: "recorded_at", From: from, To: to}
}
