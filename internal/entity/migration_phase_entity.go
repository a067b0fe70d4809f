package entity

import (
	"time"

	"github.com/google/uuid"
)

// MigrationPhase is one row of the append-only rollout log. EndedAt == nil
// marks the currently active phase.
type MigrationPhase struct {
	Id                    uuid.UUID
	Name                  string
	RolloutPercentage     int
	StartedAt             time.Time
	EndedAt               *time.Time
	SuccessRate           *float64
	ErrorRate             *float64
	ConfidenceImprovement *float64
	EscalationRate        *float64
	SampleCount           int
	AutoAdvanced          bool
	Notes                 string
	Metrics               *PhaseMetrics // snapshot taken on close
}

func (p *MigrationPhase) IsOpen() bool {
	return p.EndedAt == nil
}

// SystemMetrics aggregates the performance samples of one system.
type SystemMetrics struct {
	Samples       int     `json:"samples"`
	Successes     int     `json:"successes"`
	Errors        int     `json:"errors"`
	SuccessRate   float64 `json:"success_rate"`
	ErrorRate     float64 `json:"error_rate"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// PhaseMetrics is computed over the samples recorded during a phase.
type PhaseMetrics struct {
	New                   SystemMetrics `json:"new"`
	Legacy                SystemMetrics `json:"legacy"`
	SuccessRate           float64       `json:"success_rate"`
	ErrorRate             float64       `json:"error_rate"`
	ConfidenceImprovement float64       `json:"confidence_improvement"`
	EscalationRate        float64       `json:"escalation_rate"`
	Escalations           int           `json:"escalations"`
	SampleCount           int           `json:"sample_count"`
	ComputedAt            time.Time     `json:"computed_at"`
}

// PhaseClosure carries what is written to a phase when it is closed.
type PhaseClosure struct {
	EndedAt      time.Time
	Metrics      *PhaseMetrics
	AutoAdvanced bool
	Notes        string
}
