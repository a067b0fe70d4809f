package dto

import (
	"time"

	"github.com/google/uuid"
)

type CandidateDTO struct {
	Id            string     `json:"id" validate:"required,max=128"`
	DisplayName   string     `json:"display_name" validate:"max=128"`
	Status        string     `json:"status" validate:"omitempty,oneof=pending active inactive unknown"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	LastShiftAt   *time.Time `json:"last_shift_at,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
}

type HandleMessageRequest struct {
	MessageId string       `json:"message_id" validate:"required,max=128"`
	Message   string       `json:"message" validate:"max=4000"`
	Candidate CandidateDTO `json:"candidate" validate:"required"`
}

type EscalationSummaryDTO struct {
	Id         uuid.UUID `json:"id"`
	Priority   string    `json:"priority"`
	Department string    `json:"department"`
	Created    bool      `json:"created"`
}

type HandleMessageResponse struct {
	MessageId              string                `json:"message_id"`
	System                 string                `json:"system"`
	Reply                  string                `json:"reply"`
	Source                 string                `json:"source"`
	Intent                 string                `json:"intent,omitempty"`
	Confidence             float64               `json:"confidence"`
	UsesRealData           bool                  `json:"uses_real_data"`
	RequiresAdminAttention bool                  `json:"requires_admin_attention"`
	Escalation             *EscalationSummaryDTO `json:"escalation,omitempty"`
}

// SampleMessage is the payload carried on the sample topic. Exactly one of
// Performance and Comparison is set.
type SampleMessage struct {
	Performance *PerformanceSampleDTO `json:"performance,omitempty"`
	Comparison  *ComparisonSampleDTO  `json:"comparison,omitempty"`
}

type PerformanceSampleDTO struct {
	System         string    `json:"system"`
	Success        bool      `json:"success"`
	Errored        bool      `json:"errored"`
	Confidence     float64   `json:"confidence"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	CandidateId    string    `json:"candidate_id"`
	MessageId      string    `json:"message_id"`
	Intent         string    `json:"intent,omitempty"`
	RecordedAt     time.Time `json:"recorded_at"`
}

type ComparisonSampleDTO struct {
	MessageId        string    `json:"message_id"`
	CandidateId      string    `json:"candidate_id"`
	RoutedTo         string    `json:"routed_to"`
	NewSuccess       bool      `json:"new_success"`
	NewConfidence    float64   `json:"new_confidence"`
	LegacySuccess    bool      `json:"legacy_success"`
	LegacyConfidence float64   `json:"legacy_confidence"`
	RecordedAt       time.Time `json:"recorded_at"`
}
