package specification

import (
	"time"

	"gorm.io/gorm"
)

type EscalationByCandidate struct {
	CandidateID string
}

func (s EscalationByCandidate) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("candidate_id = ?", s.CandidateID)
}

type EscalationByMessage struct {
	CandidateID string
	MessageID   string
}

func (s EscalationByMessage) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("candidate_id = ? AND triggering_message_id = ?", s.CandidateID, s.MessageID)
}

type OpenEscalations struct{}

func (s OpenEscalations) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", "open")
}

func EscalationsCreatedBetween(from time.Time, to *time.Time) Specification {
	return TimeWindow{Field: "created_at", From: from, To: to}
}
