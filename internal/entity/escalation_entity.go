package entity

import (
	"time"

	"github.com/google/uuid"
)

type EscalationPriority string

const (
	EscalationPriorityUrgent EscalationPriority = "urgent"
	EscalationPriorityNormal EscalationPriority = "normal"
	EscalationPriorityLow    EscalationPriority = "low"
)

type EscalationStatus string

const (
	EscalationStatusOpen     EscalationStatus = "open"
	EscalationStatusResolved EscalationStatus = "resolved"
)

// Escalation is a case handed to a human admin. At most one open escalation
// exists per (CandidateId, TriggeringMessageId).
type Escalation struct {
	Id                  uuid.UUID
	CandidateId         string
	TriggeringMessageId string
	Priority            EscalationPriority
	Department          string
	Status              EscalationStatus
	Resolution          *string
	Reason              string
	Intent              string
	Context             map[string]interface{} // urgency, triggers, response source
	CreatedAt           time.Time
	ResolvedAt          *time.Time
}

func (e *Escalation) IsOpen() bool {
	return e.Status == EscalationStatusOpen
}
