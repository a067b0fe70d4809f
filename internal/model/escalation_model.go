package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Escalation struct {
	Id                  uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CandidateId         string         `gorm:"type:varchar(128);not null;uniqueIndex:idx_escalations_open_message,priority:1"`
	TriggeringMessageId string         `gorm:"type:varchar(128);not null;uniqueIndex:idx_escalations_open_message,priority:2"`
	Priority            string         `gorm:"type:varchar(20);not null"` // urgent, normal, low
	Department          string         `gorm:"type:varchar(50);not null"`
	Status              string         `gorm:"type:varchar(20);not null;default:'open';index"`
	Resolution          *string        `gorm:"type:text"`
	Reason              string         `gorm:"type:text"`
	Intent              string         `gorm:"type:varchar(50)"`
	Context             datatypes.JSON `gorm:"type:jsonb"`
	OpenSlot            *int           `gorm:"uniqueIndex:idx_escalations_open_message,priority:3"`
	CreatedAt           time.Time      `gorm:"not null;index"`
	ResolvedAt          *time.Time
}

func (Escalation) TableName() string {
	return "escalations"
}

// EscalationOpenSlot is the open_slot value of an open escalation. Resolved
// rows hold NULL, which the unique index on (candidate_id,
// triggering_message_id, open_slot) never compares as equal.
const EscalationOpenSlot = 1
