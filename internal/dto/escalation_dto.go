package dto

import (
	"time"

	"github.com/google/uuid"
)

type ResolveEscalationRequest struct {
	Resolution string `json:"resolution" validate:"required,max=2000"`
}

type EscalationResponse struct {
	Id                  uuid.UUID              `json:"id"`
	CandidateId         string                 `json:"candidate_id"`
	TriggeringMessageId string                 `json:"triggering_message_id"`
	Priority            string                 `json:"priority"`
	Department          string                 `json:"department"`
	Status              string                 `json:"status"`
	Reason              string                 `json:"reason"`
	Intent              string                 `json:"intent"`
	Resolution          *string                `json:"resolution"`
	Context             map[string]interface{} `json:"context,omitempty"`
	CreatedAt           time.Time              `json:"created_at"`
	ResolvedAt          *time.Time             `json:"resolved_at"`
}
