package events

import (
	"time"

	"candidate-router/internal/entity"
)

const (
	TypePhaseStarted      = "PHASE_STARTED"
	TypePhaseAdvanced     = "PHASE_ADVANCED"
	TypePhaseRolledBack   = "PHASE_ROLLED_BACK"
	TypeEscalationCreated = "ESCALATION_CREATED"
)

func phaseData(phase *entity.MigrationPhase) map[string]interface{} {
	return map[string]interface{}{
		"phase_id":           phase.Id.String(),
		"phase":              phase.Name,
		"rollout_percentage": phase.RolloutPercentage,
		"started_at":         phase.StartedAt,
	}
}

func NewPhaseStarted(phase *entity.MigrationPhase) BaseEvent {
	return BaseEvent{Type: TypePhaseStarted, Data: phaseData(phase), OccurredAt: time.Now()}
}

// NewPhaseAdvanced describes a move from one phase to the next. from may be
// nil when the log had no open phase.
func NewPhaseAdvanced(from, to *entity.MigrationPhase, auto bool) BaseEvent {
	data := phaseData(to)
	data["auto_advanced"] = auto
	if from != nil {
		data["previous_phase"] = from.Name
		data["previous_percentage"] = from.RolloutPercentage
	}
	return BaseEvent{Type: TypePhaseAdvanced, Data: data, OccurredAt: time.Now()}
}

func NewPhaseRolledBack(from, to *entity.MigrationPhase, reason string) BaseEvent {
	data := phaseData(to)
	data["reason"] = reason
	if from != nil {
		data["previous_phase"] = from.Name
		data["previous_percentage"] = from.RolloutPercentage
	}
	return BaseEvent{Type: TypePhaseRolledBack, Data: data, OccurredAt: time.Now()}
}

func NewEscalationCreated(e *entity.Escalation) BaseEvent {
	return BaseEvent{
		Type: TypeEscalationCreated,
		Data: map[string]interface{}{
			"escalation_id": e.Id.String(),
			"candidate_id":  e.CandidateId,
			"message_id":    e.TriggeringMessageId,
			"priority":      string(e.Priority),
			"department":    e.Department,
			"reason":        e.Reason,
		},
		OccurredAt: time.Now(),
	}
}
