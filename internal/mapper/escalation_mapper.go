package mapper

import (
	"encoding/json"

	"candidate-router/internal/entity"
	"candidate-router/internal/model"

	"gorm.io/datatypes"
)

type EscalationMapper struct{}

func NewEscalationMapper() *EscalationMapper {
	return &EscalationMapper{}
}

func (m *EscalationMapper) ToEntity(mdl *model.Escalation) *entity.Escalation {
	if mdl == nil {
		return nil
	}
	var ctx map[string]interface{}
	if len(mdl.Context) > 0 {
		_ = json.Unmarshal(mdl.Context, &ctx)
	}
	return &entity.Escalation{
		Id:                  mdl.Id,
		CandidateId:         mdl.CandidateId,
		TriggeringMessageId: mdl.TriggeringMessageId,
		Priority:            entity.EscalationPriority(mdl.Priority),
		Department:          mdl.Department,
		Status:              entity.EscalationStatus(mdl.Status),
		Resolution:          mdl.Resolution,
		Reason:              mdl.Reason,
		Intent:              mdl.Intent,
		Context:             ctx,
		CreatedAt:           mdl.CreatedAt,
		ResolvedAt:          mdl.ResolvedAt,
	}
}

// ToModel derives open_slot from the status so the uniqueness rule only
// applies to open rows.
func (m *EscalationMapper) ToModel(e *entity.Escalation) *model.Escalation {
	if e == nil {
		return nil
	}
	var ctx datatypes.JSON
	if e.Context != nil {
		if b, err := json.Marshal(e.Context); err == nil {
			ctx = datatypes.JSON(b)
		}
	}
	var openSlot *int
	if e.Status == entity.EscalationStatusOpen {
		slot := model.EscalationOpenSlot
		openSlot = &slot
	}
	return &model.Escalation{
		Id:                  e.Id,
		CandidateId:         e.CandidateId,
		TriggeringMessageId: e.TriggeringMessageId,
		Priority:            string(e.Priority),
		Department:          e.Department,
		Status:              string(e.Status),
		Resolution:          e.Resolution,
		Reason:              e.Reason,
		Intent:              e.Intent,
		Context:             ctx,
		OpenSlot:            openSlot,
		CreatedAt:           e.CreatedAt,
		ResolvedAt:          e.ResolvedAt,
	}
}

func (m *EscalationMapper) ToEntities(models []*model.Escalation) []*entity.Escalation {
	entities := make([]*entity.Escalation, 0, len(models))
	for _, mdl := range models {
		entities = append(entities, m.ToEntity(mdl))
	}
	return entities
}
