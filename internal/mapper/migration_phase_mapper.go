package mapper

import (
	"encoding/json"

	"candidate-router/internal/entity"
	"candidate-router/internal/model"

	"gorm.io/datatypes"
)

type MigrationPhaseMapper struct{}

func NewMigrationPhaseMapper() *MigrationPhaseMapper {
	return &MigrationPhaseMapper{}
}

func (m *MigrationPhaseMapper) ToEntity(mdl *model.MigrationPhase) *entity.MigrationPhase {
	if mdl == nil {
		return nil
	}
	var metrics *entity.PhaseMetrics
	if len(mdl.Metrics) > 0 {
		var pm entity.PhaseMetrics
		if err := json.Unmarshal(mdl.Metrics, &pm); err == nil {
			metrics = &pm
		}
	}
	return &entity.MigrationPhase{
		Id:                    mdl.Id,
		Name:                  mdl.Name,
		RolloutPercentage:     mdl.RolloutPercentage,
		StartedAt:             mdl.StartedAt,
		EndedAt:               mdl.EndedAt,
		SuccessRate:           mdl.SuccessRate,
		ErrorRate:             mdl.ErrorRate,
		ConfidenceImprovement: mdl.ConfidenceImprovement,
		EscalationRate:        mdl.EscalationRate,
		SampleCount:           mdl.SampleCount,
		AutoAdvanced:          mdl.AutoAdvanced,
		Notes:                 mdl.Notes,
		Metrics:               metrics,
	}
}

func (m *MigrationPhaseMapper) ToModel(p *entity.MigrationPhase) *model.MigrationPhase {
	if p == nil {
		return nil
	}
	var openSlot *int
	if p.EndedAt == nil {
		slot := model.PhaseOpenSlot
		openSlot = &slot
	}
	return &model.MigrationPhase{
		Id:                    p.Id,
		Name:                  p.Name,
		RolloutPercentage:     p.RolloutPercentage,
		StartedAt:             p.StartedAt,
		EndedAt:               p.EndedAt,
		SuccessRate:           p.SuccessRate,
		ErrorRate:             p.ErrorRate,
		ConfidenceImprovement: p.ConfidenceImprovement,
		EscalationRate:        p.EscalationRate,
		SampleCount:           p.SampleCount,
		AutoAdvanced:          p.AutoAdvanced,
		Notes:                 p.Notes,
		Metrics:               m.MetricsToJSON(p.Metrics),
		OpenSlot:              openSlot,
	}
}

func (m *MigrationPhaseMapper) MetricsToJSON(metrics *entity.PhaseMetrics) datatypes.JSON {
	if metrics == nil {
		return nil
	}
	b, err := json.Marshal(metrics)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

func (m *MigrationPhaseMapper) ToEntities(models []*model.MigrationPhase) []*entity.MigrationPhase {
	entities := make([]*entity.MigrationPhase, 0, len(models))
	for _, mdl := range models {
		entities = append(entities, m.ToEntity(mdl))
	}
	return entities
}
