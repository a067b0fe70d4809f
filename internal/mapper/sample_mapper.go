package mapper

import (
	"candidate-router/internal/entity"
	"candidate-router/internal/model"
)

type SampleMapper struct{}

func NewSampleMapper() *SampleMapper {
	return &SampleMapper{}
}

func (m *SampleMapper) PerformanceToEntity(mdl *model.PerformanceSample) *entity.PerformanceSample {
	if mdl == nil {
		return nil
	}
	return &entity.PerformanceSample{
		Id:             mdl.Id,
		System:         entity.System(mdl.System),
		Success:        mdl.Success,
		Errored:        mdl.Errored,
		Confidence:     mdl.Confidence,
		ResponseTimeMs: mdl.ResponseTimeMs,
		CandidateId:    mdl.CandidateId,
		MessageId:      mdl.MessageId,
		Intent:         mdl.Intent,
		RecordedAt:     mdl.RecordedAt,
	}
}

func (m *SampleMapper) PerformanceToModel(s *entity.PerformanceSample) *model.PerformanceSample {
	if s == nil {
		return nil
	}
	return &model.PerformanceSample{
		Id:             s.Id,
		System:         string(s.System),
		Success:        s.Success,
		Errored:        s.Errored,
		Confidence:     s.Confidence,
		ResponseTimeMs: s.ResponseTimeMs,
		CandidateId:    s.CandidateId,
		MessageId:      s.MessageId,
		Intent:         s.Intent,
		RecordedAt:     s.RecordedAt,
	}
}

func (m *SampleMapper) ComparisonToEntity(mdl *model.ABComparisonSample) *entity.ABComparisonSample {
	if mdl == nil {
		return nil
	}
	return &entity.ABComparisonSample{
		Id:               mdl.Id,
		MessageId:        mdl.MessageId,
		CandidateId:      mdl.CandidateId,
		RoutedTo:         entity.System(mdl.RoutedTo),
		NewSuccess:       mdl.NewSuccess,
		NewConfidence:    mdl.NewConfidence,
		LegacySuccess:    mdl.LegacySuccess,
		LegacyConfidence: mdl.LegacyConfidence,
		RecordedAt:       mdl.RecordedAt,
	}
}

func (m *SampleMapper) ComparisonToModel(s *entity.ABComparisonSample) *model.ABComparisonSample {
	if s == nil {
		return nil
	}
	return &model.ABComparisonSample{
		Id:               s.Id,
		MessageId:        s.MessageId,
		CandidateId:      s.CandidateId,
		RoutedTo:         string(s.RoutedTo),
		NewSuccess:       s.NewSuccess,
		NewConfidence:    s.NewConfidence,
		LegacySuccess:    s.LegacySuccess,
		LegacyConfidence: s.LegacyConfidence,
		RecordedAt:       s.RecordedAt,
	}
}

func (m *SampleMapper) ComparisonsToEntities(models []*model.ABComparisonSample) []*entity.ABComparisonSample {
	entities := make([]*entity.ABComparisonSample, 0, len(models))
	for _, mdl := range models {
		entities = append(entities, m.ComparisonToEntity(mdl))
	}
	return entities
}
