package service

import (
	"context"

	"candidate-router/internal/dto"
	"candidate-router/internal/entity"
	"candidate-router/pkg/escalation"
)

type IEscalationService interface {
	ListOpen(ctx context.Context, candidateId string) ([]*dto.EscalationResponse, error)
	Resolve(ctx context.Context, id string, req *dto.ResolveEscalationRequest) (*dto.EscalationResponse, error)
}

type escalationService struct {
	gate *escalation.Gate
}

func NewEscalationService(gate *escalation.Gate) IEscalationService {
	return &escalationService{gate: gate}
}

func (s *escalationService) ListOpen(ctx context.Context, candidateId string) ([]*dto.EscalationResponse, error) {
	list, err := s.gate.ListOpen(ctx, candidateId)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.EscalationResponse, 0, len(list))
	for _, e := range list {
		res = append(res, escalationToDTO(e))
	}
	return res, nil
}

func (s *escalationService) Resolve(ctx context.Context, id string, req *dto.ResolveEscalationRequest) (*dto.EscalationResponse, error) {
	e, err := s.gate.Resolve(ctx, id, req.Resolution)
	if err != nil {
		return nil, err
	}
	return escalationToDTO(e), nil
}

func escalationToDTO(e *entity.Escalation) *dto.EscalationResponse {
	return &dto.EscalationResponse{
		Id:                  e.Id,
		CandidateId:         e.CandidateId,
		TriggeringMessageId: e.TriggeringMessageId,
		Priority:            string(e.Priority),
		Department:          e.Department,
		Status:              string(e.Status),
		Reason:              e.Reason,
		Intent:              e.Intent,
		Resolution:          e.Resolution,
		Context:             e.Context,
		CreatedAt:           e.CreatedAt,
		ResolvedAt:          e.ResolvedAt,
	}
}
