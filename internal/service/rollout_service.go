package service

import (
	"context"

	"candidate-router/internal/dto"
	"candidate-router/internal/pkg/logger"
	"candidate-router/pkg/rollout"
)

type IRolloutService interface {
	GetStatus(ctx context.Context) (*rollout.MigrationStatus, error)
	ForceAdvance(ctx context.Context, req *dto.ForceAdvanceRequest) (*rollout.TransitionResult, error)
	ForceRollback(ctx context.Context, req *dto.ForceRollbackRequest) (*rollout.TransitionResult, error)
	UpdateConfig(ctx context.Context, req *dto.UpdateRolloutConfigRequest) (*rollout.MigrationStatus, error)
	CheckNow(ctx context.Context) (*rollout.CheckResult, error)
}

type rolloutService struct {
	controller *rollout.Controller
	logger     logger.ILogger
}

func NewRolloutService(controller *rollout.Controller, logger logger.ILogger) IRolloutService {
	return &rolloutService{
		controller: controller,
		logger:     logger,
	}
}

func (s *rolloutService) GetStatus(ctx context.Context) (*rollout.MigrationStatus, error) {
	return s.controller.GetMigrationStatus(ctx)
}

func (s *rolloutService) ForceAdvance(ctx context.Context, req *dto.ForceAdvanceRequest) (*rollout.TransitionResult, error) {
	s.logger.Info("ADMIN", "Force advance requested", map[string]interface{}{"note": req.Note})
	return s.controller.ForceAdvance(ctx, req.Note)
}

func (s *rolloutService) ForceRollback(ctx context.Context, req *dto.ForceRollbackRequest) (*rollout.TransitionResult, error) {
	s.logger.Warn("ADMIN", "Rollback requested", map[string]interface{}{"reason": req.Reason})
	return s.controller.ForceRollback(ctx, req.Reason)
}

func (s *rolloutService) UpdateConfig(ctx context.Context, req *dto.UpdateRolloutConfigRequest) (*rollout.MigrationStatus, error) {
	return s.controller.UpdateRolloutConfig(ctx, rollout.ConfigUpdate{
		AutoAdvance:       req.AutoAdvance,
		MinSuccessRate:    req.MinSuccessRate,
		MaxErrorRate:      req.MaxErrorRate,
		MinConfidenceGain: req.MinConfidenceGain,
		MinSamples:        req.MinSamples,
		SuccessPolicy:     req.SuccessPolicy,
		RolloutPercentage: req.RolloutPercentage,
		Note:              req.Note,
	})
}

// CheckNow runs the auto-advance evaluation outside the schedule.
func (s *rolloutService) CheckNow(ctx context.Context) (*rollout.CheckResult, error) {
	return s.controller.CheckAutoAdvance(ctx)
}
