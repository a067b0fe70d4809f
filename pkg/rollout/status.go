package rollout

import (
	"context"
	"fmt"

	"candidate-router/internal/entity"
	"candidate-router/pkg/events"
)

// MigrationStatus is the admin view of the rollout.
type MigrationStatus struct {
	CurrentPhase   *entity.MigrationPhase   `json:"current_phase"`
	Metrics        *entity.PhaseMetrics     `json:"metrics,omitempty"`
	MetricsError   string                   `json:"metrics_error,omitempty"`
	NextPhase      *PhaseSpec               `json:"next_phase,omitempty"`
	ReadyToAdvance bool                     `json:"ready_to_advance"`
	Settings       Settings                 `json:"settings"`
	History        []*entity.MigrationPhase `json:"history"`
}

func (c *Controller) GetMigrationStatus(ctx context.Context) (*MigrationStatus, error) {
	history, err := c.uowFactory.NewUnitOfWork(ctx).MigrationPhaseRepository().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load phase history: %w", err)
	}

	status := &MigrationStatus{Settings: c.Settings(), History: history}
	for _, p := range history {
		if p.IsOpen() {
			status.CurrentPhase = p
		}
	}

	name := ""
	if status.CurrentPhase != nil {
		name = status.CurrentPhase.Name
	}
	if next, ok := Next(name); ok {
		status.NextPhase = &next
	}

	if status.CurrentPhase != nil {
		metrics, err := c.metricsFor(ctx, status.CurrentPhase)
		if err != nil {
			status.MetricsError = err.Error()
		} else {
			status.Metrics = metrics
			t := status.Settings.Thresholds
			status.ReadyToAdvance = name != PhaseRollback && status.NextPhase != nil &&
				metrics.New.Samples >= t.MinSamples &&
				t.Met(metrics.SuccessRate, metrics.ErrorRate, metrics.ConfidenceImprovement)
		}
	}
	return status, nil
}

// ConfigUpdate changes controller settings. Nil fields are left as they are.
// RolloutPercentage pins the open phase to a new percentage by replacing it
// with a same-name row.
type ConfigUpdate struct {
	AutoAdvance       *bool    `json:"auto_advance,omitempty"`
	MinSuccessRate    *float64 `json:"min_success_rate,omitempty"`
	MaxErrorRate      *float64 `json:"max_error_rate,omitempty"`
	MinConfidenceGain *float64 `json:"min_confidence_improvement,omitempty"`
	MinSamples        *int     `json:"min_samples,omitempty"`
	SuccessPolicy     *string  `json:"success_policy,omitempty"`
	RolloutPercentage *int     `json:"rollout_percentage,omitempty"`
	Note              string   `json:"note,omitempty"`
}

func (c *Controller) UpdateRolloutConfig(ctx context.Context, update ConfigUpdate) (*MigrationStatus, error) {
	c.updateMu.Lock()
	defer c.updateMu.Unlock()

	next := c.Settings()
	if update.AutoAdvance != nil {
		next.AutoAdvance = *update.AutoAdvance
	}
	if update.MinSuccessRate != nil {
		next.Thresholds.MinSuccessRate = *update.MinSuccessRate
	}
	if update.MaxErrorRate != nil {
		next.Thresholds.MaxErrorRate = *update.MaxErrorRate
	}
	if update.MinConfidenceGain != nil {
		next.Thresholds.MinConfidenceGain = *update.MinConfidenceGain
	}
	if update.MinSamples != nil {
		next.Thresholds.MinSamples = *update.MinSamples
	}
	if update.SuccessPolicy != nil {
		policy, err := parsePolicy(*update.SuccessPolicy)
		if err != nil {
			return nil, err
		}
		next.Policy = policy
	}
	if err := next.Thresholds.validate(); err != nil {
		return nil, err
	}
	if p := update.RolloutPercentage; p != nil && (*p < 0 || *p > 100) {
		return nil, fmt.Errorf("%w: percentage %d out of [0,100]", ErrInvalidConfig, *p)
	}

	if update.RolloutPercentage != nil {
		if err := c.pinPercentage(ctx, *update.RolloutPercentage, update.Note); err != nil {
			return nil, err
		}
	}

	c.settingsMu.Lock()
	c.settings = next
	c.settingsMu.Unlock()

	c.logger.Info("ROLLOUT", "Rollout configuration updated", map[string]interface{}{
		"auto_advance":   next.AutoAdvance,
		"thresholds":     next.Thresholds,
		"success_policy": next.Policy,
	})
	return c.GetMigrationStatus(ctx)
}

func (c *Controller) pinPercentage(ctx context.Context, pct int, note string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, err := c.CurrentPhase(ctx)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrNoOpenPhase
	}
	if current.RolloutPercentage == pct {
		return nil
	}

	tr, err := c.transition(ctx, current, false, entity.PhaseClosure{
		EndedAt: c.now(),
		Metrics: c.bestEffortMetrics(ctx, current),
		Notes:   forcedNote(fmt.Sprintf("percentage changed from %d to %d", current.RolloutPercentage, pct), note),
	}, PhaseSpec{Name: current.Name, Percentage: pct})
	if err != nil {
		return err
	}
	c.publish(ctx, events.NewPhaseStarted(tr.Opened))
	return nil
}
