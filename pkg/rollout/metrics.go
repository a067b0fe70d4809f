package rollout

import (
	"time"

	"candidate-router/internal/entity"
)

func systemMetrics(agg entity.SystemAggregate) entity.SystemMetrics {
	m := entity.SystemMetrics{
		Samples:       int(agg.Total),
		Successes:     int(agg.Successes),
		Errors:        int(agg.Errors),
		AvgConfidence: agg.AvgConfidence,
	}
	if agg.Total > 0 {
		m.SuccessRate = float64(agg.Successes) / float64(agg.Total)
		m.ErrorRate = float64(agg.Errors) / float64(agg.Total)
	}
	return m
}

// buildMetrics folds per-system aggregates into phase metrics.
func buildMetrics(aggs []entity.SystemAggregate, escalations int64, policy SuccessPolicy, now time.Time) *entity.PhaseMetrics {
	pm := &entity.PhaseMetrics{ComputedAt: now, Escalations: int(escalations)}
	for _, agg := range aggs {
		switch agg.System {
		case entity.SystemNew:
			pm.New = systemMetrics(agg)
		case entity.SystemLegacy:
			pm.Legacy = systemMetrics(agg)
		}
	}

	pm.SampleCount = pm.New.Samples + pm.Legacy.Samples
	if pm.SampleCount > 0 {
		pm.EscalationRate = float64(escalations) / float64(pm.SampleCount)
	}
	if pm.New.Samples > 0 && pm.Legacy.Samples > 0 {
		pm.ConfidenceImprovement = pm.New.AvgConfidence - pm.Legacy.AvgConfidence
	}

	pm.SuccessRate, pm.ErrorRate = pm.New.SuccessRate, pm.New.ErrorRate
	if policy == PolicyMax && pm.Legacy.Samples > 0 && pm.Legacy.SuccessRate > pm.New.SuccessRate {
		pm.SuccessRate, pm.ErrorRate = pm.Legacy.SuccessRate, pm.Legacy.ErrorRate
	}
	return pm
}
