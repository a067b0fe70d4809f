package rollout

import (
	"fmt"

	"candidate-router/internal/config"
)

// SuccessPolicy selects which success rate drives advancement.
type SuccessPolicy string

const (
	// PolicyNew uses the new system's own success and error rates.
	PolicyNew SuccessPolicy = "new"
	// PolicyMax reports the better of the two systems' success rates, with
	// the error rate of that same system.
	PolicyMax SuccessPolicy = "max"
)

// Thresholds gate automatic advancement.
type Thresholds struct {
	MinSuccessRate    float64 `json:"min_success_rate"`
	MaxErrorRate      float64 `json:"max_error_rate"`
	MinConfidenceGain float64 `json:"min_confidence_improvement"`
	MinSamples        int     `json:"min_samples"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MinSuccessRate:    0.95,
		MaxErrorRate:      0.02,
		MinConfidenceGain: 0.05,
		MinSamples:        100,
	}
}

// Met reports whether metrics clear every rate threshold. The sample floor is
// checked separately.
func (t Thresholds) Met(successRate, errorRate, confidenceImprovement float64) bool {
	return successRate >= t.MinSuccessRate &&
		errorRate <= t.MaxErrorRate &&
		confidenceImprovement >= t.MinConfidenceGain
}

func (t Thresholds) validate() error {
	if t.MinSuccessRate < 0 || t.MinSuccessRate > 1 {
		return fmt.Errorf("%w: min success rate %v out of [0,1]", ErrInvalidConfig, t.MinSuccessRate)
	}
	if t.MaxErrorRate < 0 || t.MaxErrorRate > 1 {
		return fmt.Errorf("%w: max error rate %v out of [0,1]", ErrInvalidConfig, t.MaxErrorRate)
	}
	if t.MinConfidenceGain < -1 || t.MinConfidenceGain > 1 {
		return fmt.Errorf("%w: min confidence improvement %v out of [-1,1]", ErrInvalidConfig, t.MinConfidenceGain)
	}
	if t.MinSamples < 0 {
		return fmt.Errorf("%w: min samples %d is negative", ErrInvalidConfig, t.MinSamples)
	}
	return nil
}

// Settings are the tunable parts of the controller.
type Settings struct {
	AutoAdvance bool          `json:"auto_advance"`
	Thresholds  Thresholds    `json:"thresholds"`
	Policy      SuccessPolicy `json:"success_policy"`
}

func DefaultSettings() Settings {
	return Settings{AutoAdvance: true, Thresholds: DefaultThresholds(), Policy: PolicyNew}
}

// SettingsFromConfig reads the ROLLOUT_* environment section.
func SettingsFromConfig(cfg config.RolloutConfig) (Settings, error) {
	policy, err := parsePolicy(cfg.SuccessPolicy)
	if err != nil {
		return Settings{}, err
	}
	s := Settings{
		AutoAdvance: cfg.AutoAdvance,
		Thresholds: Thresholds{
			MinSuccessRate:    cfg.MinSuccessRate,
			MaxErrorRate:      cfg.MaxErrorRate,
			MinConfidenceGain: cfg.MinConfidenceGain,
			MinSamples:        cfg.MinSamples,
		},
		Policy: policy,
	}
	if err := s.Thresholds.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func parsePolicy(s string) (SuccessPolicy, error) {
	switch SuccessPolicy(s) {
	case "", PolicyNew:
		return PolicyNew, nil
	case PolicyMax:
		return PolicyMax, nil
	default:
		return "", fmt.Errorf("%w: unknown success policy %q", ErrInvalidConfig, s)
	}
}
