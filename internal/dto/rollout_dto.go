package dto

type ForceAdvanceRequest struct {
	Note string `json:"note" validate:"max=500"`
}

type ForceRollbackRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type UpdateRolloutConfigRequest struct {
	AutoAdvance       *bool    `json:"auto_advance"`
	MinSuccessRate    *float64 `json:"min_success_rate" validate:"omitempty,gte=0,lte=1"`
	MaxErrorRate      *float64 `json:"max_error_rate" validate:"omitempty,gte=0,lte=1"`
	MinConfidenceGain *float64 `json:"min_confidence_improvement" validate:"omitempty,gte=-1,lte=1"`
	MinSamples        *int     `json:"min_samples" validate:"omitempty,gte=0"`
	SuccessPolicy     *string  `json:"success_policy" validate:"omitempty,oneof=new max"`
	RolloutPercentage *int     `json:"rollout_percentage" validate:"omitempty,gte=0,lte=100"`
	Note              string   `json:"note" validate:"max=500"`
}
