package response

import (
	"fmt"

	"candidate-router/internal/entity"
	"candidate-router/internal/pkg/logger"
	"candidate-router/pkg/intent"
	"candidate-router/pkg/livefacts"
)

type Source string

const (
	SourceRealData         Source = "real_data"
	SourceStandardTemplate Source = "standard_template"
	SourcePendingTemplate  Source = "pending_template"
	SourceFallback         Source = "fallback"
	SourceError            Source = "error"
)

const (
	confidenceRealData = 0.95
	confidencePending  = 0.85
	confidenceNoData   = 0.75
	confidenceFallback = 0.65
	confidenceError    = 1.0
)

const (
	fallbackText = "Thanks for your message, %s. I want to make sure you get the right answer, so let me have our team confirm and get back to you."
	errorText    = "Sorry, something went wrong on our side. A member of our team has been notified and will get back to you."
)

// Result is created once per message and discarded after the reply is sent.
type Result struct {
	Content                string    `json:"content"`
	Source                 Source    `json:"source"`
	Confidence             float64   `json:"confidence"`
	UsesRealData           bool      `json:"uses_real_data"`
	RequiresAdminAttention bool      `json:"requires_admin_attention"`
	Intent                 intent.ID `json:"intent"`
}

type Synthesizer struct {
	standard       *Registry
	pending        *Registry
	genericPending TemplateRenderer
	logger         logger.ILogger
}

func NewSynthesizer(standard, pending *Registry, genericPending TemplateRenderer, logger logger.ILogger) *Synthesizer {
	return &Synthesizer{
		standard:       standard,
		pending:        pending,
		genericPending: genericPending,
		logger:         logger,
	}
}

// NewDefaultSynthesizer wires the built-in template registries.
func NewDefaultSynthesizer(logger logger.ILogger) *Synthesizer {
	pending, generic := DefaultPendingRegistry()
	return NewSynthesizer(DefaultRegistry(), pending, generic, logger)
}

// Synthesize picks the first matching branch: pending template, verified
// template, "no data" template, fallback. Any failure yields the error
// template. A response that needed real data but did not use any is always
// flagged for an admin.
func (s *Synthesizer) Synthesize(cls intent.Result, candidate entity.CandidateContext, facts *livefacts.Facts) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = s.errorResult(cls, candidate, fmt.Errorf("panic: %v", r))
		}
		if cls.RequiresRealData && !result.UsesRealData {
			result.RequiresAdminAttention = true
		}
	}()

	res, err := s.synthesize(cls, candidate, facts)
	if err != nil {
		return s.errorResult(cls, candidate, err)
	}
	return res
}

func (s *Synthesizer) synthesize(cls intent.Result, candidate entity.CandidateContext, facts *livefacts.Facts) (Result, error) {
	id := cls.PrimaryIntent

	if candidate.Status == entity.CandidateStatusPending {
		renderer, ok := s.pending.Lookup(id)
		if !ok {
			renderer = s.genericPending
		}
		content, err := renderer.RenderUnverified(candidate)
		if err != nil {
			return Result{}, err
		}
		return Result{
			Content:                content,
			Source:                 SourcePendingTemplate,
			Confidence:             confidencePending,
			RequiresAdminAttention: renderer.RequiresEscalation(),
			Intent:                 id,
		}, nil
	}

	renderer, ok := s.standard.Lookup(id)
	if !ok {
		return Result{
			Content:                fmt.Sprintf(fallbackText, newTemplateData(candidate).Name),
			Source:                 SourceFallback,
			Confidence:             confidenceFallback,
			RequiresAdminAttention: true,
			Intent:                 id,
		}, nil
	}

	if facts != nil {
		rendered, ok, err := renderer.RenderVerified(candidate, facts)
		if err != nil {
			return Result{}, err
		}
		if ok {
			return Result{
				Content:                rendered.Content,
				Source:                 SourceRealData,
				Confidence:             confidenceRealData,
				UsesRealData:           true,
				RequiresAdminAttention: rendered.Empty,
				Intent:                 id,
			}, nil
		}
	}

	content, err := renderer.RenderUnverified(candidate)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Content:                content,
		Source:                 SourceStandardTemplate,
		Confidence:             confidenceNoData,
		RequiresAdminAttention: renderer.RequiresEscalation(),
		Intent:                 id,
	}, nil
}

func (s *Synthesizer) errorResult(cls intent.Result, candidate entity.CandidateContext, err error) Result {
	s.logger.Error("SYNTH", "Response synthesis failed", map[string]interface{}{
		"candidate_id": candidate.Id,
		"intent":       cls.PrimaryIntent,
		"error":        err.Error(),
	})
	return Result{
		Content:                errorText,
		Source:                 SourceError,
		Confidence:             confidenceError,
		RequiresAdminAttention: true,
		Intent:                 cls.PrimaryIntent,
	}
}
