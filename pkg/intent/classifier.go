package intent

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"candidate-router/internal/entity"
	"candidate-router/internal/pkg/logger"
)

// ScoringConfig holds every tunable number of the classifier.
type ScoringConfig struct {
	PhraseWeight       float64
	KeywordWeight      float64
	MaxSecondary       int
	FallbackConfidence float64
	HighUrgencyScore   int

	PendingSchedulingBoost  float64
	RecentShiftPaymentBoost float64
	RecentShiftWindow       time.Duration
	NewCandidateBoost       float64
	NewCandidateWindow      time.Duration
}

func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		PhraseWeight:       0.5,
		KeywordWeight:      0.3,
		MaxSecondary:       3,
		FallbackConfidence: 0.3,
		HighUrgencyScore:   2,

		PendingSchedulingBoost:  0.2,
		RecentShiftPaymentBoost: 0.1,
		RecentShiftWindow:       14 * 24 * time.Hour,
		NewCandidateBoost:       0.1,
		NewCandidateWindow:      7 * 24 * time.Hour,
	}
}

type Classifier struct {
	table  *Table
	config ScoringConfig
	now    func() time.Time
	logger logger.ILogger
}

type Option func(*Classifier)

// WithClock fixes the clock used by time-based boosts.
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) { c.now = now }
}

func WithLogger(l logger.ILogger) Option {
	return func(c *Classifier) { c.logger = l }
}

func NewClassifier(table *Table, config ScoringConfig, opts ...Option) *Classifier {
	c := &Classifier{
		table:  table,
		config: config,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Classifier) Table() *Table {
	return c.table
}

type scored struct {
	pattern    *Pattern
	confidence float64
}

// Classify scores a message against the table. It never fails: anything that
// goes wrong degrades to the fallback intent with escalation forced on.
func (c *Classifier) Classify(message string, candidate entity.CandidateContext) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			if c.logger != nil {
				c.logger.Error("CLASSIFIER", "Classification panicked, using fallback", map[string]interface{}{
					"candidate_id": candidate.Id,
					"panic":        fmt.Sprint(r),
				})
			}
			reason := "classification failed"
			result = c.fallback(nil, 0, &reason)
		}
	}()

	normalized := Normalize(message)
	msg := newText(normalized)
	hits, escalationScore := c.matchTriggers(msg)

	if normalized == "" {
		reason := "empty message"
		return c.fallback(hits, escalationScore, &reason)
	}

	ranked := c.rank(msg, candidate)
	if len(ranked) == 0 {
		return c.fallback(hits, escalationScore, nil)
	}

	primary := ranked[0]
	confidence := c.applyBoosts(primary.pattern, primary.confidence, candidate)

	var secondary []Match
	for _, s := range ranked[1:] {
		if len(secondary) == c.config.MaxSecondary {
			break
		}
		secondary = append(secondary, Match{Intent: s.pattern.ID, Confidence: s.confidence})
	}

	res := Result{
		PrimaryIntent:     primary.pattern.ID,
		SecondaryIntents:  secondary,
		Confidence:        clamp01(confidence),
		RequiresRealData:  primary.pattern.RequiresRealData,
		EscalationScore:   escalationScore,
		Triggers:          hits,
		EscalationUrgency: c.urgency(escalationScore),
	}
	res.RequiresEscalation = escalationScore > 0 || primary.pattern.EscalationRequired
	if res.RequiresEscalation {
		reason := escalationReason(hits, primary.pattern)
		res.EscalationReason = &reason
	}
	return res
}

func (c *Classifier) rank(msg text, candidate entity.CandidateContext) []scored {
	var ranked []scored
	for i := range c.table.Patterns {
		p := &c.table.Patterns[i]
		if p.RestrictedToStatus != nil && *p.RestrictedToStatus != candidate.Status {
			continue
		}

		phraseMatches := 0
		for _, ph := range p.Phrases {
			if msg.hasPhrase(ph) {
				phraseMatches++
			}
		}
		keywordMatches := 0
		for _, kw := range p.Keywords {
			if msg.hasToken(kw) {
				keywordMatches++
			}
		}
		if phraseMatches == 0 && keywordMatches == 0 {
			continue
		}

		score := c.phraseWeight(p)*float64(phraseMatches) + c.keywordWeight(p)*float64(keywordMatches)
		confidence := math.Min(score, 1.0) * p.BaseConfidence
		if confidence <= 0 {
			continue
		}
		ranked = append(ranked, scored{pattern: p, confidence: confidence})
	}

	// Stable: equal confidences keep table declaration order
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].confidence > ranked[j].confidence
	})
	return ranked
}

func (c *Classifier) phraseWeight(p *Pattern) float64 {
	if p.PhraseWeight > 0 {
		return p.PhraseWeight
	}
	return c.config.PhraseWeight
}

func (c *Classifier) keywordWeight(p *Pattern) float64 {
	if p.KeywordWeight > 0 {
		return p.KeywordWeight
	}
	return c.config.KeywordWeight
}

func (c *Classifier) applyBoosts(p *Pattern, confidence float64, candidate entity.CandidateContext) float64 {
	now := c.now()

	if p.SchedulingRelated && candidate.Status == entity.CandidateStatusPending {
		confidence += c.config.PendingSchedulingBoost
	}
	if p.ID == PaymentInquiry && within(candidate.LastShiftAt, now, c.config.RecentShiftWindow) {
		confidence += c.config.RecentShiftPaymentBoost
	}
	if p.ID == OnboardingHelp && within(candidate.CreatedAt, now, c.config.NewCandidateWindow) {
		confidence += c.config.NewCandidateBoost
	}
	return math.Min(confidence, 1.0)
}

func (c *Classifier) matchTriggers(msg text) ([]TriggerHit, int) {
	var hits []TriggerHit
	total := 0
	for _, cat := range c.table.Triggers {
		var matched []string
		for _, ph := range cat.Phrases {
			if msg.hasPhrase(ph) {
				matched = append(matched, ph)
			}
		}
		if len(matched) > 0 {
			hits = append(hits, TriggerHit{Category: cat.Name, Phrases: matched})
			total += len(matched)
		}
	}
	return hits, total
}

func (c *Classifier) urgency(score int) Urgency {
	switch {
	case score >= c.config.HighUrgencyScore:
		return UrgencyHigh
	case score > 0:
		return UrgencyMedium
	default:
		return UrgencyNone
	}
}

func (c *Classifier) fallback(hits []TriggerHit, score int, reason *string) Result {
	if reason == nil {
		r := "no intent matched"
		if len(hits) > 0 {
			r = escalationReason(hits, nil)
		}
		reason = &r
	}
	return Result{
		PrimaryIntent:      GeneralQuestion,
		Confidence:         c.config.FallbackConfidence,
		RequiresEscalation: true,
		EscalationReason:   reason,
		EscalationUrgency:  c.urgency(score),
		EscalationScore:    score,
		Triggers:           hits,
		Fallback:           true,
	}
}

func escalationReason(hits []TriggerHit, p *Pattern) string {
	var parts []string
	for _, h := range hits {
		parts = append(parts, fmt.Sprintf("%s: %s", h.Category, strings.Join(h.Phrases, ", ")))
	}
	if p != nil && p.EscalationRequired {
		parts = append(parts, fmt.Sprintf("intent %s requires a human", p.ID))
	}
	return strings.Join(parts, "; ")
}

func within(t *time.Time, now time.Time, window time.Duration) bool {
	if t == nil {
		return false
	}
	age := now.Sub(*t)
	return age >= 0 && age <= window
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
