package response

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"candidate-router/internal/entity"
	"candidate-router/internal/pkg/logger"
	"candidate-router/pkg/intent"
	"candidate-router/pkg/livefacts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeCandidate() entity.CandidateContext {
	return entity.CandidateContext{Id: "c-1", DisplayName: "Sam", Status: entity.CandidateStatusActive}
}

func paymentClassification() intent.Result {
	return intent.Result{PrimaryIntent: intent.PaymentInquiry, Confidence: 0.9, RequiresRealData: true, EscalationUrgency: intent.UrgencyNone}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{120.5, "$120.50"},
		{300, "$300.00"},
		{1234.567, "$1,234.57"},
		{1000000, "$1,000,000.00"},
		{-5.1, "-$5.10"},
		{0.07, "$0.07"},
		{-0.001, "$0.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMoney(tt.in))
	}
}

func TestSynthesizePaymentWithoutFacts(t *testing.T) {
	s := NewDefaultSynthesizer(logger.NewNopLogger())

	res := s.Synthesize(paymentClassification(), activeCandidate(), nil)

	assert.Equal(t, SourceStandardTemplate, res.Source)
	assert.False(t, res.UsesRealData)
	assert.True(t, res.RequiresAdminAttention)
	assert.Contains(t, res.Content, "our team confirm your payment status")
}

func TestSynthesizePaymentWithFacts(t *testing.T) {
	s := NewDefaultSynthesizer(logger.NewNopLogger())
	facts := &livefacts.Facts{Earnings: &livefacts.Earnings{Available: 120.50, Pending: 0, Paid: 300}}

	res := s.Synthesize(paymentClassification(), activeCandidate(), facts)

	assert.Equal(t, SourceRealData, res.Source)
	assert.True(t, res.UsesRealData)
	assert.False(t, res.RequiresAdminAttention)
	assert.Contains(t, res.Content, "$120.50")
	assert.Contains(t, res.Content, "$300.00")
	assert.Contains(t, res.Content, "Sam")
}

func TestSynthesizeZeroEarningsIsHonest(t *testing.T) {
	s := NewDefaultSynthesizer(logger.NewNopLogger())
	facts := &livefacts.Facts{Earnings: &livefacts.Earnings{}}

	res := s.Synthesize(paymentClassification(), activeCandidate(), facts)

	assert.Equal(t, SourceRealData, res.Source)
	assert.True(t, res.RequiresAdminAttention)
	assert.Contains(t, res.Content, "no earnings recorded")
	assert.NotContains(t, res.Content, "$")
}

func TestSynthesizeFactsWithoutRelevantSectionUsesNoDataVariant(t *testing.T) {
	s := NewDefaultSynthesizer(logger.NewNopLogger())
	facts := &livefacts.Facts{UpcomingShifts: []livefacts.Shift{{Title: "Picker"}}}

	res := s.Synthesize(paymentClassification(), activeCandidate(), facts)

	assert.Equal(t, SourceStandardTemplate, res.Source)
	assert.True(t, res.RequiresAdminAttention)
}

func TestSynthesizeShiftsListsOnlyFetchedValues(t *testing.T) {
	s := NewDefaultSynthesizer(logger.NewNopLogger())
	start := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	facts := &livefacts.Facts{UpcomingShifts: []livefacts.Shift{
		{Title: "Warehouse picker", Location: "Leeds DC", StartsAt: start},
	}}
	cls := intent.Result{PrimaryIntent: intent.ShiftInquiry, RequiresRealData: true}

	res := s.Synthesize(cls, activeCandidate(), facts)

	assert.Equal(t, SourceRealData, res.Source)
	assert.False(t, res.RequiresAdminAttention)
	assert.Contains(t, res.Content, "Tue 3 Mar, 09:00")
	assert.Contains(t, res.Content, "Warehouse picker at Leeds DC")

	empty := s.Synthesize(cls, activeCandidate(), &livefacts.Facts{UpcomingShifts: []livefacts.Shift{}})
	assert.True(t, empty.RequiresAdminAttention)
	assert.Contains(t, empty.Content, "no upcoming shifts")
}

func TestSynthesizePendingCandidate(t *testing.T) {
	s := NewDefaultSynthesizer(logger.NewNopLogger())
	pending := entity.CandidateContext{Id: "c-2", DisplayName: "Ana", Status: entity.CandidateStatusPending}
	facts := &livefacts.Facts{Earnings: &livefacts.Earnings{Available: 50}}

	res := s.Synthesize(paymentClassification(), pending, facts)
	assert.Equal(t, SourcePendingTemplate, res.Source)
	assert.False(t, res.UsesRealData)
	assert.NotContains(t, res.Content, "$")
	// needed real data, did not use it
	assert.True(t, res.RequiresAdminAttention)

	generic := s.Synthesize(intent.Result{PrimaryIntent: intent.Greeting}, pending, nil)
	assert.Equal(t, SourcePendingTemplate, generic.Source)
	assert.Contains(t, generic.Content, "Ana")
	assert.False(t, generic.RequiresAdminAttention)
}

func TestSynthesizeFallbackWhenNoTemplate(t *testing.T) {
	s := NewDefaultSynthesizer(logger.NewNopLogger())

	res := s.Synthesize(intent.Result{PrimaryIntent: intent.GeneralQuestion, Confidence: 0.3, Fallback: true}, activeCandidate(), nil)

	assert.Equal(t, SourceFallback, res.Source)
	assert.True(t, res.RequiresAdminAttention)
	assert.GreaterOrEqual(t, res.Confidence, 0.6)
	assert.LessOrEqual(t, res.Confidence, 0.7)
}

type brokenRenderer struct{ panics bool }

func (b brokenRenderer) RenderVerified(c entity.CandidateContext, facts *livefacts.Facts) (Rendered, bool, error) {
	if b.panics {
		panic("template exploded")
	}
	return Rendered{}, false, errors.New("render failed")
}

func (b brokenRenderer) RenderUnverified(c entity.CandidateContext) (string, error) {
	return "", errors.New("render failed")
}

func (b brokenRenderer) RequiresEscalation() bool { return false }

func TestSynthesizeErrorTemplate(t *testing.T) {
	for _, panics := range []bool{false, true} {
		reg := NewRegistry()
		reg.Register(intent.Greeting, brokenRenderer{panics: panics})
		pending, generic := DefaultPendingRegistry()
		s := NewSynthesizer(reg, pending, generic, logger.NewNopLogger())

		res := s.Synthesize(intent.Result{PrimaryIntent: intent.Greeting}, activeCandidate(), &livefacts.Facts{})

		assert.Equal(t, SourceError, res.Source)
		assert.Equal(t, 1.0, res.Confidence)
		assert.True(t, res.RequiresAdminAttention)
	}
}

var digits = regexp.MustCompile(`[0-9]`)

// No template may state a number it was not given.
func TestUnverifiedTemplatesNeverStateNumbers(t *testing.T) {
	standard := DefaultRegistry()
	pending, generic := DefaultPendingRegistry()
	cand := activeCandidate()

	ids := []intent.ID{
		intent.PaymentInquiry, intent.ShiftInquiry, intent.ApplicationStatus, intent.JobSearch,
		intent.DocumentUpload, intent.InterviewScheduling, intent.AccountHelp,
		intent.CancellationRequest, intent.Greeting, intent.OnboardingHelp,
	}
	for _, id := range ids {
		for _, reg := range []*Registry{standard, pending} {
			if r, ok := reg.Lookup(id); ok {
				text, err := r.RenderUnverified(cand)
				require.NoError(t, err)
				assert.False(t, digits.MatchString(text), "%s: %q", id, text)
			}
		}
	}
	text, err := generic.RenderUnverified(cand)
	require.NoError(t, err)
	assert.False(t, digits.MatchString(text))
}

// Every intent that requires real data must be flagged when answered without it.
func TestRealDataInvariant(t *testing.T) {
	table, err := intent.DefaultTable()
	require.NoError(t, err)
	s := NewDefaultSynthesizer(logger.NewNopLogger())

	statuses := []entity.CandidateStatus{
		entity.CandidateStatusActive, entity.CandidateStatusPending,
		entity.CandidateStatusInactive, entity.CandidateStatusUnknown,
	}
	for _, p := range table.Patterns {
		for _, st := range statuses {
			cls := intent.Result{PrimaryIntent: p.ID, RequiresRealData: p.RequiresRealData}
			cand := entity.CandidateContext{Id: "x", Status: st}
			for _, facts := range []*livefacts.Facts{nil, {}} {
				res := s.Synthesize(cls, cand, facts)
				if cls.RequiresRealData && !res.UsesRealData {
					assert.True(t, res.RequiresAdminAttention, "%s/%s", p.ID, st)
				}
				assert.GreaterOrEqual(t, res.Confidence, 0.0)
				assert.LessOrEqual(t, res.Confidence, 1.0)
			}
		}
	}
}
