package intent

import (
	"testing"
	"time"

	"candidate-router/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	table, err := DefaultTable()
	require.NoError(t, err)
	return NewClassifier(table, DefaultScoringConfig(), WithClock(func() time.Time { return fixedNow }))
}

func active(id string) entity.CandidateContext {
	return entity.CandidateContext{Id: id, DisplayName: "Sam", Status: entity.CandidateStatusActive}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"When will I get PAID?!", "when will i get paid"},
		{"  I   don't   know ", "i dont know"},
		{"this is unfair, I want to complain", "this is unfair i want to complain"},
		{"shift@9am/tomorrow", "shift 9am tomorrow"},
		{"", ""},
		{"   \t\n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestClassifyPaymentInquiry(t *testing.T) {
	c := newTestClassifier(t)

	res := c.Classify("when will I get paid", active("c-1"))

	assert.Equal(t, PaymentInquiry, res.PrimaryIntent)
	assert.True(t, res.RequiresRealData)
	assert.False(t, res.RequiresEscalation)
	assert.Equal(t, UrgencyNone, res.EscalationUrgency)
	assert.Nil(t, res.EscalationReason)
	assert.InDelta(t, 0.9, res.Confidence, 1e-9)
	assert.False(t, res.Fallback)
}

func TestClassifyComplaintEscalates(t *testing.T) {
	c := newTestClassifier(t)

	res := c.Classify("this is unfair, I want to complain", active("c-1"))

	assert.GreaterOrEqual(t, res.EscalationScore, 1)
	assert.True(t, res.HasTrigger("complaint"))
	assert.True(t, res.RequiresEscalation)
	assert.GreaterOrEqual(t, res.EscalationUrgency.Rank(), UrgencyMedium.Rank())
	require.NotNil(t, res.EscalationReason)
	assert.Contains(t, *res.EscalationReason, "complaint")
}

func TestClassifyUrgencyLevels(t *testing.T) {
	c := newTestClassifier(t)

	one := c.Classify("I am upset about my paycheck", active("c-1"))
	assert.Equal(t, UrgencyMedium, one.EscalationUrgency)
	assert.Equal(t, 1, one.EscalationScore)
	assert.Equal(t, PaymentInquiry, one.PrimaryIntent)
	assert.True(t, one.RequiresEscalation)

	two := c.Classify("urgent: I am talking to a lawyer about my pay", active("c-1"))
	assert.Equal(t, UrgencyHigh, two.EscalationUrgency)
	assert.GreaterOrEqual(t, two.EscalationScore, 2)
}

func TestClassifyEmptyMessageFallsBack(t *testing.T) {
	c := newTestClassifier(t)

	for _, msg := range []string{"", "   ", "?!?"} {
		res := c.Classify(msg, active("c-1"))
		assert.Equal(t, GeneralQuestion, res.PrimaryIntent, msg)
		assert.True(t, res.RequiresEscalation, msg)
		assert.True(t, res.Fallback, msg)
		assert.InDelta(t, 0.3, res.Confidence, 1e-9, msg)
	}
}

func TestClassifyNoMatchFallsBack(t *testing.T) {
	c := newTestClassifier(t)

	res := c.Classify("what colour is the sky on mars", active("c-1"))

	assert.Equal(t, GeneralQuestion, res.PrimaryIntent)
	assert.True(t, res.RequiresEscalation)
	assert.Equal(t, UrgencyNone, res.EscalationUrgency)
	require.NotNil(t, res.EscalationReason)
	assert.Equal(t, "no intent matched", *res.EscalationReason)
}

func TestClassifyRestrictedToStatus(t *testing.T) {
	c := newTestClassifier(t)

	pending := entity.CandidateContext{Id: "c-2", Status: entity.CandidateStatusPending}
	res := c.Classify("what are the next steps to get started", pending)
	assert.Equal(t, OnboardingHelp, res.PrimaryIntent)

	res = c.Classify("what are the next steps to get started", active("c-2"))
	assert.NotEqual(t, OnboardingHelp, res.PrimaryIntent)
}

func TestClassifyPendingSchedulingBoost(t *testing.T) {
	c := newTestClassifier(t)
	msg := "can I book an interview"

	activeRes := c.Classify(msg, active("c-3"))
	pendingRes := c.Classify(msg, entity.CandidateContext{Id: "c-3", Status: entity.CandidateStatusPending})

	assert.Equal(t, InterviewScheduling, activeRes.PrimaryIntent)
	assert.Equal(t, InterviewScheduling, pendingRes.PrimaryIntent)
	assert.InDelta(t, activeRes.Confidence+0.2, pendingRes.Confidence, 1e-9)
}

func TestClassifyRecentShiftBoostIsCapped(t *testing.T) {
	c := newTestClassifier(t)
	lastShift := fixedNow.Add(-48 * time.Hour)
	cand := active("c-4")
	cand.LastShiftAt = &lastShift

	res := c.Classify("when will I get paid", cand)

	assert.Equal(t, PaymentInquiry, res.PrimaryIntent)
	assert.InDelta(t, 1.0, res.Confidence, 1e-9)
}

func TestClassifyCancellationRequiresEscalation(t *testing.T) {
	c := newTestClassifier(t)

	res := c.Classify("please cancel my shift", active("c-5"))

	assert.Equal(t, CancellationRequest, res.PrimaryIntent)
	assert.True(t, res.RequiresEscalation)
	assert.Equal(t, UrgencyNone, res.EscalationUrgency)
	require.NotNil(t, res.EscalationReason)
	assert.Contains(t, *res.EscalationReason, "cancellation_request")
}

func TestClassifySecondaryIntentsRankedAndBounded(t *testing.T) {
	c := newTestClassifier(t)

	res := c.Classify("hi, about my pay, my next shift, my application and any jobs", active("c-6"))

	assert.LessOrEqual(t, len(res.SecondaryIntents), 3)
	prev := res.Confidence
	for _, s := range res.SecondaryIntents {
		assert.NotEqual(t, res.PrimaryIntent, s.Intent)
		assert.LessOrEqual(t, s.Confidence, prev+1e-9)
		prev = s.Confidence
	}
}

func TestClassifyTieBreakKeepsDeclarationOrder(t *testing.T) {
	table, err := ParseTable([]byte(`
patterns:
  - id: first
    keywords: [alpha]
    base_confidence: 0.5
  - id: second
    keywords: [alpha]
    base_confidence: 0.5
`))
	require.NoError(t, err)
	c := NewClassifier(table, DefaultScoringConfig())

	for i := 0; i < 20; i++ {
		res := c.Classify("alpha", active("c-7"))
		require.Equal(t, ID("first"), res.PrimaryIntent)
		require.Len(t, res.SecondaryIntents, 1)
		require.Equal(t, ID("second"), res.SecondaryIntents[0].Intent)
	}
}

func TestClassifyConfidenceAlwaysInRange(t *testing.T) {
	c := newTestClassifier(t)
	lastShift := fixedNow.Add(-time.Hour)
	created := fixedNow.Add(-time.Hour)
	cands := []entity.CandidateContext{
		active("a"),
		{Id: "p", Status: entity.CandidateStatusPending, CreatedAt: &created, LastShiftAt: &lastShift},
		{Id: "u", Status: entity.CandidateStatusUnknown},
	}
	messages := []string{
		"when will i get paid get paid paid payment paycheck payout earnings money deposit",
		"book an interview schedule an interview interview time reschedule",
		"next steps get started how do i start onboarding orientation",
		"hello", "urgent urgent lawyer sue scam", "", "🙂",
	}

	for _, cand := range cands {
		for _, m := range messages {
			res := c.Classify(m, cand)
			assert.GreaterOrEqual(t, res.Confidence, 0.0, m)
			assert.LessOrEqual(t, res.Confidence, 1.0, m)
		}
	}
}

func TestParseTableRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"no patterns":    "patterns: []",
		"duplicate id":   "patterns:\n  - {id: a, keywords: [x], base_confidence: 0.5}\n  - {id: a, keywords: [y], base_confidence: 0.5}",
		"no matchers":    "patterns:\n  - {id: a, base_confidence: 0.5}",
		"bad confidence": "patterns:\n  - {id: a, keywords: [x], base_confidence: 1.5}",
		"bad yaml":       "patterns: [",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTable([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalidTable)
		})
	}
}

func TestDefaultTableRequiresRealData(t *testing.T) {
	table, err := DefaultTable()
	require.NoError(t, err)

	requires := func(id ID) bool {
		p, ok := table.Pattern(id)
		return ok && p.RequiresRealData
	}
	assert.True(t, requires(PaymentInquiry))
	assert.True(t, requires(ShiftInquiry))
	assert.False(t, requires(Greeting))
	assert.False(t, requires(GeneralQuestion))
}
