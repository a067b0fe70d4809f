package intent

import "candidate-router/internal/entity"

// ID names a classified intent, e.g. "payment_inquiry".
type ID string

const (
	GeneralQuestion     ID = "general_question"
	PaymentInquiry      ID = "payment_inquiry"
	ShiftInquiry        ID = "shift_inquiry"
	ApplicationStatus   ID = "application_status"
	JobSearch           ID = "job_search"
	OnboardingHelp      ID = "onboarding_help"
	InterviewScheduling ID = "interview_scheduling"
	DocumentUpload      ID = "document_upload"
	AccountHelp         ID = "account_help"
	CancellationRequest ID = "cancellation_request"
	Greeting            ID = "greeting"
)

type Urgency string

const (
	UrgencyNone   Urgency = "none"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Rank orders urgencies so callers can compare them.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyHigh:
		return 2
	case UrgencyMedium:
		return 1
	default:
		return 0
	}
}

// Pattern describes how one intent is recognised. Immutable after load.
type Pattern struct {
	ID                 ID                      `yaml:"id"`
	Keywords           []string                `yaml:"keywords"`
	Phrases            []string                `yaml:"phrases"`
	PhraseWeight       float64                 `yaml:"phrase_weight"`
	KeywordWeight      float64                 `yaml:"keyword_weight"`
	BaseConfidence     float64                 `yaml:"base_confidence"`
	RequiresRealData   bool                    `yaml:"requires_real_data"`
	EscalationRequired bool                    `yaml:"escalation_required"`
	RestrictedToStatus *entity.CandidateStatus `yaml:"restricted_to_status"`
	SchedulingRelated  bool                    `yaml:"scheduling_related"`
	Department         string                  `yaml:"department"`
}

// TriggerCategory is a named group of phrases that call for a human.
type TriggerCategory struct {
	Name    string   `yaml:"name"`
	Phrases []string `yaml:"phrases"`
}

// Match is one ranked intent.
type Match struct {
	Intent     ID      `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// TriggerHit records which phrases of a category matched.
type TriggerHit struct {
	Category string   `json:"category"`
	Phrases  []string `json:"phrases"`
}

// Result is produced once per message and never mutated.
type Result struct {
	PrimaryIntent      ID           `json:"primary_intent"`
	SecondaryIntents   []Match      `json:"secondary_intents"`
	Confidence         float64      `json:"confidence"`
	RequiresRealData   bool         `json:"requires_real_data"`
	RequiresEscalation bool         `json:"requires_escalation"`
	EscalationReason   *string      `json:"escalation_reason"`
	EscalationUrgency  Urgency      `json:"escalation_urgency"`
	EscalationScore    int          `json:"escalation_score"`
	Triggers           []TriggerHit `json:"triggers,omitempty"`
	Fallback           bool         `json:"fallback"`
}

// HasTrigger reports whether the named trigger category matched.
func (r Result) HasTrigger(category string) bool {
	for _, t := range r.Triggers {
		if t.Category == category {
			return true
		}
	}
	return false
}
