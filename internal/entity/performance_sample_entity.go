package entity

import (
	"time"

	"github.com/google/uuid"
)

// System identifies which responder handled a message.
type System string

const (
	SystemNew    System = "new"
	SystemLegacy System = "legacy"
)

// PerformanceSample is one handled message. Errored marks a hard failure,
// which is distinct from an unsuccessful but safe handoff.
type PerformanceSample struct {
	Id             uuid.UUID
	System         System
	Success        bool
	Errored        bool
	Confidence     float64
	ResponseTimeMs int64
	CandidateId    string
	MessageId      string
	Intent         string
	RecordedAt     time.Time
}

// SystemAggregate is a grouped count over performance samples.
type SystemAggregate struct {
	System        System
	Total         int64
	Successes     int64
	Errors        int64
	AvgConfidence float64
}

// ABComparisonSample records both systems' outcome for the same message.
type ABComparisonSample struct {
	Id               uuid.UUID
	MessageId        string
	CandidateId      string
	RoutedTo         System
	NewSuccess       bool
	NewConfidence    float64
	LegacySuccess    bool
	LegacyConfidence float64
	RecordedAt       time.Time
}
