package entity

import "time"

type CandidateStatus string

const (
	CandidateStatusPending  CandidateStatus = "pending"
	CandidateStatusActive   CandidateStatus = "active"
	CandidateStatusInactive CandidateStatus = "inactive"
	CandidateStatusUnknown  CandidateStatus = "unknown"
)

// CandidateContext is a read-only snapshot of the candidate sending a message.
// It is supplied by the caller; this service never loads or stores candidates.
type CandidateContext struct {
	Id            string
	DisplayName   string
	Status        CandidateStatus
	CreatedAt     *time.Time
	LastShiftAt   *time.Time
	LastMessageAt *time.Time
}

// ParseCandidateStatus maps free-form input onto a known status.
func ParseCandidateStatus(s string) CandidateStatus {
	switch CandidateStatus(s) {
	case CandidateStatusPending, CandidateStatusActive, CandidateStatusInactive:
		return CandidateStatus(s)
	default:
		return CandidateStatusUnknown
	}
}
