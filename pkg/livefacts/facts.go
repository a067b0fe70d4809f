package livefacts

import (
	"context"
	"time"

	"candidate-router/pkg/intent"
)

// Facts are verified values fetched for one candidate. A nil section means
// it was not fetched; an empty (non-nil) one means nothing is on record.
type Facts struct {
	Earnings       *Earnings     `json:"earnings"`
	UpcomingShifts []Shift       `json:"upcoming_shifts"`
	Applications   []Application `json:"applications"`
	OpenJobs       []Job         `json:"open_jobs"`
	Documents      []Document    `json:"documents"`
	FetchedAt      time.Time     `json:"fetched_at"`
}

type Earnings struct {
	Available float64 `json:"available"`
	Pending   float64 `json:"pending"`
	Paid      float64 `json:"paid"`
}

// IsZero reports whether nothing has been earned, pending or paid.
func (e Earnings) IsZero() bool {
	return e.Available == 0 && e.Pending == 0 && e.Paid == 0
}

type Shift struct {
	Title    string    `json:"title"`
	Location string    `json:"location"`
	StartsAt time.Time `json:"starts_at"`
}

type Application struct {
	JobTitle  string    `json:"job_title"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Job struct {
	Title    string  `json:"title"`
	Location string  `json:"location"`
	PayRate  float64 `json:"pay_rate"`
}

type Document struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Resolver supplies verified facts. Implementations must honour ctx deadlines.
type Resolver interface {
	Fetch(ctx context.Context, candidateId string, intentId intent.ID) (*Facts, error)
}

// NoopResolver has no data source; every fetch yields no facts.
type NoopResolver struct{}

func (NoopResolver) Fetch(ctx context.Context, candidateId string, intentId intent.ID) (*Facts, error) {
	return nil, nil
}
