package legacy

import (
	"context"
)

// Reply is what the legacy responder produced for one message.
type Reply struct {
	Content    string  `json:"content"`
	Confidence float64 `json:"confidence"`
	// Handled is false when the legacy system handed the message to a human.
	Handled bool `json:"handled"`
}

// Responder is the system being replaced.
type Responder interface {
	Respond(ctx context.Context, candidateId, message string) (Reply, error)
}

const handoffText = "Thanks for your message. A member of our team will get back to you shortly."

// HandoffResponder answers every message with a human handoff. Used when no
// legacy endpoint is configured.
type HandoffResponder struct{}

func (HandoffResponder) Respond(ctx context.Context, candidateId, message string) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}
	return Reply{Content: handoffText, Confidence: 0.5}, nil
}
