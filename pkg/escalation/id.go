package escalation

import (
	"fmt"

	"github.com/google/uuid"
)

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrEscalationNotFound, id)
	}
	return parsed, nil
}
