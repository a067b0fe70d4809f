package controller

import (
	"errors"

	"candidate-router/pkg/escalation"
	"candidate-router/pkg/rollout"

	"github.com/gofiber/fiber/v2"
)

// toHTTPError maps domain sentinels onto HTTP statuses. Unknown errors pass
// through and become a 500 in ErrorHandlerMiddleware.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, rollout.ErrInvalidConfig), errors.Is(err, rollout.ErrUnknownPhase):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, rollout.ErrNoOpenPhase), errors.Is(err, escalation.ErrEscalationNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, rollout.ErrPhaseAlreadyOpen),
		errors.Is(err, rollout.ErrConcurrentTransition),
		errors.Is(err, escalation.ErrEscalationNotOpen):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return err
}
