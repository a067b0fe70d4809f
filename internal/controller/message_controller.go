package controller

import (
	"candidate-router/internal/dto"
	"candidate-router/internal/pkg/serverutils"
	"candidate-router/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IMessageController interface {
	RegisterRoutes(r fiber.Router)
	HandleMessage(ctx *fiber.Ctx) error
}

type messageController struct {
	service service.IMessageService
}

func NewMessageController(service service.IMessageService) IMessageController {
	return &messageController{service: service}
}

func (c *messageController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Post("/messages", c.HandleMessage)
}

func (c *messageController) HandleMessage(ctx *fiber.Ctx) error {
	var req dto.HandleMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.HandleMessage(ctx.UserContext(), &req)
	if err != nil {
		return toHTTPError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Message handled", res))
}
