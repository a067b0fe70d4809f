package controller

import (
	"candidate-router/internal/dto"
	"candidate-router/internal/pkg/serverutils"
	"candidate-router/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IEscalationController interface {
	RegisterRoutes(r fiber.Router, guard fiber.Handler)
	ListOpen(ctx *fiber.Ctx) error
	Resolve(ctx *fiber.Ctx) error
}

type escalationController struct {
	service service.IEscalationService
}

func NewEscalationController(service service.IEscalationService) IEscalationController {
	return &escalationController{service: service}
}

func (c *escalationController) RegisterRoutes(r fiber.Router, guard fiber.Handler) {
	h := r.Group("/admin/escalations", guard)
	h.Get("/", c.ListOpen)
	h.Post("/:id/resolve", c.Resolve)
}

func (c *escalationController) ListOpen(ctx *fiber.Ctx) error {
	res, err := c.service.ListOpen(ctx.UserContext(), ctx.Query("candidate_id"))
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get open escalations", res))
}

func (c *escalationController) Resolve(ctx *fiber.Ctx) error {
	var req dto.ResolveEscalationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Resolve(ctx.UserContext(), ctx.Params("id"), &req)
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Escalation resolved", res))
}
