package controller

import (
	"candidate-router/internal/dto"
	"candidate-router/internal/pkg/serverutils"
	"candidate-router/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IRolloutController interface {
	RegisterRoutes(r fiber.Router, guard fiber.Handler)
	GetStatus(ctx *fiber.Ctx) error
	ForceAdvance(ctx *fiber.Ctx) error
	ForceRollback(ctx *fiber.Ctx) error
	UpdateConfig(ctx *fiber.Ctx) error
	CheckNow(ctx *fiber.Ctx) error
}

type rolloutController struct {
	service service.IRolloutService
}

func NewRolloutController(service service.IRolloutService) IRolloutController {
	return &rolloutController{service: service}
}

func (c *rolloutController) RegisterRoutes(r fiber.Router, guard fiber.Handler) {
	h := r.Group("/admin/rollout", guard)
	h.Get("/status", c.GetStatus)
	h.Post("/advance", c.ForceAdvance)
	h.Post("/rollback", c.ForceRollback)
	h.Patch("/config", c.UpdateConfig)
	h.Post("/check", c.CheckNow)
}

func (c *rolloutController) GetStatus(ctx *fiber.Ctx) error {
	res, err := c.service.GetStatus(ctx.UserContext())
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get migration status", res))
}

func (c *rolloutController) ForceAdvance(ctx *fiber.Ctx) error {
	var req dto.ForceAdvanceRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.ForceAdvance(ctx.UserContext(), &req)
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Phase advanced", res))
}

func (c *rolloutController) ForceRollback(ctx *fiber.Ctx) error {
	var req dto.ForceRollbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.ForceRollback(ctx.UserContext(), &req)
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Rolled back to legacy", res))
}

func (c *rolloutController) UpdateConfig(ctx *fiber.Ctx) error {
	var req dto.UpdateRolloutConfigRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.UpdateConfig(ctx.UserContext(), &req)
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Rollout configuration updated", res))
}

func (c *rolloutController) CheckNow(ctx *fiber.Ctx) error {
	res, err := c.service.CheckNow(ctx.UserContext())
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Auto-advance check finished", res))
}
