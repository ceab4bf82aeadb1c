package controller

import (
	"errors"

	"agent-sim-be/internal/dto"
	"agent-sim-be/internal/pkg/serverutils"
	"agent-sim-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISimulationController interface {
	RegisterRoutes(r fiber.Router)
	StatusCallback(ctx *fiber.Ctx) error
}

type simulationController struct {
	service service.IConversationService
}

func NewSimulationController(svc service.IConversationService) ISimulationController {
	return &simulationController{service: svc}
}

func (c *simulationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/simulation/v1")
	h.Post("/status", c.StatusCallback)
}

// StatusCallback receives the engine's webhook. Unknown simulation ids get a
// 404 so the engine can stop retrying callbacks for evicted sessions.
func (c *simulationController) StatusCallback(ctx *fiber.Ctx) error {
	var req dto.StatusCallbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	if err := c.service.ApplyStatus(ctx.Context(), req); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Status applied", nil))
}
