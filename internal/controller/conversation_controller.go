package controller

import (
	"errors"

	"agent-sim-be/internal/dto"
	"agent-sim-be/internal/pkg/serverutils"
	"agent-sim-be/internal/service"
	ws "agent-sim-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type IConversationController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	GetTranscript(ctx *fiber.Ctx) error
	GetConfig(ctx *fiber.Ctx) error
	UpdateConfig(ctx *fiber.Ctx) error
	SendTurn(ctx *fiber.Ctx) error
	SelectOption(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
}

type conversationController struct {
	service service.IConversationService
	hub     *ws.Hub
}

func NewConversationController(svc service.IConversationService, hub *ws.Hub) IConversationController {
	return &conversationController{service: svc, hub: hub}
}

func (c *conversationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/conversation/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/session", c.CreateSession)
	h.Get("/session/:id/transcript", c.GetTranscript)
	h.Get("/session/:id/config", c.GetConfig)
	h.Patch("/session/:id/config", c.UpdateConfig)
	h.Post("/session/:id/turn", c.SendTurn)
	h.Post("/session/:id/select", c.SelectOption)
	h.Delete("/session/:id", c.DeleteSession)

	h.Use("/ws/:id", func(ctx *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	h.Get("/ws/:id", websocket.New(func(conn *websocket.Conn) {
		ws.ServeWs(c.hub, conn, conn.Params("id"))
	}))
}

func (c *conversationController) CreateSession(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil && err != fiber.ErrUnprocessableEntity {
		// An empty body is fine, the locale defaults to English.
		req = dto.CreateSessionRequest{}
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	userID := localUser(ctx)
	res, err := c.service.CreateSession(ctx.Context(), userID, req.Locale)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Session created", res))
}

func (c *conversationController) GetTranscript(ctx *fiber.Ctx) error {
	res, err := c.service.GetTranscript(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return c.mapError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Transcript", res))
}

func (c *conversationController) GetConfig(ctx *fiber.Ctx) error {
	res, err := c.service.GetConfig(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return c.mapError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Configuration", res))
}

func (c *conversationController) UpdateConfig(ctx *fiber.Ctx) error {
	var req dto.UpdateConfigRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.service.UpdateConfig(ctx.Context(), ctx.Params("id"), req)
	if err != nil {
		return c.mapError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Configuration updated", res))
}

func (c *conversationController) SendTurn(ctx *fiber.Ctx) error {
	var req dto.SendTurnRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.service.SendTurn(ctx.Context(), ctx.Params("id"), req.Text)
	if err != nil {
		return c.mapError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Turn processed", res))
}

func (c *conversationController) SelectOption(ctx *fiber.Ctx) error {
	var req dto.SelectOptionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.service.SelectOption(ctx.Context(), ctx.Params("id"), req)
	if err != nil {
		return c.mapError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Option applied", res))
}

func (c *conversationController) DeleteSession(ctx *fiber.Ctx) error {
	if err := c.service.DeleteSession(ctx.Context(), ctx.Params("id")); err != nil {
		return c.mapError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Session deleted", nil))
}

func (c *conversationController) mapError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
	case errors.Is(err, service.ErrInvalidOption):
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	default:
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
}

func localUser(ctx *fiber.Ctx) string {
	if v, ok := ctx.Locals("user_id").(string); ok && v != "" {
		return v
	}
	return "anonymous"
}
