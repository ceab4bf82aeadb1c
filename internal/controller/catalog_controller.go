package controller

import (
	"agent-sim-be/internal/pkg/serverutils"
	"agent-sim-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICatalogController interface {
	RegisterRoutes(r fiber.Router)
	GetOptions(ctx *fiber.Ctx) error
}

type catalogController struct {
	service service.ICatalogService
}

func NewCatalogController(svc service.ICatalogService) ICatalogController {
	return &catalogController{service: svc}
}

func (c *catalogController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/catalog/v1")
	h.Get("/options", c.GetOptions)
}

func (c *catalogController) GetOptions(ctx *fiber.Ctx) error {
	locale := ctx.Query("locale", "en")
	if locale != "ar" {
		locale = "en"
	}
	res := c.service.Options(ctx.Context(), locale)
	return ctx.JSON(serverutils.SuccessResponse("Catalog options", res))
}
