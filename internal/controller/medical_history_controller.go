package controller

import (
	"drheal-be/internal/pkg/serverutils"
	"drheal-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IMedicalHistoryController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type medicalHistoryController struct {
	service service.IMedicalHistoryService
}

func NewMedicalHistoryController(service service.IMedicalHistoryService) IMedicalHistoryController {
	return &medicalHistoryController{service: service}
}

func (c *medicalHistoryController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/medical-history")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.List)
	h.Get("/:id", c.Show)
	h.Delete("/:id", c.Delete)
}

func (c *medicalHistoryController) List(ctx *fiber.Ctx) error {
	userId, err := userIdFrom(ctx)
	if err != nil {
		return err
	}
	page, err := parsePage(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.List(ctx.UserContext(), userId, page)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get medical history", res))
}

func (c *medicalHistoryController) Show(ctx *fiber.Ctx) error {
	userId, err := userIdFrom(ctx)
	if err != nil {
		return err
	}
	id, err := pathId(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.Get(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get medical history entry", res))
}

func (c *medicalHistoryController) Delete(ctx *fiber.Ctx) error {
	userId, err := userIdFrom(ctx)
	if err != nil {
		return err
	}
	id, err := pathId(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.service.Delete(ctx.UserContext(), userId, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete medical history entry", nil))
}
