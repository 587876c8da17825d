package controller

import (
	"drheal-be/internal/dto"
	"drheal-be/internal/pkg/serverutils"
	"drheal-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISearchController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	WebSearch(ctx *fiber.Ctx) error
}

type searchController struct {
	service service.ISearchService
}

func NewSearchController(service service.ISearchService) ISearchController {
	return &searchController{service: service}
}

func (c *searchController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/search")
	h.Post("", c.Search)
	h.Get("/stats", c.Stats)
	h.Get("/web", c.WebSearch)
}

func (c *searchController) Search(ctx *fiber.Ctx) error {
	req := dto.SearchRequest{NResults: defaultNResults}
	if err := ctx.BodyParser(&req); err != nil {
		return invalidBody()
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Search(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success search knowledge base", res))
}

func (c *searchController) Stats(ctx *fiber.Ctx) error {
	res, err := c.service.Stats(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get knowledge base stats", res))
}

func (c *searchController) WebSearch(ctx *fiber.Ctx) error {
	req := dto.WebSearchRequest{MaxResults: defaultNResults}
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query parameters")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res := c.service.WebSearch(ctx.UserContext(), &req)
	return ctx.JSON(serverutils.SuccessResponse("Success web search", res))
}
