package controller

import (
	"drheal-be/internal/dto"
	"drheal-be/internal/pkg/serverutils"
	"drheal-be/internal/service"
	"drheal-be/pkg/ragchain"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	AnalyzeSymptoms(ctx *fiber.Ctx) error
	DiseaseInfo(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Post("", c.Chat)
	h.Post("/symptoms", c.AnalyzeSymptoms)
	h.Post("/disease", c.DiseaseInfo)
}

func (c *chatController) Chat(ctx *fiber.Ctx) error {
	return c.run(ctx, "")
}

func (c *chatController) AnalyzeSymptoms(ctx *fiber.Ctx) error {
	return c.run(ctx, ragchain.ChatTypeSymptoms)
}

func (c *chatController) DiseaseInfo(ctx *fiber.Ctx) error {
	return c.run(ctx, ragchain.ChatTypeDisease)
}

// run answers a chat request; a non-empty chatType overrides the body.
func (c *chatController) run(ctx *fiber.Ctx, chatType string) error {
	req := dto.ChatRequest{NResults: defaultNResults, ChatType: ragchain.ChatTypeSymptoms}
	if err := ctx.BodyParser(&req); err != nil {
		return invalidBody()
	}
	if chatType != "" {
		req.ChatType = chatType
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Chat(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success chat", res))
}
