package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	defaultNResults  = 5
	defaultPageLimit = 50
)

// userIdFrom reads the id JwtMiddleware stored in the request locals.
func userIdFrom(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}
	return userId, nil
}

func pathId(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}
	return id, nil
}

func invalidBody() error {
	return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
}
