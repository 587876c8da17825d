package controller

import (
	"drheal-be/internal/pkg/serverutils"
	internalWS "drheal-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type IAlertController interface {
	RegisterRoutes(r fiber.Router)
	Handshake(ctx *fiber.Ctx) error
}

type alertController struct {
	hub *internalWS.Hub
}

func NewAlertController(hub *internalWS.Hub) IAlertController {
	return &alertController{hub: hub}
}

func (c *alertController) RegisterRoutes(r fiber.Router) {
	r.Get("/ws/alerts", c.Handshake, websocket.New(func(conn *websocket.Conn) {
		userId, _ := conn.Locals("user_id").(uuid.UUID)
		c.hub.Serve(conn, userId)
	}))
}

// Handshake authenticates the stream before the upgrade. Browsers cannot set
// headers on a websocket request, so the token may also come as ?token=.
func (c *alertController) Handshake(ctx *fiber.Ctx) error {
	tokenStr := ctx.Query("token")
	if tokenStr == "" {
		tokenStr = serverutils.BearerToken(ctx)
	}
	if tokenStr == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "Missing token")
	}

	userIdStr, err := serverutils.ParseUserToken(tokenStr)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}
	ctx.Locals("user_id", userId)
	return ctx.Next()
}
