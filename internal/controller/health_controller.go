package controller

import (
	"drheal-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceVersion = "1.0.0"

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	RegisterRootRoutes(r fiber.Router)
	Root(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
	Detailed(ctx *fiber.Ctx) error
}

type healthController struct {
	service  service.IHealthService
	registry *prometheus.Registry
}

func NewHealthController(service service.IHealthService, registry *prometheus.Registry) IHealthController {
	return &healthController{service: service, registry: registry}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/health")
	h.Get("", c.Health)
	h.Get("/detailed", c.Detailed)
}

// RegisterRootRoutes mounts the banner and the Prometheus scrape endpoint
// outside the /api prefix.
func (c *healthController) RegisterRootRoutes(r fiber.Router) {
	r.Get("/", c.Root)
	if c.registry != nil {
		r.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})))
	}
}

func (c *healthController) Root(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{
		"message": "Dr.Heal AI API is running",
		"status":  "healthy",
		"version": serviceVersion,
	})
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(c.service.Health())
}

func (c *healthController) Detailed(ctx *fiber.Ctx) error {
	checkLLM := ctx.QueryBool("check_llm", false)
	return ctx.JSON(c.service.Detailed(ctx.UserContext(), checkLLM))
}
