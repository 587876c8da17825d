package server

import (
	"log"

	"drheal-be/internal/bootstrap"
	"drheal-be/internal/config"
	"drheal-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
)

const bodyLimit = 1024 * 1024 // 1MB

// Paths never counted against the rate limit.
var rateLimitExcluded = []string{"/", "/metrics", "/api/health", "/api/ws"}

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		AppName:   "Dr.Heal AI API",
		BodyLimit: bodyLimit,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			return serverutils.WriteError(ctx, err)
		},
	})

	// Middleware
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: cfg.App.CorsAllowedOrigins != "*",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, X-Process-Time, X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.MetricsMiddleware(container.Metrics))

	limiter, err := serverutils.NewRateLimiter(serverutils.RateLimitConfig{
		Limit:  int64(cfg.App.RateLimitRequests),
		Period: cfg.App.RateLimitPeriod,
		Redis:  container.Redis,
	})
	if err != nil {
		log.Printf("[WARN] Rate limiter disabled: %v", err)
	} else {
		app.Use(serverutils.RateLimitMiddleware(limiter, rateLimitExcluded...))
	}

	app.Use(serverutils.ErrorHandlerMiddleware())

	// Routes
	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	c.HealthController.RegisterRootRoutes(app)

	api := app.Group("/api")

	c.HealthController.RegisterRoutes(api)
	c.AuthController.RegisterRoutes(api)

	c.SearchController.RegisterRoutes(api)
	c.ChatController.RegisterRoutes(api)

	c.ConversationController.RegisterRoutes(api)
	c.MedicalHistoryController.RegisterRoutes(api)
	c.AlertController.RegisterRoutes(api)
}
