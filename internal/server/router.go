package server

import (
	"time"

	"github.com/beetlebugorg/burnview/internal/metrics"
	"github.com/beetlebugorg/burnview/pkg/burn"
	"github.com/beetlebugorg/burnview/pkg/session"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"
)

// Dependencies holds what the HTTP handlers need.
type Dependencies struct {
	// Table is the shared base table.
	Table *burn.Table
	// Diagnostics are the load problems reported by /v1/health.
	Diagnostics burn.Diagnostics
	// Sessions owns the interaction sessions.
	Sessions *session.Registry

	ValueField string
	GroupField string

	// StaticDir is served at / when set.
	StaticDir string

	Logger zerolog.Logger
}

// Config holds fiber settings.
type Config struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewApp creates a fiber app with all routes registered.
func NewApp(cfg Config, deps *Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		BodyLimit:             1024 * 1024, // 1 MB max event body
		AppName:               "burnview",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	SetupRoutes(app, deps)
	return app
}

// SetupRoutes registers all REST, WebSocket and static routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	if deps.ValueField == "" {
		deps.ValueField = burn.DefaultValueField
	}
	if deps.GroupField == "" {
		deps.GroupField = burn.DefaultGroupField
	}

	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Request ID
	app.Use(requestid.New())

	// Access logs
	app.Use(AccessLogMiddleware(deps.Logger))

	app.Get("/v1/health", HealthHandler(deps))

	v1 := app.Group("/v1")
	v1.Get("/features", FeaturesHandler(deps))
	v1.Get("/features/at", FeatureAtHandler(deps))
	v1.Get("/viewport", ViewportHandler(deps))

	v1.Post("/sessions", CreateSessionHandler(deps))
	v1.Get("/sessions/:id", GetSessionHandler(deps))
	v1.Post("/sessions/:id/events", SessionEventHandler(deps))
	v1.Delete("/sessions/:id", DeleteSessionHandler(deps))

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps)))

	if deps.StaticDir != "" {
		app.Static("/", deps.StaticDir)
	}
}
