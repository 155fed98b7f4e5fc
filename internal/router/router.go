package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/scholaris-io/scholaris-api/internal/config"
	"github.com/scholaris-io/scholaris-api/internal/handler"
	"github.com/scholaris-io/scholaris-api/internal/middleware"
	"github.com/scholaris-io/scholaris-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	SchoolHandler       *handler.SchoolHandler
	AnnouncementHandler *handler.AnnouncementHandler
	MessageHandler      *handler.MessageHandler
	NotificationHandler *handler.NotificationHandler
	ExamHandler         *handler.ExamHandler
	StudentHandler      *handler.StudentHandler
	FeeHandler          *handler.FeeHandler
	JWTMiddleware       fiber.Handler
	TenantMiddleware    fiber.Handler
}

// Register wires the HTTP routes into the fiber application. Everything under
// /api/v1 except auth and health sits behind the JWT guard and the tenant
// resolver.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	if deps.AuthHandler != nil {
		// Credential endpoints are the brute-force target; throttle by IP
		// since no user identity exists yet.
		deps.AuthHandler.Register(api.Group("/auth", middleware.RateLimit("auth", 20, time.Minute)))
	}

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	tenantMiddleware := deps.TenantMiddleware
	if tenantMiddleware == nil {
		tenantMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	protected := api.Group("", jwtMiddleware, tenantMiddleware)

	if deps.SchoolHandler != nil {
		deps.SchoolHandler.Register(protected.Group("/school"))
	}
	if deps.AnnouncementHandler != nil {
		deps.AnnouncementHandler.Register(protected.Group("/announcements"))
	}
	if deps.MessageHandler != nil {
		deps.MessageHandler.Register(protected.Group("/messages"))
	}
	if deps.NotificationHandler != nil {
		deps.NotificationHandler.Register(protected.Group("/notifications"))
	}
	if deps.ExamHandler != nil {
		deps.ExamHandler.Register(protected.Group("/exams"))
	}
	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(protected.Group("/students"))
	}
	if deps.FeeHandler != nil {
		deps.FeeHandler.Register(protected.Group("/fees"))
	}
}
