package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/sma-admin-gateway/internal/config"
	"github.com/noah-isme/sma-admin-gateway/internal/handler"
	"github.com/noah-isme/sma-admin-gateway/internal/middleware"
	"github.com/noah-isme/sma-admin-gateway/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	MarksHandler   *handler.MarksHandler
	FeesHandler    *handler.FeesHandler
	SubjectHandler *handler.SubjectHandler
	ProfileHandler *handler.ProfileHandler
	JWTMiddleware  fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Submission endpoints are rate limited; everything else only needs auth.
	saveLimiter := middleware.RateLimit("save", cfg.SaveRateLimit, cfg.SaveRateWindow)

	if deps.MarksHandler != nil {
		marks := api.Group("/marks", jwtMiddleware)
		marks.Post("/sessions/:id/save", saveLimiter)
		deps.MarksHandler.Register(marks)
	}

	if deps.FeesHandler != nil {
		fees := api.Group("/fees", jwtMiddleware)
		fees.Post("/sessions/:id/collect", saveLimiter)
		deps.FeesHandler.Register(fees)
	}

	if deps.SubjectHandler != nil {
		subjects := api.Group("/subjects", jwtMiddleware)
		deps.SubjectHandler.Register(subjects)
	}

	if deps.ProfileHandler != nil {
		profile := api.Group("/profile", jwtMiddleware)
		deps.ProfileHandler.Register(profile)
	}
}
