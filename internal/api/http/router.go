package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hr-service/internal/api/http/handlers"
	"github.com/spec-kit/hr-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Password       *handlers.PasswordHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Post("/logout", cfg.Auth.Logout)

	authGroup.Post("/password/reset/request", cfg.Password.RequestReset)
	authGroup.Post("/password/reset/confirm", cfg.Password.ConfirmReset)

	protected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnySubject())
	protected.Get("/me", cfg.Auth.Me)
	protected.Post("/password/change", cfg.Password.ChangePassword)
}
