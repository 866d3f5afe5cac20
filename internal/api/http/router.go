package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/api/http/handlers"
	"github.com/spec-kit/account-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Account        *handlers.AccountHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	// Verification endpoints accept a token from a not-yet-verified
	// account, so they sit outside the policy-enforcing middleware.
	authGroup.Post("/email/verification/request", cfg.Auth.SendVerificationEmail)
	authGroup.Post("/email/verification/confirm", cfg.Auth.ConfirmEmail)

	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)

	protected := authGroup.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/password/change", cfg.Account.ChangePassword)
	protected.Post("/logout_all", cfg.Account.LogoutAll)

	app.Get("/me", cfg.AuthMiddleware.Handle, cfg.Account.Me)
}
