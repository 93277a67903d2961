package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/loan-portal/internal/api/http/handlers"
	"github.com/spec-kit/loan-portal/internal/auth"
	"github.com/spec-kit/loan-portal/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Customers      *handlers.CustomersHandler
	Loans          *handlers.LoansHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
	LoanLimit      fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if reg := cfg.Metrics.Registry(); reg != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	authGroup := app.Group("/auth")
	authGroup.Get("/login", cfg.Auth.Login)
	authGroup.Get("/callback", cfg.Auth.Callback)
	authGroup.Get("/logout", cfg.Auth.Logout)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)
	customers := api.Group("/customers")
	customers.Get("/", cfg.Customers.List)
	customers.Get("/identification/:identification", cfg.Customers.Get)

	evaluate := []fiber.Handler{}
	if cfg.LoanLimit != nil {
		evaluate = append(evaluate, cfg.LoanLimit)
	}
	evaluate = append(evaluate, cfg.Loans.Evaluate)
	customers.Post("/identification/:identification/loan-evaluations", evaluate...)
}
