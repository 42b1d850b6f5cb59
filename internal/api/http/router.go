package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/parcel-service/internal/api/http/handlers"
	"github.com/spec-kit/parcel-service/internal/auth"
	"github.com/spec-kit/parcel-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Parcels        *handlers.ParcelsHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	org := api.Group("/organization")
	org.Get("/health", cfg.Health.OrganizationHealth)
	org.Post("/login", cfg.Auth.LoginOrganization)
	org.Post("/branch/login", cfg.Auth.LoginBranch)
	org.Post("/token/refresh", cfg.Auth.Refresh)
	org.Post("/logout", cfg.Auth.Logout)

	shipments := api.Group("/shipments")
	// Public tracking by exact tracking id; everything else is scoped by role.
	shipments.Get("/track/:trackingId", cfg.Parcels.Track)
	shipments.Post("", cfg.AuthMiddleware.Handle, auth.RequireBranchAdmin(), cfg.Parcels.Book)
	shipments.Patch("/:trackingId/status", cfg.AuthMiddleware.Handle, auth.RequireBranchAdmin(), cfg.Parcels.UpdateStatus)
	shipments.Get("", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleOrgAdmin, domain.RoleBranchAdmin), cfg.Parcels.List)

	api.Get("/notifications", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Notifications.List)
}
