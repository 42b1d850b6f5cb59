package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/parcel-service/internal/api/dto"
	"github.com/spec-kit/parcel-service/internal/persistence"
	"github.com/spec-kit/parcel-service/internal/repository"
)

// HealthHandler responds to liveness probes and serves the organization
// bootstrap payload consumed by clients at startup.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    *persistence.Postgres
	redis       *persistence.Redis
	orgs        repository.OrganizationRepository
	branches    repository.BranchRepository
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, postgres *persistence.Postgres, redis *persistence.Redis, orgs repository.OrganizationRepository, branches repository.BranchRepository) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		postgres:    postgres,
		redis:       redis,
		orgs:        orgs,
		branches:    branches,
	}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking dependencies.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	if h.postgres != nil && h.postgres.PoolHandle() != nil {
		if err := h.postgres.PoolHandle().Ping(ctx); err != nil {
			depStatus["postgres"] = err.Error()
			ready = false
		} else {
			depStatus["postgres"] = "ok"
		}
	} else {
		depStatus["postgres"] = "not configured"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			depStatus["redis"] = err.Error()
			ready = false
		} else {
			depStatus["redis"] = "ok"
		}
	} else {
		depStatus["redis"] = "not configured"
	}

	if !ready {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "DEPENDENCY_UNAVAILABLE",
				"message": "one or more dependencies unavailable",
				"details": depStatus,
			},
		})
	}
	return c.JSON(fiber.Map{
		"status":       "ready",
		"dependencies": depStatus,
	})
}

// OrganizationHealth handles GET /api/organization/health: the bootstrap
// call returning organization metadata with the embedded branch list.
func (h *HealthHandler) OrganizationHealth(c *fiber.Ctx) error {
	org, err := h.orgs.Get(c.Context())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fiber.NewError(fiber.StatusNotFound, "organization not configured")
		}
		return err
	}

	branches, err := h.branches.List(c.Context())
	if err != nil {
		return err
	}
	summaries := make([]dto.BranchSummary, 0, len(branches))
	for _, branch := range branches {
		summaries = append(summaries, dto.BranchSummary{Slug: branch.Slug, Title: branch.Title})
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"slug":     org.Slug,
			"title":    org.Title,
			"branches": summaries,
		},
	})
}
