package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/parcel-service/internal/api/dto"
	"github.com/spec-kit/parcel-service/internal/service"
)

// AuthHandler exposes organization and branch login endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// LoginOrganization handles POST /api/organization/login.
func (h *AuthHandler) LoginOrganization(c *fiber.Ctx) error {
	var req dto.OrganizationLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.OrgID == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "org_id and password required")
	}

	org, pair, err := h.auth.LoginOrganization(c.Context(), req.OrgID, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"access":             pair.Access,
			"refresh":            pair.Refresh,
			"access_expires_at":  pair.AccessExpiresAt,
			"refresh_expires_at": pair.RefreshExpiresAt,
			"organization":       dto.TitledEntity{Slug: org.Slug, Title: org.Title},
		},
	})
}

// LoginBranch handles POST /api/organization/branch/login.
func (h *AuthHandler) LoginBranch(c *fiber.Ctx) error {
	var req dto.BranchLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.BranchID == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "branch_id and password required")
	}

	branch, pair, err := h.auth.LoginBranch(c.Context(), req.BranchID, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"access":             pair.Access,
			"refresh":            pair.Refresh,
			"access_expires_at":  pair.AccessExpiresAt,
			"refresh_expires_at": pair.RefreshExpiresAt,
			"branch":             dto.TitledEntity{Slug: branch.Slug, Title: branch.Title},
		},
	})
}

// Refresh handles POST /api/organization/token/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Refresh == "" {
		return fiber.NewError(http.StatusBadRequest, "refresh required")
	}

	pair, _, err := h.auth.Refresh(c.Context(), req.Refresh)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": dto.TokenPairResponse{
			Access:           pair.Access,
			Refresh:          pair.Refresh,
			AccessExpiresAt:  pair.AccessExpiresAt,
			RefreshExpiresAt: pair.RefreshExpiresAt,
		},
	})
}

// Logout handles POST /api/organization/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Refresh == "" {
		return fiber.NewError(http.StatusBadRequest, "refresh required")
	}

	if err := h.auth.Logout(c.Context(), req.Refresh); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Logout successful"})
}
