package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/parcel-service/internal/domain"
	"github.com/spec-kit/parcel-service/internal/repository"
	apperrors "github.com/spec-kit/parcel-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Identity domain.Identity
	Claims   *Claims
}

// AuthMiddleware validates bearer tokens and resolves the acting identity.
type AuthMiddleware struct {
	tokens   *TokenManager
	orgs     repository.OrganizationRepository
	branches repository.BranchRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, orgs repository.OrganizationRepository, branches repository.BranchRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, orgs: orgs, branches: branches}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthenticated("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthenticated("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewAuthExpired("invalid or expired token")
	}

	identity, err := m.resolveIdentity(c, claims)
	if err != nil {
		return err
	}

	c.Locals(principalKey, &Principal{Identity: identity, Claims: claims})
	return c.Next()
}

func (m *AuthMiddleware) resolveIdentity(c *fiber.Ctx, claims *Claims) (domain.Identity, error) {
	switch claims.SubjectKind {
	case domain.SubjectKindOrg:
		org, err := m.orgs.GetBySlug(c.Context(), claims.SubjectID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return domain.Identity{}, apperrors.NewUnauthenticated("organization not found")
			}
			return domain.Identity{}, apperrors.MapError(err)
		}
		return domain.Identity{
			ID:          org.Slug,
			DisplayName: org.Title,
			Role:        domain.RoleOrgAdmin,
		}, nil
	case domain.SubjectKindBranch:
		branch, err := m.branches.GetBySlug(c.Context(), claims.SubjectID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return domain.Identity{}, apperrors.NewUnauthenticated("branch not found")
			}
			return domain.Identity{}, apperrors.MapError(err)
		}
		return domain.Identity{
			ID:          branch.Slug,
			DisplayName: branch.Title,
			Role:        domain.RoleBranchAdmin,
			OfficeID:    branch.Slug,
		}, nil
	default:
		return domain.Identity{}, apperrors.NewUnauthenticated("unknown subject kind")
	}
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// IdentityFromContext returns the acting identity, falling back to the public
// guest when the route carries no principal.
func IdentityFromContext(c *fiber.Ctx) domain.Identity {
	if principal, ok := PrincipalFromContext(c); ok {
		return principal.Identity
	}
	return domain.Guest()
}
