package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/parcel-service/internal/auth"
	"github.com/spec-kit/parcel-service/internal/config"
	"github.com/spec-kit/parcel-service/internal/domain"
	"github.com/spec-kit/parcel-service/internal/repository"
	apperrors "github.com/spec-kit/parcel-service/pkg/util"
)

// AuthService issues and revokes credential pairs for organizations and
// branches. Access tokens stay valid until expiry; logout and refresh
// rotation blacklist the refresh token's jti.
type AuthService struct {
	orgs      repository.OrganizationRepository
	branches  repository.BranchRepository
	blacklist repository.TokenBlacklist
	tokenMgr  *auth.TokenManager
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	OrganizationRepo repository.OrganizationRepository
	BranchRepo       repository.BranchRepository
	Blacklist        repository.TokenBlacklist
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		orgs:      deps.OrganizationRepo,
		branches:  deps.BranchRepo,
		blacklist: deps.Blacklist,
		tokenMgr:  auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMins, cfg.Auth.RefreshTokenTTLHours),
	}
}

// LoginOrganization authenticates the tenant by slug and secret.
func (s *AuthService) LoginOrganization(ctx context.Context, slug, password string) (*domain.OrganizationAccount, auth.TokenPair, error) {
	org, err := s.orgs.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.TokenPair{}, apperrors.NewAuthRejected("invalid organization id or password")
		}
		return nil, auth.TokenPair{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(org.PasswordHash, password); err != nil {
		return nil, auth.TokenPair{}, apperrors.NewAuthRejected("invalid organization id or password")
	}
	pair, err := s.tokenMgr.GeneratePair(org.Slug, domain.SubjectKindOrg)
	if err != nil {
		return nil, auth.TokenPair{}, apperrors.NewInternalError(err)
	}
	return org, pair, nil
}

// LoginBranch authenticates a branch by slug and secret.
func (s *AuthService) LoginBranch(ctx context.Context, slug, password string) (*domain.BranchAccount, auth.TokenPair, error) {
	branch, err := s.branches.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.TokenPair{}, apperrors.NewAuthRejected("invalid branch id or password")
		}
		return nil, auth.TokenPair{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(branch.PasswordHash, password); err != nil {
		return nil, auth.TokenPair{}, apperrors.NewAuthRejected("invalid branch id or password")
	}
	pair, err := s.tokenMgr.GeneratePair(branch.Slug, domain.SubjectKindBranch)
	if err != nil {
		return nil, auth.TokenPair{}, apperrors.NewInternalError(err)
	}
	return branch, pair, nil
}

// Refresh rotates a credential pair. The presented refresh token is
// blacklisted so it cannot be replayed.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, *auth.Claims, error) {
	claims, err := s.tokenMgr.ParseToken(refreshToken)
	if err != nil {
		return auth.TokenPair{}, nil, apperrors.NewAuthExpired("invalid or expired refresh token")
	}
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return auth.TokenPair{}, nil, apperrors.MapError(err)
	}
	if revoked {
		return auth.TokenPair{}, nil, apperrors.NewAuthExpired("invalid or expired refresh token")
	}

	if err := s.revokeUntilExpiry(ctx, claims); err != nil {
		return auth.TokenPair{}, nil, apperrors.MapError(err)
	}

	pair, err := s.tokenMgr.GeneratePair(claims.SubjectID, claims.SubjectKind)
	if err != nil {
		return auth.TokenPair{}, nil, apperrors.NewInternalError(err)
	}
	return pair, claims, nil
}

// Logout invalidates the refresh token. Access tokens are short-lived and run
// out on their own.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokenMgr.ParseToken(refreshToken)
	if err != nil {
		return apperrors.NewAuthExpired("invalid or expired refresh token")
	}
	if err := s.revokeUntilExpiry(ctx, claims); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *AuthService) revokeUntilExpiry(ctx context.Context, claims *auth.Claims) error {
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining > ttl {
			ttl = remaining
		}
	}
	return s.blacklist.Revoke(ctx, claims.ID, ttl)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
