package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/parcel-service/internal/auth"
	"github.com/spec-kit/parcel-service/internal/config"
	"github.com/spec-kit/parcel-service/internal/domain"
	"github.com/spec-kit/parcel-service/internal/repository"
	"github.com/spec-kit/parcel-service/internal/service"
	apperrors "github.com/spec-kit/parcel-service/pkg/util"
)

func newAuthService(t *testing.T) *service.AuthService {
	t.Helper()

	orgHash, err := auth.HashPassword("admin123", 4)
	require.NoError(t, err)
	branchHash, err := auth.HashPassword("branch123", 4)
	require.NoError(t, err)

	cfg := config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.AccessTokenTTLMins = 60
	cfg.Auth.RefreshTokenTTLHours = 24

	return service.NewAuthService(cfg, service.AuthDependencies{
		OrganizationRepo: repository.NewMemoryOrganizationRepository(domain.OrganizationAccount{
			Slug:         "swift-logistics",
			Title:        "Swift Logistics",
			PasswordHash: orgHash,
		}),
		BranchRepo: repository.NewMemoryBranchRepository([]domain.BranchAccount{
			{Slug: "off_1", Title: "Central Hub NY", PasswordHash: branchHash},
		}),
		Blacklist: repository.NewMemoryTokenBlacklist(),
	})
}

func TestLoginOrganization(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	org, pair, err := svc.LoginOrganization(ctx, "swift-logistics", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "Swift Logistics", org.Title)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)

	claims, err := svc.TokenManager().ParseToken(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, domain.SubjectKindOrg, claims.SubjectKind)
}

func TestLoginOrganization_BadPassword(t *testing.T) {
	svc := newAuthService(t)

	_, _, err := svc.LoginOrganization(context.Background(), "swift-logistics", "nope")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "AUTH_REJECTED"))
}

func TestLoginBranch(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	branch, pair, err := svc.LoginBranch(ctx, "off_1", "branch123")
	require.NoError(t, err)
	assert.Equal(t, "Central Hub NY", branch.Title)

	claims, err := svc.TokenManager().ParseToken(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, "off_1", claims.SubjectID)
	assert.Equal(t, domain.SubjectKindBranch, claims.SubjectKind)
}

func TestLoginBranch_Unknown(t *testing.T) {
	svc := newAuthService(t)

	_, _, err := svc.LoginBranch(context.Background(), "off_99", "branch123")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "AUTH_REJECTED"))
}

func TestRefresh_RotationBlocksReplay(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, pair, err := svc.LoginBranch(ctx, "off_1", "branch123")
	require.NoError(t, err)

	rotated, claims, err := svc.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	assert.Equal(t, "off_1", claims.SubjectID)
	assert.NotEqual(t, pair.Refresh, rotated.Refresh)

	// The consumed refresh token may not be replayed.
	_, _, err = svc.Refresh(ctx, pair.Refresh)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "AUTH_EXPIRED"))

	// The rotated one still works.
	_, _, err = svc.Refresh(ctx, rotated.Refresh)
	require.NoError(t, err)
}

func TestRefresh_GarbageToken(t *testing.T) {
	svc := newAuthService(t)

	_, _, err := svc.Refresh(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "AUTH_EXPIRED"))
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, pair, err := svc.LoginBranch(ctx, "off_1", "branch123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, pair.Refresh))

	_, _, err = svc.Refresh(ctx, pair.Refresh)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "AUTH_EXPIRED"))
}
