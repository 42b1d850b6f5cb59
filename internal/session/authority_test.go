package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/parcel-service/internal/auth"
	"github.com/spec-kit/parcel-service/internal/directory"
	"github.com/spec-kit/parcel-service/internal/domain"
	"github.com/spec-kit/parcel-service/internal/session"
	apperrors "github.com/spec-kit/parcel-service/pkg/util"
)

type fakeDirectoryClient struct {
	result *session.BootstrapResult
	err    error
}

func (f *fakeDirectoryClient) Bootstrap(context.Context) (*session.BootstrapResult, error) {
	return f.result, f.err
}

type fakeAuthClient struct {
	response     *session.LoginResponse
	err          error
	logoutErr    error
	logoutCalled bool
	logoutToken  string
}

func (f *fakeAuthClient) LoginOrganization(context.Context, string, string) (*session.LoginResponse, error) {
	return f.response, f.err
}

func (f *fakeAuthClient) LoginBranch(context.Context, string, string) (*session.LoginResponse, error) {
	return f.response, f.err
}

func (f *fakeAuthClient) Logout(_ context.Context, refresh string) error {
	f.logoutCalled = true
	f.logoutToken = refresh
	return f.logoutErr
}

func healthyDirectory() *fakeDirectoryClient {
	return &fakeDirectoryClient{result: &session.BootstrapResult{
		Organization: domain.Organization{Slug: "swift-logistics", Title: "Swift Logistics"},
		Branches: []session.BranchInfo{
			{Slug: "off_1", Title: "Central Hub NY"},
			{Slug: "off_2", Title: "Boston Branch"},
		},
	}}
}

type fixture struct {
	authority *session.Authority
	cache     *directory.Cache
	store     session.CredentialStore
	authCli   *fakeAuthClient
	tokens    *auth.TokenManager
}

func newFixture(t *testing.T, dirCli session.DirectoryClient, authCli *fakeAuthClient, now func() time.Time) *fixture {
	t.Helper()
	cache := directory.NewCache()
	store := session.NewMemoryCredentialStore()
	return &fixture{
		authority: session.NewAuthority(session.AuthorityDependencies{
			Directory:  cache,
			DirClient:  dirCli,
			AuthClient: authCli,
			Store:      store,
			Now:        now,
		}),
		cache:   cache,
		store:   store,
		authCli: authCli,
		tokens:  auth.NewTokenManager("test-secret", 60, 24),
	}
}

func TestBootstrap_PopulatesOrganizationAndDirectory(t *testing.T) {
	fx := newFixture(t, healthyDirectory(), &fakeAuthClient{}, nil)

	require.NoError(t, fx.authority.Bootstrap(context.Background()))

	org, ok := fx.authority.Organization()
	require.True(t, ok)
	assert.Equal(t, "Swift Logistics", org.Title)
	assert.Equal(t, "Central Hub NY", fx.cache.ResolveOfficeName("off_1"))
	assert.Equal(t, "Unknown Office", fx.cache.ResolveOfficeName("off_9"))
}

func TestBootstrap_FailureLandsInNoOrganizationState(t *testing.T) {
	fx := newFixture(t, &fakeDirectoryClient{err: errors.New("connection refused")}, &fakeAuthClient{}, nil)
	fx.cache.Replace([]domain.Office{domain.NewOffice("stale", "Stale Office")})

	err := fx.authority.Bootstrap(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "TRANSPORT_FAILURE"))

	_, ok := fx.authority.Organization()
	assert.False(t, ok)
	assert.Empty(t, fx.cache.Offices())
}

func TestRestore_NoStoredCredential(t *testing.T) {
	fx := newFixture(t, healthyDirectory(), &fakeAuthClient{}, nil)

	err := fx.authority.RestoreFromStoredCredential(context.Background())
	assert.ErrorIs(t, err, session.ErrNoStoredCredential)

	_, ok := fx.authority.CurrentIdentity()
	assert.False(t, ok)
}

func TestRestore_MalformedCredentialIsDiscarded(t *testing.T) {
	fx := newFixture(t, healthyDirectory(), &fakeAuthClient{}, nil)
	ctx := context.Background()
	require.NoError(t, fx.store.Save(ctx, "not-a-jwt", "also-garbage"))

	err := fx.authority.RestoreFromStoredCredential(ctx)
	assert.ErrorIs(t, err, session.ErrCredentialMalformed)

	_, ok := fx.authority.CurrentIdentity()
	assert.False(t, ok)
	access, refresh, err := fx.store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, access)
	assert.Empty(t, refresh)
}

func TestRestore_ExpiredCredentialIsDiscarded(t *testing.T) {
	// The clock sits past the token's one hour TTL.
	clock := func() time.Time { return time.Now().Add(2 * time.Hour) }
	fx := newFixture(t, healthyDirectory(), &fakeAuthClient{}, clock)
	ctx := context.Background()

	pair, err := fx.tokens.GeneratePair("off_1", domain.SubjectKindBranch)
	require.NoError(t, err)
	require.NoError(t, fx.store.Save(ctx, pair.Access, pair.Refresh))

	err = fx.authority.RestoreFromStoredCredential(ctx)
	assert.ErrorIs(t, err, session.ErrCredentialExpired)

	_, ok := fx.authority.CurrentIdentity()
	assert.False(t, ok)
	access, _, err := fx.store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, access)
}

func TestRestore_ValidBranchCredential(t *testing.T) {
	fx := newFixture(t, healthyDirectory(), &fakeAuthClient{}, nil)
	ctx := context.Background()
	require.NoError(t, fx.authority.Bootstrap(ctx))

	pair, err := fx.tokens.GeneratePair("off_2", domain.SubjectKindBranch)
	require.NoError(t, err)
	require.NoError(t, fx.store.Save(ctx, pair.Access, pair.Refresh))

	require.NoError(t, fx.authority.RestoreFromStoredCredential(ctx))

	identity, ok := fx.authority.CurrentIdentity()
	require.True(t, ok)
	assert.Equal(t, domain.RoleBranchAdmin, identity.Role)
	assert.Equal(t, "off_2", identity.OfficeID)
	assert.Equal(t, "Boston Branch", identity.DisplayName)
}

func TestRestore_BranchOutsideDirectoryGetsFallbackName(t *testing.T) {
	fx := newFixture(t, healthyDirectory(), &fakeAuthClient{}, nil)
	ctx := context.Background()

	pair, err := fx.tokens.GeneratePair("off_77", domain.SubjectKindBranch)
	require.NoError(t, err)
	require.NoError(t, fx.store.Save(ctx, pair.Access, pair.Refresh))

	require.NoError(t, fx.authority.RestoreFromStoredCredential(ctx))

	identity, ok := fx.authority.CurrentIdentity()
	require.True(t, ok)
	assert.Equal(t, session.BranchManagerFallback, identity.DisplayName)
}

func TestRestore_ValidOrgCredential(t *testing.T) {
	fx := newFixture(t, healthyDirectory(), &fakeAuthClient{}, nil)
	ctx := context.Background()
	require.NoError(t, fx.authority.Bootstrap(ctx))

	pair, err := fx.tokens.GeneratePair("swift-logistics", domain.SubjectKindOrg)
	require.NoError(t, err)
	require.NoError(t, fx.store.Save(ctx, pair.Access, pair.Refresh))

	require.NoError(t, fx.authority.RestoreFromStoredCredential(ctx))

	identity, ok := fx.authority.CurrentIdentity()
	require.True(t, ok)
	assert.Equal(t, domain.RoleOrgAdmin, identity.Role)
	assert.Equal(t, "Swift Logistics", identity.DisplayName)
	assert.Empty(t, identity.OfficeID)
}

func TestLogin_GuestIsEphemeral(t *testing.T) {
	fx := newFixture(t, healthyDirectory(), &fakeAuthClient{}, nil)
	ctx := context.Background()

	result, err := fx.authority.Login(ctx, domain.RolePublicGuest, session.Credentials{})
	require.NoError(t, err)
	assert.True(t, result.OK)

	identity, ok := fx.authority.CurrentIdentity()
	require.True(t, ok)
	assert.Equal(t, domain.RolePublicGuest, identity.Role)

	// Nothing persisted: a fresh restore finds no credential.
	access, _, err := fx.store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, access)
}

func TestLogin_BranchSuccessPersistsPair(t *testing.T) {
	authCli := &fakeAuthClient{}
	fx := newFixture(t, healthyDirectory(), authCli, nil)
	ctx := context.Background()
	require.NoError(t, fx.authority.Bootstrap(ctx))

	pair, err := fx.tokens.GeneratePair("off_1", domain.SubjectKindBranch)
	require.NoError(t, err)
	authCli.response = &session.LoginResponse{
		OK:      true,
		Access:  pair.Access,
		Refresh: pair.Refresh,
		Title:   "Central Hub NY",
	}

	result, err := fx.authority.Login(ctx, domain.RoleBranchAdmin, session.Credentials{ID: "off_1", Password: "branch123"})
	require.NoError(t, err)
	assert.True(t, result.OK)

	identity, ok := fx.authority.CurrentIdentity()
	require.True(t, ok)
	assert.Equal(t, domain.RoleBranchAdmin, identity.Role)
	assert.Equal(t, "Central Hub NY", identity.DisplayName)

	access, refresh, err := fx.store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, pair.Access, access)
	assert.Equal(t, pair.Refresh, refresh)
}

func TestLogin_RejectionIsNotAnError(t *testing.T) {
	authCli := &fakeAuthClient{response: &session.LoginResponse{OK: false, Message: "Invalid credentials"}}
	fx := newFixture(t, healthyDirectory(), authCli, nil)
	ctx := context.Background()
	require.NoError(t, fx.authority.Bootstrap(ctx))

	result, err := fx.authority.Login(ctx, domain.RoleBranchAdmin, session.Credentials{ID: "off_1", Password: "wrong"})
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Equal(t, "Invalid credentials", result.Message)

	_, ok := fx.authority.CurrentIdentity()
	assert.False(t, ok)
}

func TestLogin_TransportFailure(t *testing.T) {
	authCli := &fakeAuthClient{err: errors.New("dial tcp: connection refused")}
	fx := newFixture(t, healthyDirectory(), authCli, nil)
	ctx := context.Background()
	require.NoError(t, fx.authority.Bootstrap(ctx))

	_, err := fx.authority.Login(ctx, domain.RoleBranchAdmin, session.Credentials{ID: "off_1", Password: "branch123"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "TRANSPORT_FAILURE"))
}

func TestLogin_OrgWithoutOrganization(t *testing.T) {
	fx := newFixture(t, &fakeDirectoryClient{err: errors.New("down")}, &fakeAuthClient{}, nil)
	ctx := context.Background()
	_ = fx.authority.Bootstrap(ctx)

	result, err := fx.authority.Login(ctx, domain.RoleOrgAdmin, session.Credentials{Password: "admin123"})
	require.NoError(t, err)
	assert.False(t, result.OK)
}

func TestLogout_ClearsSessionEvenWhenBoundaryFails(t *testing.T) {
	authCli := &fakeAuthClient{logoutErr: errors.New("boundary down")}
	fx := newFixture(t, healthyDirectory(), authCli, nil)
	ctx := context.Background()
	require.NoError(t, fx.authority.Bootstrap(ctx))

	pair, err := fx.tokens.GeneratePair("off_1", domain.SubjectKindBranch)
	require.NoError(t, err)
	authCli.response = &session.LoginResponse{OK: true, Access: pair.Access, Refresh: pair.Refresh}
	_, err = fx.authority.Login(ctx, domain.RoleBranchAdmin, session.Credentials{ID: "off_1", Password: "branch123"})
	require.NoError(t, err)

	fx.authority.Logout(ctx)

	assert.True(t, authCli.logoutCalled)
	assert.Equal(t, pair.Refresh, authCli.logoutToken)
	_, ok := fx.authority.CurrentIdentity()
	assert.False(t, ok)
	access, _, err := fx.store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, access)
}
