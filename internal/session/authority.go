// Package session owns the current-identity lifecycle: restoring identity
// from a stored credential at startup, deriving identity from a login
// response, and clearing identity on logout.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/parcel-service/internal/auth"
	"github.com/spec-kit/parcel-service/internal/directory"
	"github.com/spec-kit/parcel-service/internal/domain"
	apperrors "github.com/spec-kit/parcel-service/pkg/util"
)

// BranchManagerFallback names a branch identity whose office is not (yet) in
// the directory.
const BranchManagerFallback = "Branch Manager"

// Restore failures. All of them leave the identity absent and the stored
// credentials cleared; none of them is surfaced to the user.
var (
	ErrNoStoredCredential  = errors.New("no stored credential")
	ErrCredentialExpired   = errors.New("stored credential expired")
	ErrCredentialMalformed = errors.New("stored credential malformed")
)

// Authority holds the single current-identity slot. One session operation
// runs at a time; concurrent login/logout attempts serialize on the mutex.
type Authority struct {
	directory  *directory.Cache
	dirClient  DirectoryClient
	authClient AuthClient
	store      CredentialStore
	logger     *zap.Logger
	now        func() time.Time

	mu       sync.Mutex
	org      *domain.Organization
	booted   bool
	identity *domain.Identity
}

// AuthorityDependencies bundles collaborators for the authority.
type AuthorityDependencies struct {
	Directory  *directory.Cache
	DirClient  DirectoryClient
	AuthClient AuthClient
	Store      CredentialStore
	Logger     *zap.Logger
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// NewAuthority builds the authority with an absent identity.
func NewAuthority(deps AuthorityDependencies) *Authority {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authority{
		directory:  deps.Directory,
		dirClient:  deps.DirClient,
		authClient: deps.AuthClient,
		store:      deps.Store,
		logger:     logger,
		now:        now,
	}
}

// Bootstrap loads the organization and its branches from the directory
// boundary, replacing the office directory wholesale. On failure the system
// lands in an explicit "no organization" state with an empty directory.
func (a *Authority) Bootstrap(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	result, err := a.dirClient.Bootstrap(ctx)
	if err != nil {
		a.org = nil
		a.booted = true
		a.directory.Replace(nil)
		return apperrors.NewTransportFailure("directory bootstrap failed", err)
	}

	offices := make([]domain.Office, 0, len(result.Branches))
	for _, branch := range result.Branches {
		offices = append(offices, domain.NewOffice(branch.Slug, branch.Title))
	}
	a.directory.Replace(offices)

	org := result.Organization
	a.org = &org
	a.booted = true
	return nil
}

// Organization returns the bootstrapped organization. ok=false means either
// "still loading" (before Bootstrap) or the terminal "no organization" state.
func (a *Authority) Organization() (domain.Organization, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.org == nil {
		return domain.Organization{}, false
	}
	return *a.org, true
}

// CurrentIdentity returns the identity occupying the slot, if any.
func (a *Authority) CurrentIdentity() (domain.Identity, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.identity == nil {
		return domain.Identity{}, false
	}
	return *a.identity, true
}

// RestoreFromStoredCredential rebuilds the identity from a persisted access
// credential. Expired or malformed credentials are discarded silently: the
// returned error is typed for tests but must not be surfaced as a failure.
func (a *Authority) RestoreFromStoredCredential(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	access, _, err := a.store.Load(ctx)
	if err != nil {
		return apperrors.NewTransportFailure("credential store unavailable", err)
	}
	if access == "" {
		return ErrNoStoredCredential
	}

	claims, err := auth.DecodeClaims(access)
	if err != nil {
		a.discardSession(ctx)
		return ErrCredentialMalformed
	}
	if !claims.ExpiresAt.Time.After(a.now()) {
		a.discardSession(ctx)
		return ErrCredentialExpired
	}

	identity := a.deriveIdentity(claims, "")
	a.identity = &identity
	return nil
}

// Login authenticates as the given role. Org and branch admins go through
// the auth boundary and have their credential pair persisted; the public
// guest is ephemeral and session-less.
func (a *Authority) Login(ctx context.Context, role domain.Role, creds Credentials) (LoginResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var (
		resp *LoginResponse
		err  error
	)
	switch role {
	case domain.RolePublicGuest:
		guest := domain.Guest()
		a.identity = &guest
		return LoginResult{OK: true, Message: "Logged in as guest"}, nil
	case domain.RoleOrgAdmin:
		if a.org == nil {
			return LoginResult{OK: false, Message: "organization unavailable"}, nil
		}
		resp, err = a.authClient.LoginOrganization(ctx, a.org.Slug, creds.Password)
	case domain.RoleBranchAdmin:
		resp, err = a.authClient.LoginBranch(ctx, creds.ID, creds.Password)
	default:
		return LoginResult{}, apperrors.NewValidationError("unknown role", nil)
	}
	if err != nil {
		return LoginResult{}, apperrors.NewTransportFailure("auth boundary unreachable", err)
	}
	if !resp.OK {
		message := resp.Message
		if message == "" {
			message = "Login failed"
		}
		return LoginResult{OK: false, Message: message}, nil
	}

	claims, err := auth.DecodeClaims(resp.Access)
	if err != nil {
		// A malformed credential from our own auth boundary is unexpected,
		// but it degrades to a failed login rather than propagating.
		a.discardSession(ctx)
		return LoginResult{}, apperrors.NewAuthExpired("received unusable credential")
	}

	if err := a.store.Save(ctx, resp.Access, resp.Refresh); err != nil {
		return LoginResult{}, apperrors.NewTransportFailure("credential store unavailable", err)
	}

	identity := a.deriveIdentity(claims, resp.Title)
	a.identity = &identity
	message := resp.Message
	if message == "" {
		message = "Login successful"
	}
	return LoginResult{OK: true, Message: message}, nil
}

// Logout informs the auth boundary best-effort, then unconditionally clears
// the stored credentials and the identity slot.
func (a *Authority) Logout(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, refresh, err := a.store.Load(ctx)
	if err == nil && refresh != "" {
		if err := a.authClient.Logout(ctx, refresh); err != nil {
			a.logger.Warn("logout call failed", zap.Error(err))
		}
	}
	a.discardSession(ctx)
}

// deriveIdentity maps decoded claims to an identity. The role comes solely
// from the subject kind; title overrides the directory-derived display name
// when the login response embeds one.
func (a *Authority) deriveIdentity(claims *auth.Claims, title string) domain.Identity {
	switch claims.SubjectKind {
	case domain.SubjectKindBranch:
		name := title
		if name == "" {
			if office, ok := a.directory.Lookup(claims.SubjectID); ok {
				name = office.DisplayName
			} else {
				name = BranchManagerFallback
			}
		}
		return domain.Identity{
			ID:          claims.SubjectID,
			DisplayName: name,
			Role:        domain.RoleBranchAdmin,
			OfficeID:    claims.SubjectID,
		}
	default:
		name := title
		if name == "" && a.org != nil {
			name = a.org.Title
		}
		if name == "" {
			name = claims.SubjectID
		}
		return domain.Identity{
			ID:          claims.SubjectID,
			DisplayName: name,
			Role:        domain.RoleOrgAdmin,
		}
	}
}

func (a *Authority) discardSession(ctx context.Context) {
	if err := a.store.Clear(ctx); err != nil {
		a.logger.Warn("clearing stored credentials failed", zap.Error(err))
	}
	a.identity = nil
}
