package session

import (
	"context"

	"github.com/spec-kit/parcel-service/internal/domain"
)

// BranchInfo is the directory boundary's slug/title pair for one branch.
type BranchInfo struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// BootstrapResult is the directory boundary's response: organization
// metadata with the embedded branch list.
type BootstrapResult struct {
	Organization domain.Organization
	Branches     []BranchInfo
}

// DirectoryClient is the external directory boundary consumed at startup.
type DirectoryClient interface {
	Bootstrap(ctx context.Context) (*BootstrapResult, error)
}

// LoginResponse carries the auth boundary's answer. OK=false with a message
// is an expected rejection (bad secret); transport problems surface as
// errors from the client instead.
type LoginResponse struct {
	OK      bool
	Message string
	Access  string
	Refresh string
	// Title is the organization/branch display name embedded in the
	// successful response.
	Title string
}

// AuthClient is the external auth boundary.
type AuthClient interface {
	LoginOrganization(ctx context.Context, slug, password string) (*LoginResponse, error)
	LoginBranch(ctx context.Context, branchID, password string) (*LoginResponse, error)
	Logout(ctx context.Context, refresh string) error
}

// Credentials is the secret material supplied to Login.
type Credentials struct {
	ID       string
	Password string
}

// LoginResult reports the outcome of a login attempt. Expected failures (bad
// password) come back as OK=false, never as an error.
type LoginResult struct {
	OK      bool
	Message string
}
