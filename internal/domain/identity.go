package domain

// Role enumerates the actors that can drive the system.
type Role string

const (
	RoleOrgAdmin    Role = "ORG_ADMIN"
	RoleBranchAdmin Role = "BRANCH_ADMIN"
	RolePublicGuest Role = "PUBLIC_GUEST"
)

// SubjectKind differentiates organization vs branch credentials.
type SubjectKind string

const (
	SubjectKindOrg    SubjectKind = "org"
	SubjectKindBranch SubjectKind = "branch"
)

// Identity is the authenticated actor and its role/office scope.
// OfficeID is set only for RoleBranchAdmin.
type Identity struct {
	ID          string
	DisplayName string
	Role        Role
	OfficeID    string
}

// Guest returns the ephemeral public identity. It is never persisted.
func Guest() Identity {
	return Identity{ID: "public", DisplayName: "Guest", Role: RolePublicGuest}
}
