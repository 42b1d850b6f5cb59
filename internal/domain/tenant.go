package domain

// OrganizationAccount is the tenant's login-capable record on the auth side.
type OrganizationAccount struct {
	Slug         string
	Title        string
	PasswordHash string
}

// BranchAccount is a branch's login-capable record on the auth side.
type BranchAccount struct {
	Slug         string
	Title        string
	PasswordHash string
}
