package dto

import "time"

// OrganizationLoginRequest payload.
type OrganizationLoginRequest struct {
	OrgID    string `json:"org_id"`
	Password string `json:"password"`
}

// BranchLoginRequest payload.
type BranchLoginRequest struct {
	BranchID string `json:"branch_id"`
	Password string `json:"password"`
}

// RefreshRequest payload, also used for logout.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// TokenPairResponse carries an issued credential pair.
type TokenPairResponse struct {
	Access           string    `json:"access"`
	Refresh          string    `json:"refresh"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// TitledEntity names the organization or branch embedded in a login response.
type TitledEntity struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// BranchSummary is the directory boundary's branch listing entry.
type BranchSummary struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}
