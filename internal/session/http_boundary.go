package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spec-kit/parcel-service/internal/domain"
)

// APIClient implements the directory and auth boundaries over the service's
// HTTP API. Timeouts and retries live here, outside the session core.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient builds a client for the given base URL.
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Bootstrap implements DirectoryClient.
func (c *APIClient) Bootstrap(ctx context.Context) (*BootstrapResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/organization/health", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory boundary returned status %d", resp.StatusCode)
	}

	var body struct {
		Data struct {
			Slug     string       `json:"slug"`
			Title    string       `json:"title"`
			Branches []BranchInfo `json:"branches"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return &BootstrapResult{
		Organization: domain.Organization{Slug: body.Data.Slug, Title: body.Data.Title},
		Branches:     body.Data.Branches,
	}, nil
}

// LoginOrganization implements AuthClient.
func (c *APIClient) LoginOrganization(ctx context.Context, slug, password string) (*LoginResponse, error) {
	return c.login(ctx, "/api/organization/login", map[string]string{
		"org_id":   slug,
		"password": password,
	})
}

// LoginBranch implements AuthClient.
func (c *APIClient) LoginBranch(ctx context.Context, branchID, password string) (*LoginResponse, error) {
	return c.login(ctx, "/api/organization/branch/login", map[string]string{
		"branch_id": branchID,
		"password":  password,
	})
}

func (c *APIClient) login(ctx context.Context, path string, payload map[string]string) (*LoginResponse, error) {
	resp, err := c.post(ctx, path, payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		var envelope errorEnvelope
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		message := envelope.Error.Message
		if message == "" {
			message = "Login failed"
		}
		return &LoginResponse{OK: false, Message: message}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth boundary returned status %d", resp.StatusCode)
	}

	var body struct {
		Data struct {
			Access       string `json:"access"`
			Refresh      string `json:"refresh"`
			Organization *struct {
				Title string `json:"title"`
			} `json:"organization"`
			Branch *struct {
				Title string `json:"title"`
			} `json:"branch"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	result := &LoginResponse{
		OK:      true,
		Message: "Login successful",
		Access:  body.Data.Access,
		Refresh: body.Data.Refresh,
	}
	if body.Data.Organization != nil {
		result.Title = body.Data.Organization.Title
	}
	if body.Data.Branch != nil {
		result.Title = body.Data.Branch.Title
	}
	return result, nil
}

// TrackedParcel is the public tracking view of a parcel.
type TrackedParcel struct {
	TrackingID    string `json:"tracking_id"`
	SenderName    string `json:"sender_name"`
	ReceiverName  string `json:"receiver_name"`
	CurrentStatus string `json:"current_status"`
	History       []struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
		Location  string `json:"location"`
		Note      string `json:"note"`
	} `json:"history"`
}

// Track queries a parcel by exact tracking id. Available without a session.
func (c *APIClient) Track(ctx context.Context, trackingID string) (*TrackedParcel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/shipments/track/"+trackingID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tracking returned status %d", resp.StatusCode)
	}

	var body struct {
		Data TrackedParcel `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return &body.Data, nil
}

// Logout implements AuthClient.
func (c *APIClient) Logout(ctx context.Context, refresh string) error {
	resp, err := c.post(ctx, "/api/organization/logout", map[string]string{"refresh": refresh})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("logout returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *APIClient) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(req)
}
