package clerk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reviewpilot-core/internal/apperror"
	"reviewpilot-core/internal/config"
)

// Client represents a Clerk backend API client
type Client struct {
	apiURL     string
	secretKey  string
	httpClient *http.Client
}

// NewClient creates a new Clerk API client
func NewClient(cfg *config.ClerkConfig) *Client {
	return &Client{
		apiURL:    strings.TrimSuffix(cfg.APIURL, "/"),
		secretKey: cfg.SecretKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// EmailAddress represents an email address from Clerk API
type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

// UserData is the user object shared by the backend API and webhook payloads
type UserData struct {
	ID             string         `json:"id"`
	FirstName      *string        `json:"first_name"`
	LastName       *string        `json:"last_name"`
	ImageURL       *string        `json:"image_url"`
	EmailAddresses []EmailAddress `json:"email_addresses"`
}

// PrimaryEmail returns the first listed email address, or "" when there is none
func (u *UserData) PrimaryEmail() string {
	if len(u.EmailAddresses) == 0 {
		return ""
	}
	return u.EmailAddresses[0].EmailAddress
}

// FullName joins first and last name. It is nil when there is no first name.
func (u *UserData) FullName() *string {
	if u.FirstName == nil || *u.FirstName == "" {
		return nil
	}
	name := *u.FirstName
	if u.LastName != nil && *u.LastName != "" {
		name += " " + *u.LastName
	}
	return &name
}

// WebhookEvent is the envelope Clerk posts to the webhook endpoint
type WebhookEvent struct {
	Type string   `json:"type"`
	Data UserData `json:"data"`
}

// Webhook event types
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// GetUser fetches a user by ID from Clerk API
func (c *Client) GetUser(ctx context.Context, userID string) (*UserData, error) {
	url := fmt.Sprintf("%s/users/%s", c.apiURL, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperror.Upstream(fmt.Errorf("clerk request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperror.NotFound("Clerk user not found")
	case resp.StatusCode != http.StatusOK:
		return nil, apperror.Upstream(fmt.Errorf("clerk API error: %d - %s", resp.StatusCode, string(body)))
	}

	var user UserData
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &user, nil
}
