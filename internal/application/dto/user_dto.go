package dto

import "time"

// SyncUserRequest carries the signed-in user's identity after sign-in
type SyncUserRequest struct {
	ClerkID   string  `json:"clerkId"`
	Email     string  `json:"email"`
	FullName  *string `json:"fullName"`
	AvatarURL *string `json:"avatarUrl"`
}

// UserResponse represents user data in API responses. Tokens are never included.
type UserResponse struct {
	ID              string    `json:"id"`
	ClerkID         string    `json:"clerkId"`
	Email           string    `json:"email"`
	FullName        *string   `json:"fullName"`
	AvatarURL       *string   `json:"avatarUrl"`
	GitHubUsername  *string   `json:"githubUsername"`
	GitHubConnected bool      `json:"githubConnected"`
	CreatedAt       time.Time `json:"createdAt"`
}

// SyncUserResponse is returned by the identity sync endpoint
type SyncUserResponse struct {
	Message   string        `json:"message"`
	User      *UserResponse `json:"user"`
	IsNewUser bool          `json:"isNewUser"`
}

// CurrentUserResponse wraps a single user
type CurrentUserResponse struct {
	User *UserResponse `json:"user"`
}

// DashboardStatsResponse holds the dashboard counters
type DashboardStatsResponse struct {
	TotalPRs      int    `json:"totalPRs"`
	ReviewedToday int    `json:"reviewedToday"`
	AvgRiskScore  int    `json:"avgRiskScore"`
	IssuesCaught  int    `json:"issuesCaught"`
	TimeSaved     string `json:"timeSaved"`
	CostSaved     string `json:"costSaved"`
	RepoCount     int64  `json:"repoCount"`
}

// AuthURLResponse carries the GitHub consent screen URL
type AuthURLResponse struct {
	AuthURL string `json:"authUrl"`
}

// WebhookResponse acknowledges a webhook delivery
type WebhookResponse struct {
	Success bool `json:"success"`
}
