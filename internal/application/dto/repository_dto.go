package dto

import "time"

// RemoteRepositoryResponse is a GitHub repository the user can pick for syncing
type RemoteRepositoryResponse struct {
	GitHubRepoID  int64     `json:"githubRepoId"`
	Name          string    `json:"name"`
	FullName      string    `json:"fullName"`
	Owner         string    `json:"owner"`
	IsPrivate     bool      `json:"isPrivate"`
	Description   *string   `json:"description"`
	DefaultBranch string    `json:"defaultBranch"`
	URL           string    `json:"url"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Language      *string   `json:"language"`
	Stars         int       `json:"stars"`
}

// RemoteRepositoryListResponse is one page of the user's GitHub repositories
type RemoteRepositoryListResponse struct {
	Count        int                         `json:"count"`
	Total        int                         `json:"total"`
	Page         int                         `json:"page"`
	Limit        int                         `json:"limit"`
	TotalPages   int                         `json:"totalPages"`
	Repositories []*RemoteRepositoryResponse `json:"repositories"`
}

// RepositoryResponse represents a saved repository in API responses.
// GitHubRepoID is a string so 64-bit ids survive JavaScript clients.
type RepositoryResponse struct {
	ID            string    `json:"id"`
	GitHubRepoID  string    `json:"githubRepoId"`
	Name          string    `json:"name"`
	FullName      string    `json:"fullName"`
	Owner         string    `json:"owner"`
	IsPrivate     bool      `json:"isPrivate"`
	Description   *string   `json:"description"`
	DefaultBranch string    `json:"defaultBranch"`
	URL           string    `json:"url"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// SyncRepositoriesRequest selects remote repositories to save
type SyncRepositoriesRequest struct {
	ClerkID       string  `json:"clerkId"`
	RepositoryIDs []int64 `json:"repositoryIds" binding:"required"`
}

// SyncRepositoriesResponse lists the repositories that were upserted
type SyncRepositoriesResponse struct {
	Message      string                `json:"message"`
	Count        int                   `json:"count"`
	Repositories []*RepositoryResponse `json:"repositories"`
}

// SavedRepositoryListResponse lists the user's active repositories
type SavedRepositoryListResponse struct {
	Count        int                   `json:"count"`
	Repositories []*RepositoryResponse `json:"repositories"`
}

// PullRequestResponse summarises a pull request
type PullRequestResponse struct {
	ID           int64     `json:"id"`
	Number       int       `json:"number"`
	Title        string    `json:"title"`
	State        string    `json:"state"`
	Author       string    `json:"author"`
	AuthorAvatar string    `json:"authorAvatar"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Branch       string    `json:"branch"`
	CommitSHA    string    `json:"commitSHA"`
	Additions    int       `json:"additions"`
	Deletions    int       `json:"deletions"`
	FilesChanged int       `json:"filesChanged"`
	URL          string    `json:"url"`
	Draft        bool      `json:"draft"`
}

// PullRequestListResponse is one page of pull requests for a repository
type PullRequestListResponse struct {
	Count int                    `json:"count"`
	Pulls []*PullRequestResponse `json:"pulls"`
	Repo  string                 `json:"repo"`
}

// MessageResponse carries a human readable confirmation
type MessageResponse struct {
	Message string `json:"message"`
}
