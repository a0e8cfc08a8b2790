package repo

import (
	"context"
	"time"
)

// GitHubRepository represents a repository fetched from GitHub API
type GitHubRepository struct {
	ID            int64
	Name          string
	FullName      string
	Owner         string
	Private       bool
	Description   *string
	DefaultBranch string
	UpdatedAt     time.Time
	Language      *string
	Stars         int
}

// GitHubPullRequest represents a pull request fetched from GitHub API
type GitHubPullRequest struct {
	ID           int64
	Number       int
	Title        string
	State        string
	Author       string
	AuthorAvatar string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Branch       string
	HeadSHA      string
	Additions    int
	Deletions    int
	ChangedFiles int
	URL          string
	Draft        bool
}

// GitHubService is a domain service interface for reading from GitHub
// Implementation will be in infrastructure layer
type GitHubService interface {
	// RepositoryTotal returns public plus private repository counts of the token's account
	RepositoryTotal(ctx context.Context, accessToken string) (int, error)

	// ListRepositories fetches one page of the token's repositories, most recently updated first
	ListRepositories(ctx context.Context, accessToken string, page, perPage int) ([]*GitHubRepository, error)

	// ListPullRequests fetches one page of pull requests for owner/name
	ListPullRequests(ctx context.Context, accessToken, owner, name string, state PullRequestState, page, perPage int) ([]*GitHubPullRequest, error)
}
