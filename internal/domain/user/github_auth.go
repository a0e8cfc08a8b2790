package user

import (
	"context"
)

// OAuthToken is the result of the authorization-code exchange
type OAuthToken struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// GitHubAccount is the GitHub identity behind an access token
type GitHubAccount struct {
	Login             string
	ID                int64
	AvatarURL         string
	Name              string
	Email             string
	PublicRepos       int
	TotalPrivateRepos int
}

// GitHubAuthenticator is a domain service interface for the GitHub OAuth flow
// Implementation will be in infrastructure layer
type GitHubAuthenticator interface {
	// AuthorizationURL returns the consent screen URL carrying state
	AuthorizationURL(state string) string

	// ExchangeCode trades an authorization code for tokens
	ExchangeCode(ctx context.Context, code string) (*OAuthToken, error)

	// AuthenticatedAccount fetches the account an access token belongs to
	AuthenticatedAccount(ctx context.Context, accessToken string) (*GitHubAccount, error)

	// RevokeGrant revokes the OAuth grant behind an access token
	RevokeGrant(ctx context.Context, accessToken string) error
}
