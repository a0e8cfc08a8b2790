package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"reviewpilot-core/internal/apperror"

	gogithub "github.com/google/go-github/v37/github"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
)

// Scopes requested on the consent screen
var Scopes = []string{"repo", "read:user", "user:email", "write:repo_hook"}

// Config holds the OAuth application and API endpoints
type Config struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	AuthURL      string
	TokenURL     string
	APIURL       string
}

// Client handles GitHub OAuth and REST API interactions
type Client struct {
	oauth        *oauth2.Config
	clientID     string
	clientSecret string
	apiURL       *url.URL
	httpClient   *http.Client
}

// NewClient creates a new GitHub client. Empty endpoints fall back to github.com.
func NewClient(cfg Config) (*Client, error) {
	endpoint := oauth2.Endpoint{
		AuthURL:   githuboauth.Endpoint.AuthURL,
		TokenURL:  githuboauth.Endpoint.TokenURL,
		AuthStyle: oauth2.AuthStyleInParams,
	}
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}

	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = "https://api.github.com/"
	}
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}
	parsed, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub API URL: %w", err)
	}

	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       Scopes,
			Endpoint:     endpoint,
		},
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		apiURL:       parsed,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Token is the result of an authorization-code exchange
type Token struct {
	AccessToken  string
	RefreshToken string
	// ExpiresIn is zero when GitHub issued a non-expiring token
	ExpiresIn int64
}

// User is the authenticated GitHub account
type User struct {
	Login             string
	ID                int64
	AvatarURL         string
	Name              string
	Email             string
	PublicRepos       int
	TotalPrivateRepos int
}

// Repository represents a GitHub repository from the API
type Repository struct {
	ID            int64
	Name          string
	FullName      string
	Owner         string
	Private       bool
	Description   *string
	DefaultBranch string
	HTMLURL       string
	UpdatedAt     time.Time
	Language      *string
	Stars         int
}

// PullRequest represents a pull request from the API
type PullRequest struct {
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
	HTMLURL      string
	Draft        bool
}

// AuthCodeURL returns the authorize URL carrying state
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// ExchangeCode trades an authorization code for tokens
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, apperror.TokenExchange("failed to exchange authorization code", err)
	}
	if tok.AccessToken == "" {
		return nil, apperror.TokenExchange("token response has no access token", nil)
	}

	return &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    expiresIn(tok),
	}, nil
}

// expiresIn reads expires_in from the raw token response. Its type depends on
// whether GitHub answered form-encoded or JSON.
func expiresIn(tok *oauth2.Token) int64 {
	switch v := tok.Extra("expires_in").(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	}
	return 0
}

// AuthenticatedUser fetches the account the token belongs to
func (c *Client) AuthenticatedUser(ctx context.Context, token string) (*User, error) {
	u, _, err := c.api(token).Users.Get(ctx, "")
	if err != nil {
		return nil, classify(err)
	}

	return &User{
		Login:             u.GetLogin(),
		ID:                u.GetID(),
		AvatarURL:         u.GetAvatarURL(),
		Name:              u.GetName(),
		Email:             u.GetEmail(),
		PublicRepos:       u.GetPublicRepos(),
		TotalPrivateRepos: int(u.GetTotalPrivateRepos()),
	}, nil
}

// ListRepositories lists one page of the repositories the token can see,
// most recently updated first
func (c *Client) ListRepositories(ctx context.Context, token string, page, perPage int) ([]*Repository, error) {
	opt := &gogithub.RepositoryListOptions{
		Visibility:  "all",
		Affiliation: "owner,collaborator,organization_member",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: gogithub.ListOptions{Page: page, PerPage: perPage},
	}

	repos, _, err := c.api(token).Repositories.List(ctx, "", opt)
	if err != nil {
		return nil, classify(err)
	}

	result := make([]*Repository, 0, len(repos))
	for _, r := range repos {
		result = append(result, &Repository{
			ID:            r.GetID(),
			Name:          r.GetName(),
			FullName:      r.GetFullName(),
			Owner:         r.GetOwner().GetLogin(),
			Private:       r.GetPrivate(),
			Description:   r.Description,
			DefaultBranch: r.GetDefaultBranch(),
			HTMLURL:       r.GetHTMLURL(),
			UpdatedAt:     r.GetUpdatedAt().Time,
			Language:      r.Language,
			Stars:         r.GetStargazersCount(),
		})
	}
	return result, nil
}

// ListPullRequests lists one page of pull requests of owner/repo,
// most recently updated first
func (c *Client) ListPullRequests(ctx context.Context, token, owner, repo, state string, page, perPage int) ([]*PullRequest, error) {
	opt := &gogithub.PullRequestListOptions{
		State:       state,
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: gogithub.ListOptions{Page: page, PerPage: perPage},
	}

	pulls, _, err := c.api(token).PullRequests.List(ctx, owner, repo, opt)
	if err != nil {
		return nil, classify(err)
	}

	result := make([]*PullRequest, 0, len(pulls))
	for _, pr := range pulls {
		result = append(result, &PullRequest{
			ID:           pr.GetID(),
			Number:       pr.GetNumber(),
			Title:        pr.GetTitle(),
			State:        pr.GetState(),
			Author:       pr.GetUser().GetLogin(),
			AuthorAvatar: pr.GetUser().GetAvatarURL(),
			CreatedAt:    pr.GetCreatedAt(),
			UpdatedAt:    pr.GetUpdatedAt(),
			Branch:       pr.GetHead().GetRef(),
			HeadSHA:      pr.GetHead().GetSHA(),
			Additions:    pr.GetAdditions(),
			Deletions:    pr.GetDeletions(),
			ChangedFiles: pr.GetChangedFiles(),
			HTMLURL:      pr.GetHTMLURL(),
			Draft:        pr.GetDraft(),
		})
	}
	return result, nil
}

// RevokeGrant deletes the OAuth grant of token, authenticating as the OAuth app
func (c *Client) RevokeGrant(ctx context.Context, token string) error {
	tp := &gogithub.BasicAuthTransport{
		Username:  c.clientID,
		Password:  c.clientSecret,
		Transport: c.httpClient.Transport,
	}
	client := gogithub.NewClient(&http.Client{Transport: tp, Timeout: c.httpClient.Timeout})
	client.BaseURL = c.apiURL

	if _, err := client.Authorizations.DeleteGrant(ctx, c.clientID, token); err != nil {
		return classify(err)
	}
	return nil
}

func (c *Client) api(token string) *gogithub.Client {
	tc := &http.Client{
		Timeout: c.httpClient.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   c.httpClient.Transport,
		},
	}
	client := gogithub.NewClient(tc)
	client.BaseURL = c.apiURL
	return client
}

// classify maps go-github errors onto upstream error kinds
func classify(err error) error {
	var errResp *gogithub.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		switch errResp.Response.StatusCode {
		case http.StatusUnauthorized:
			return apperror.UpstreamAuth(err)
		case http.StatusNotFound:
			return apperror.UpstreamNotFound(err)
		}
	}
	return apperror.Upstream(err)
}
