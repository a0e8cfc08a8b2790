package github

import (
	"context"

	"reviewpilot-core/internal/domain/repo"
	"reviewpilot-core/internal/domain/user"
	"reviewpilot-core/internal/github"
	"reviewpilot-core/internal/metrics"
)

// GitHubServiceImpl implements the domain repo.GitHubService and
// user.GitHubAuthenticator interfaces
type GitHubServiceImpl struct {
	client *github.Client
}

// NewGitHubService creates a new GitHub service implementation
func NewGitHubService(client *github.Client) *GitHubServiceImpl {
	return &GitHubServiceImpl{client: client}
}

var (
	_ repo.GitHubService       = (*GitHubServiceImpl)(nil)
	_ user.GitHubAuthenticator = (*GitHubServiceImpl)(nil)
)

func (g *GitHubServiceImpl) AuthorizationURL(state string) string {
	return g.client.AuthCodeURL(state)
}

func (g *GitHubServiceImpl) ExchangeCode(ctx context.Context, code string) (*user.OAuthToken, error) {
	tok, err := g.client.ExchangeCode(ctx, code)
	metrics.ObserveGitHubCall("exchange_code", err)
	if err != nil {
		return nil, err
	}

	return &user.OAuthToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    tok.ExpiresIn,
	}, nil
}

func (g *GitHubServiceImpl) AuthenticatedAccount(ctx context.Context, accessToken string) (*user.GitHubAccount, error) {
	u, err := g.client.AuthenticatedUser(ctx, accessToken)
	metrics.ObserveGitHubCall("get_user", err)
	if err != nil {
		return nil, err
	}

	return &user.GitHubAccount{
		Login:             u.Login,
		ID:                u.ID,
		AvatarURL:         u.AvatarURL,
		Name:              u.Name,
		Email:             u.Email,
		PublicRepos:       u.PublicRepos,
		TotalPrivateRepos: u.TotalPrivateRepos,
	}, nil
}

func (g *GitHubServiceImpl) RevokeGrant(ctx context.Context, accessToken string) error {
	err := g.client.RevokeGrant(ctx, accessToken)
	metrics.ObserveGitHubCall("revoke_grant", err)
	return err
}

func (g *GitHubServiceImpl) RepositoryTotal(ctx context.Context, accessToken string) (int, error) {
	account, err := g.AuthenticatedAccount(ctx, accessToken)
	if err != nil {
		return 0, err
	}
	return account.PublicRepos + account.TotalPrivateRepos, nil
}

func (g *GitHubServiceImpl) ListRepositories(ctx context.Context, accessToken string, page, perPage int) ([]*repo.GitHubRepository, error) {
	githubRepos, err := g.client.ListRepositories(ctx, accessToken, page, perPage)
	metrics.ObserveGitHubCall("list_repositories", err)
	if err != nil {
		return nil, err
	}

	domainRepos := make([]*repo.GitHubRepository, len(githubRepos))
	for i, ghRepo := range githubRepos {
		domainRepos[i] = &repo.GitHubRepository{
			ID:            ghRepo.ID,
			Name:          ghRepo.Name,
			FullName:      ghRepo.FullName,
			Owner:         ghRepo.Owner,
			Private:       ghRepo.Private,
			Description:   ghRepo.Description,
			DefaultBranch: ghRepo.DefaultBranch,
			UpdatedAt:     ghRepo.UpdatedAt,
			Language:      ghRepo.Language,
			Stars:         ghRepo.Stars,
		}
	}

	return domainRepos, nil
}

func (g *GitHubServiceImpl) ListPullRequests(ctx context.Context, accessToken, owner, name string, state repo.PullRequestState, page, perPage int) ([]*repo.GitHubPullRequest, error) {
	pulls, err := g.client.ListPullRequests(ctx, accessToken, owner, name, string(state), page, perPage)
	metrics.ObserveGitHubCall("list_pull_requests", err)
	if err != nil {
		return nil, err
	}

	domainPulls := make([]*repo.GitHubPullRequest, len(pulls))
	for i, pr := range pulls {
		domainPulls[i] = &repo.GitHubPullRequest{
			ID:           pr.ID,
			Number:       pr.Number,
			Title:        pr.Title,
			State:        pr.State,
			Author:       pr.Author,
			AuthorAvatar: pr.AuthorAvatar,
			CreatedAt:    pr.CreatedAt,
			UpdatedAt:    pr.UpdatedAt,
			Branch:       pr.Branch,
			HeadSHA:      pr.HeadSHA,
			Additions:    pr.Additions,
			Deletions:    pr.Deletions,
			ChangedFiles: pr.ChangedFiles,
			URL:          pr.HTMLURL,
			Draft:        pr.Draft,
		}
	}

	return domainPulls, nil
}
