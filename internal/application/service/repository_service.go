package service

import (
	"context"
	"fmt"
	"strconv"

	"reviewpilot-core/internal/application/dto"
	"reviewpilot-core/internal/apperror"
	"reviewpilot-core/internal/domain/events"
	"reviewpilot-core/internal/domain/repo"
	"reviewpilot-core/internal/domain/user"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

const (
	// syncPageSize is the largest page GitHub serves
	syncPageSize = 100
	// syncMaxPages bounds how far a sync walks the remote repository list
	syncMaxPages = 50
)

// RepositoryService handles repository-related use cases
type RepositoryService struct {
	userRepo      user.Repository
	repoRepo      repo.RepositoryRepo
	githubService repo.GitHubService
	cipher        TokenCipher
	publisher     events.Publisher
	clock         clockwork.Clock
}

// NewRepositoryService creates a new repository service
func NewRepositoryService(
	userRepo user.Repository,
	repoRepo repo.RepositoryRepo,
	githubService repo.GitHubService,
	cipher TokenCipher,
	publisher events.Publisher,
	clock clockwork.Clock,
) *RepositoryService {
	return &RepositoryService{
		userRepo:      userRepo,
		repoRepo:      repoRepo,
		githubService: githubService,
		cipher:        cipher,
		publisher:     publisher,
		clock:         clock,
	}
}

// ListRemoteRepositories returns one page of the user's GitHub repositories
func (s *RepositoryService) ListRemoteRepositories(ctx context.Context, clerkUserID string, page, limit int) (*dto.RemoteRepositoryListResponse, error) {
	_, token, err := s.connectedUser(ctx, clerkUserID)
	if err != nil {
		return nil, err
	}

	total, err := s.githubService.RepositoryTotal(ctx, token)
	if err != nil {
		return nil, err
	}

	githubRepos, err := s.githubService.ListRepositories(ctx, token, page, limit)
	if err != nil {
		return nil, err
	}

	repositories := make([]*dto.RemoteRepositoryResponse, len(githubRepos))
	for i, ghRepo := range githubRepos {
		repositories[i] = &dto.RemoteRepositoryResponse{
			GitHubRepoID:  ghRepo.ID,
			Name:          ghRepo.Name,
			FullName:      ghRepo.FullName,
			Owner:         ghRepo.Owner,
			IsPrivate:     ghRepo.Private,
			Description:   ghRepo.Description,
			DefaultBranch: ghRepo.DefaultBranch,
			URL:           githubURL(ghRepo.FullName),
			UpdatedAt:     ghRepo.UpdatedAt,
			Language:      ghRepo.Language,
			Stars:         ghRepo.Stars,
		}
	}

	return &dto.RemoteRepositoryListResponse{
		Count:        len(repositories),
		Total:        total,
		Page:         page,
		Limit:        limit,
		TotalPages:   (total + limit - 1) / limit,
		Repositories: repositories,
	}, nil
}

// SyncSelectedRepositories saves the requested GitHub repositories for the user.
// Remote pages are walked until every id is found or the list runs out; ids that
// are not found are skipped. Results follow GitHub's order.
func (s *RepositoryService) SyncSelectedRepositories(ctx context.Context, clerkUserID string, githubIDs []int64) ([]*dto.RepositoryResponse, error) {
	u, token, err := s.connectedUser(ctx, clerkUserID)
	if err != nil {
		return nil, err
	}
	if len(githubIDs) == 0 {
		return []*dto.RepositoryResponse{}, nil
	}

	selected, err := s.findRemote(ctx, token, githubIDs)
	if err != nil {
		return nil, err
	}

	synced := make([]*dto.RepositoryResponse, 0, len(selected))
	for _, ghRepo := range selected {
		candidate, err := repo.NewRepositoryFromGitHub(u.ID(), ghRepo, s.clock.Now())
		if err != nil {
			logrus.WithField("githubRepoId", ghRepo.ID).Warnf("skipping repository: %v", err)
			continue
		}

		stored, err := s.repoRepo.Upsert(ctx, candidate)
		if err != nil {
			return nil, apperror.Internal("failed to sync repositories", err)
		}
		synced = append(synced, toRepositoryDTO(stored))
	}

	s.publisher.Publish(ctx, repo.NewRepositoriesSyncedEvent(u.ID().String(), len(githubIDs), len(synced)))
	return synced, nil
}

// findRemote pages through the user's repositories collecting the wanted ids
func (s *RepositoryService) findRemote(ctx context.Context, token string, githubIDs []int64) ([]*repo.GitHubRepository, error) {
	wanted := make(map[int64]bool, len(githubIDs))
	for _, id := range githubIDs {
		wanted[id] = true
	}

	var found []*repo.GitHubRepository
	for page := 1; page <= syncMaxPages && len(wanted) > 0; page++ {
		batch, err := s.githubService.ListRepositories(ctx, token, page, syncPageSize)
		if err != nil {
			return nil, err
		}

		for _, ghRepo := range batch {
			if wanted[ghRepo.ID] {
				found = append(found, ghRepo)
				delete(wanted, ghRepo.ID)
			}
		}

		if len(batch) < syncPageSize {
			break
		}
	}

	return found, nil
}

// ListSavedRepositories returns the user's active repositories, most recently updated first
func (s *RepositoryService) ListSavedRepositories(ctx context.Context, clerkUserID string) ([]*dto.RepositoryResponse, error) {
	u, err := findByClerkID(ctx, s.userRepo, clerkUserID)
	if err != nil {
		return nil, err
	}

	repositories, err := s.repoRepo.FindActiveByUserID(ctx, u.ID())
	if err != nil {
		return nil, apperror.Internal("failed to fetch saved repositories", err)
	}

	responses := make([]*dto.RepositoryResponse, len(repositories))
	for i, r := range repositories {
		responses[i] = toRepositoryDTO(r)
	}
	return responses, nil
}

// RemoveSavedRepository deactivates a repository owned by the user
func (s *RepositoryService) RemoveSavedRepository(ctx context.Context, clerkUserID, repositoryID string) error {
	u, err := findByClerkID(ctx, s.userRepo, clerkUserID)
	if err != nil {
		return err
	}

	id, err := repo.ParseRepositoryID(repositoryID)
	if err != nil {
		return apperror.NotFound("Repository not found")
	}

	r, err := s.repoRepo.FindByID(ctx, id)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return apperror.NotFound("Repository not found")
		}
		return apperror.Internal("failed to remove repository", err)
	}
	if !r.BelongsToUser(u.ID()) {
		return apperror.NotFound("Repository not found")
	}

	r.Deactivate(s.clock.Now())
	if err := s.repoRepo.Deactivate(ctx, r); err != nil {
		return apperror.Internal("failed to remove repository", err)
	}

	s.publisher.Publish(ctx, repo.NewRepositoryRemovedEvent(r.ID().String(), u.ID().String()))
	return nil
}

// ListPullRequests returns one page of pull requests for owner/name
func (s *RepositoryService) ListPullRequests(ctx context.Context, clerkUserID, owner, name string, state repo.PullRequestState, page, perPage int) (*dto.PullRequestListResponse, error) {
	_, token, err := s.connectedUser(ctx, clerkUserID)
	if err != nil {
		return nil, err
	}

	pulls, err := s.githubService.ListPullRequests(ctx, token, owner, name, state, page, perPage)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.PullRequestResponse, len(pulls))
	for i, pr := range pulls {
		responses[i] = toPullRequestDTO(pr)
	}

	return &dto.PullRequestListResponse{
		Count: len(responses),
		Pulls: responses,
		Repo:  fmt.Sprintf("%s/%s", owner, name),
	}, nil
}

// connectedUser loads the user and decrypts their GitHub token
func (s *RepositoryService) connectedUser(ctx context.Context, clerkUserID string) (*user.User, string, error) {
	u, err := findByClerkID(ctx, s.userRepo, clerkUserID)
	if err != nil {
		return nil, "", err
	}

	token, err := accessToken(u, s.cipher)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func toRepositoryDTO(r *repo.Repository) *dto.RepositoryResponse {
	return &dto.RepositoryResponse{
		ID:            r.ID().String(),
		GitHubRepoID:  strconv.FormatInt(r.GitHubID().Int64(), 10),
		Name:          r.Name().String(),
		FullName:      r.FullName(),
		Owner:         r.Owner(),
		IsPrivate:     r.IsPrivate(),
		Description:   r.Description(),
		DefaultBranch: r.DefaultBranch(),
		URL:           githubURL(r.FullName()),
		IsActive:      r.IsActive(),
		CreatedAt:     r.CreatedAt(),
		UpdatedAt:     r.UpdatedAt(),
	}
}

func toPullRequestDTO(pr *repo.GitHubPullRequest) *dto.PullRequestResponse {
	author := pr.Author
	if author == "" {
		author = "unknown"
	}

	sha := pr.HeadSHA
	if len(sha) > 7 {
		sha = sha[:7]
	}

	return &dto.PullRequestResponse{
		ID:           pr.ID,
		Number:       pr.Number,
		Title:        pr.Title,
		State:        pr.State,
		Author:       author,
		AuthorAvatar: pr.AuthorAvatar,
		CreatedAt:    pr.CreatedAt,
		UpdatedAt:    pr.UpdatedAt,
		Branch:       pr.Branch,
		CommitSHA:    sha,
		Additions:    pr.Additions,
		Deletions:    pr.Deletions,
		FilesChanged: pr.ChangedFiles,
		URL:          pr.URL,
		Draft:        pr.Draft,
	}
}

func githubURL(fullName string) string {
	return "https://github.com/" + fullName
}
