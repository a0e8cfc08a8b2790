package repo

import (
	"fmt"
	"time"

	"reviewpilot-core/internal/domain/user"
)

// Repository is a domain entity representing a GitHub repository saved by a user
type Repository struct {
	id            RepositoryID
	userID        user.UserID
	githubID      GitHubID
	name          Name
	fullName      string
	owner         string
	isPrivate     bool
	description   *string
	defaultBranch string
	isActive      bool
	createdAt     time.Time
	updatedAt     time.Time
}

// NewRepositoryFromGitHub creates an active Repository entity from a remote repository
func NewRepositoryFromGitHub(userID user.UserID, gh *GitHubRepository, now time.Time) (*Repository, error) {
	repoName, err := NewName(gh.Name)
	if err != nil {
		return nil, ErrInvalidRepositoryData("name", err)
	}

	githubIDVO, err := NewGitHubID(gh.ID)
	if err != nil {
		return nil, ErrInvalidRepositoryData("githubRepoId", err)
	}

	defaultBranch := gh.DefaultBranch
	if defaultBranch == "" {
		defaultBranch = "main"
	}

	return &Repository{
		id:            NewRepositoryID(),
		userID:        userID,
		githubID:      githubIDVO,
		name:          repoName,
		fullName:      gh.FullName,
		owner:         gh.Owner,
		isPrivate:     gh.Private,
		description:   gh.Description,
		defaultBranch: defaultBranch,
		isActive:      true,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// Reconstitute recreates a Repository entity from persistence
func Reconstitute(
	id, userID string,
	githubID int64,
	name, fullName, owner string,
	isPrivate bool,
	description *string,
	defaultBranch string,
	isActive bool,
	createdAt, updatedAt time.Time,
) (*Repository, error) {
	repoID, err := ParseRepositoryID(id)
	if err != nil {
		return nil, fmt.Errorf("invalid repository ID: %w", err)
	}

	uid, err := user.ParseUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}

	githubIDVO, err := NewGitHubID(githubID)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub ID: %w", err)
	}

	return &Repository{
		id:            repoID,
		userID:        uid,
		githubID:      githubIDVO,
		name:          Name{value: name},
		fullName:      fullName,
		owner:         owner,
		isPrivate:     isPrivate,
		description:   description,
		defaultBranch: defaultBranch,
		isActive:      isActive,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}, nil
}

// Deactivate soft-removes the repository from the user's saved list
func (r *Repository) Deactivate(now time.Time) {
	r.isActive = false
	r.updatedAt = now
}

// BelongsToUser checks if the repository belongs to the specified user
func (r *Repository) BelongsToUser(userID user.UserID) bool {
	return r.userID.Equals(userID)
}

// Getters

func (r *Repository) ID() RepositoryID {
	return r.id
}

func (r *Repository) UserID() user.UserID {
	return r.userID
}

func (r *Repository) GitHubID() GitHubID {
	return r.githubID
}

func (r *Repository) Name() Name {
	return r.name
}

func (r *Repository) FullName() string {
	return r.fullName
}

func (r *Repository) Owner() string {
	return r.owner
}

func (r *Repository) IsPrivate() bool {
	return r.isPrivate
}

func (r *Repository) Description() *string {
	return r.description
}

func (r *Repository) DefaultBranch() string {
	return r.defaultBranch
}

func (r *Repository) IsActive() bool {
	return r.isActive
}

func (r *Repository) CreatedAt() time.Time {
	return r.createdAt
}

func (r *Repository) UpdatedAt() time.Time {
	return r.updatedAt
}

// String returns string representation (for debugging)
func (r *Repository) String() string {
	return fmt.Sprintf("Repository{id: %s, fullName: %s, userID: %s}",
		r.id.String(), r.fullName, r.userID.String())
}
