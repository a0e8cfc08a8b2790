package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reviewpilot-core/internal/database"
	"reviewpilot-core/internal/database/queries"
	"reviewpilot-core/internal/domain/repo"
	"reviewpilot-core/internal/domain/user"

	"github.com/russross/meddler"
)

// repositoryRow is the repositories table as scanned by meddler
type repositoryRow struct {
	ID            string    `meddler:"id"`
	UserID        string    `meddler:"user_id"`
	GitHubRepoID  int64     `meddler:"github_repo_id"`
	Name          string    `meddler:"name"`
	FullName      string    `meddler:"full_name"`
	Owner         string    `meddler:"owner"`
	IsPrivate     bool      `meddler:"is_private"`
	Description   *string   `meddler:"description"`
	DefaultBranch string    `meddler:"default_branch"`
	IsActive      bool      `meddler:"is_active"`
	CreatedAt     time.Time `meddler:"created_at"`
	UpdatedAt     time.Time `meddler:"updated_at"`
}

// RepositoryRepoImpl implements the domain repo.RepositoryRepo interface
type RepositoryRepoImpl struct {
	db *database.DB
}

// NewRepositoryRepository creates a new repository repository implementation
func NewRepositoryRepository(db *database.DB) repo.RepositoryRepo {
	return &RepositoryRepoImpl{db: db}
}

// Upsert inserts or refreshes a repository keyed by its GitHub ID
func (r *RepositoryRepoImpl) Upsert(ctx context.Context, repository *repo.Repository) (*repo.Repository, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	row := new(repositoryRow)
	err := meddler.QueryRow(r.db.GetConnection(), row,
		queries.Stmt(r.db.Driver(), queries.UpsertRepository),
		repository.ID().String(),
		repository.UserID().String(),
		repository.GitHubID().Int64(),
		repository.Name().String(),
		repository.FullName(),
		repository.Owner(),
		repository.IsPrivate(),
		repository.Description(),
		repository.DefaultBranch(),
		repository.CreatedAt().UTC(),
		repository.UpdatedAt().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert repository: %w", err)
	}

	return r.toDomain(row)
}

// FindByID retrieves a repository by its ID
func (r *RepositoryRepoImpl) FindByID(ctx context.Context, id repo.RepositoryID) (*repo.Repository, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	row := new(repositoryRow)
	err := meddler.QueryRow(r.db.GetConnection(), row,
		queries.Stmt(r.db.Driver(), queries.SelectRepositoryByID), id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrRepositoryNotFound(id.String())
		}
		return nil, fmt.Errorf("failed to get repository: %w", err)
	}

	return r.toDomain(row)
}

// FindActiveByUserID lists the user's active repositories, most recently updated first
func (r *RepositoryRepoImpl) FindActiveByUserID(ctx context.Context, userID user.UserID) ([]*repo.Repository, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []*repositoryRow
	err := meddler.QueryAll(r.db.GetConnection(), &rows,
		queries.Stmt(r.db.Driver(), queries.SelectActiveRepositoriesByUser), userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repositories: %w", err)
	}

	repositories := make([]*repo.Repository, len(rows))
	for i, row := range rows {
		domainRepo, err := r.toDomain(row)
		if err != nil {
			return nil, fmt.Errorf("failed to convert repository: %w", err)
		}
		repositories[i] = domainRepo
	}

	return repositories, nil
}

// CountActiveByUserID returns the number of active repositories for a user
func (r *RepositoryRepoImpl) CountActiveByUserID(ctx context.Context, userID user.UserID) (int64, error) {
	var count int64
	err := r.db.GetConnection().QueryRowContext(ctx,
		queries.Stmt(r.db.Driver(), queries.CountActiveRepositoriesByUser), userID.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count repositories: %w", err)
	}

	return count, nil
}

// Deactivate marks the repository inactive
func (r *RepositoryRepoImpl) Deactivate(ctx context.Context, repository *repo.Repository) error {
	res, err := r.db.GetConnection().ExecContext(ctx,
		queries.Stmt(r.db.Driver(), queries.DeactivateRepository),
		repository.UpdatedAt().UTC(),
		repository.ID().String(),
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate repository: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repo.ErrRepositoryNotFound(repository.ID().String())
	}

	return nil
}

// toDomain converts database repository to domain repository
func (r *RepositoryRepoImpl) toDomain(row *repositoryRow) (*repo.Repository, error) {
	return repo.Reconstitute(
		row.ID,
		row.UserID,
		row.GitHubRepoID,
		row.Name,
		row.FullName,
		row.Owner,
		row.IsPrivate,
		row.Description,
		row.DefaultBranch,
		row.IsActive,
		row.CreatedAt,
		row.UpdatedAt,
	)
}
