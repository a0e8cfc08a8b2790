package repo

import (
	"context"

	"reviewpilot-core/internal/domain/user"
)

// RepositoryRepo defines the interface for repository persistence
// This is defined in the domain layer, but implemented in infrastructure
type RepositoryRepo interface {
	// Upsert inserts the repository or, when its GitHub ID is already stored,
	// refreshes the metadata and reactivates it in a single statement.
	// It returns the stored row.
	Upsert(ctx context.Context, repo *Repository) (*Repository, error)

	// FindByID retrieves a repository by its ID
	FindByID(ctx context.Context, id RepositoryID) (*Repository, error)

	// FindActiveByUserID lists a user's active repositories, most recently updated first
	FindActiveByUserID(ctx context.Context, userID user.UserID) ([]*Repository, error)

	// CountActiveByUserID returns the number of active repositories for a user
	CountActiveByUserID(ctx context.Context, userID user.UserID) (int64, error)

	// Deactivate sets active=false
	Deactivate(ctx context.Context, repo *Repository) error
}
