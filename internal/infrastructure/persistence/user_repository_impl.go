package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reviewpilot-core/internal/database"
	"reviewpilot-core/internal/database/queries"
	"reviewpilot-core/internal/domain/user"

	"github.com/russross/meddler"
)

// userRow is the users table as scanned by meddler
type userRow struct {
	ID                   string     `meddler:"id"`
	ClerkID              string     `meddler:"clerk_id"`
	Email                string     `meddler:"email"`
	FullName             *string    `meddler:"full_name"`
	AvatarURL            *string    `meddler:"avatar_url"`
	GitHubUsername       *string    `meddler:"github_username"`
	GitHubAccessToken    *string    `meddler:"github_access_token"`
	GitHubRefreshToken   *string    `meddler:"github_refresh_token"`
	GitHubTokenExpiresAt *time.Time `meddler:"github_token_expires_at"`
	LastLoginAt          *time.Time `meddler:"last_login_at"`
	CreatedAt            time.Time  `meddler:"created_at"`
	UpdatedAt            time.Time  `meddler:"updated_at"`
}

// UserRepositoryImpl implements the domain user.Repository interface
type UserRepositoryImpl struct {
	db *database.DB
}

// NewUserRepository creates a new user repository implementation
func NewUserRepository(db *database.DB) user.Repository {
	return &UserRepositoryImpl{db: db}
}

// UpsertByClerkID inserts usr or refreshes the row already stored under its
// Clerk id. The row keeps its original id, so created is true only when the
// returned id is the candidate's.
func (r *UserRepositoryImpl) UpsertByClerkID(ctx context.Context, usr *user.User, mode user.SyncMode) (*user.User, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	query := queries.UpsertUserLogin
	if mode == user.SyncProfile {
		query = queries.UpsertUserProfile
	}

	row := new(userRow)
	err := meddler.QueryRow(r.db.GetConnection(), row,
		queries.Stmt(r.db.Driver(), query),
		usr.ID().String(),
		usr.ClerkID().String(),
		usr.Email().String(),
		usr.FullName(),
		usr.AvatarURL(),
		utcPtr(usr.LastLoginAt()),
		usr.CreatedAt().UTC(),
		usr.UpdatedAt().UTC(),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert user: %w", err)
	}

	stored, err := r.toDomain(row)
	if err != nil {
		return nil, false, err
	}
	return stored, stored.ID().Equals(usr.ID()), nil
}

// UpdateGitHubConnection writes the linked account fields as one statement
func (r *UserRepositoryImpl) UpdateGitHubConnection(ctx context.Context, usr *user.User) error {
	gh := usr.GitHub()
	res, err := r.db.GetConnection().ExecContext(ctx,
		queries.Stmt(r.db.Driver(), queries.UpdateUserGitHub),
		gh.Username,
		gh.AccessToken,
		gh.RefreshToken,
		utcPtr(gh.TokenExpiresAt),
		usr.UpdatedAt().UTC(),
		usr.ID().String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update github connection: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.ErrUserNotFound(usr.ID().String())
	}
	return nil
}

// FindByID retrieves a user by their ID
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id user.UserID) (*user.User, error) {
	return r.findOne(ctx, queries.SelectUserByID, id.String())
}

// FindByClerkID retrieves a user by their Clerk user ID
func (r *UserRepositoryImpl) FindByClerkID(ctx context.Context, clerkID user.ClerkUserID) (*user.User, error) {
	return r.findOne(ctx, queries.SelectUserByClerkID, clerkID.String())
}

// DeleteByClerkID removes a user. Their repositories go with them.
func (r *UserRepositoryImpl) DeleteByClerkID(ctx context.Context, clerkID user.ClerkUserID) error {
	res, err := r.db.GetConnection().ExecContext(ctx,
		queries.Stmt(r.db.Driver(), queries.DeleteUserByClerkID),
		clerkID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.ErrUserNotFound(clerkID.String())
	}
	return nil
}

func (r *UserRepositoryImpl) findOne(ctx context.Context, query string, arg string) (*user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	row := new(userRow)
	err := meddler.QueryRow(r.db.GetConnection(), row, queries.Stmt(r.db.Driver(), query), arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound(arg)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return r.toDomain(row)
}

// toDomain converts database user to domain user
func (r *UserRepositoryImpl) toDomain(row *userRow) (*user.User, error) {
	return user.Reconstitute(
		row.ID,
		row.ClerkID,
		row.Email,
		row.FullName,
		row.AvatarURL,
		user.GitHubConnection{
			Username:       row.GitHubUsername,
			AccessToken:    row.GitHubAccessToken,
			RefreshToken:   row.GitHubRefreshToken,
			TokenExpiresAt: row.GitHubTokenExpiresAt,
		},
		row.LastLoginAt,
		row.CreatedAt,
		row.UpdatedAt,
	)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
