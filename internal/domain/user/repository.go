package user

import (
	"context"
)

// SyncMode selects how UpsertByClerkID treats an existing row
type SyncMode int

const (
	// SyncLogin keeps the stored name and avatar when none are given and records the login
	SyncLogin SyncMode = iota
	// SyncProfile overwrites name and avatar with what the identity provider reports
	SyncProfile
)

// Repository defines the interface for user persistence
// This is defined in the domain layer, but implemented in infrastructure
type Repository interface {
	// UpsertByClerkID inserts the user or, when the Clerk id is already stored,
	// refreshes its profile in a single statement. It returns the stored user and
	// whether this call created it.
	UpsertByClerkID(ctx context.Context, user *User, mode SyncMode) (*User, bool, error)

	// UpdateGitHubConnection writes the four GitHub fields in one statement
	UpdateGitHubConnection(ctx context.Context, user *User) error

	// FindByID retrieves a user by their ID
	FindByID(ctx context.Context, id UserID) (*User, error)

	// FindByClerkID retrieves a user by their Clerk user ID
	FindByClerkID(ctx context.Context, clerkID ClerkUserID) (*User, error)

	// DeleteByClerkID removes a user and, by cascade, their repositories
	DeleteByClerkID(ctx context.Context, clerkID ClerkUserID) error
}
