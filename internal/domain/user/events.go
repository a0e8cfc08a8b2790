package user

import (
	"reviewpilot-core/internal/domain/events"
)

// Event types
const (
	EventTypeUserSynced         = "user.synced"
	EventTypeUserDeleted        = "user.deleted"
	EventTypeGitHubConnected    = "github.connected"
	EventTypeGitHubDisconnected = "github.disconnected"
)

// UserSyncedEvent is raised when a user is created or refreshed from the identity provider
type UserSyncedEvent struct {
	events.BaseEvent
	UserID  string
	ClerkID string
	Created bool
}

// NewUserSyncedEvent creates a new UserSyncedEvent
func NewUserSyncedEvent(userID, clerkID string, created bool) *UserSyncedEvent {
	return &UserSyncedEvent{
		BaseEvent: events.NewBaseEvent(EventTypeUserSynced, userID),
		UserID:    userID,
		ClerkID:   clerkID,
		Created:   created,
	}
}

// UserDeletedEvent is raised when a user is deleted
type UserDeletedEvent struct {
	events.BaseEvent
	ClerkID string
}

// NewUserDeletedEvent creates a new UserDeletedEvent
func NewUserDeletedEvent(clerkID string) *UserDeletedEvent {
	return &UserDeletedEvent{
		BaseEvent: events.NewBaseEvent(EventTypeUserDeleted, clerkID),
		ClerkID:   clerkID,
	}
}

// GitHubConnectedEvent is raised when the OAuth callback stores a token
type GitHubConnectedEvent struct {
	events.BaseEvent
	UserID         string
	GitHubUsername string
}

// NewGitHubConnectedEvent creates a new GitHubConnectedEvent
func NewGitHubConnectedEvent(userID, githubUsername string) *GitHubConnectedEvent {
	return &GitHubConnectedEvent{
		BaseEvent:      events.NewBaseEvent(EventTypeGitHubConnected, userID),
		UserID:         userID,
		GitHubUsername: githubUsername,
	}
}

// GitHubDisconnectedEvent is raised after the GitHub fields are cleared
type GitHubDisconnectedEvent struct {
	events.BaseEvent
	UserID  string
	Revoked bool
}

// NewGitHubDisconnectedEvent creates a new GitHubDisconnectedEvent
func NewGitHubDisconnectedEvent(userID string, revoked bool) *GitHubDisconnectedEvent {
	return &GitHubDisconnectedEvent{
		BaseEvent: events.NewBaseEvent(EventTypeGitHubDisconnected, userID),
		UserID:    userID,
		Revoked:   revoked,
	}
}

func (e *UserSyncedEvent) Attributes() map[string]interface{} {
	return map[string]interface{}{"userId": e.UserID, "clerkId": e.ClerkID, "created": e.Created}
}

func (e *UserDeletedEvent) Attributes() map[string]interface{} {
	return map[string]interface{}{"clerkId": e.ClerkID}
}

func (e *GitHubConnectedEvent) Attributes() map[string]interface{} {
	return map[string]interface{}{"userId": e.UserID, "githubUsername": e.GitHubUsername}
}

func (e *GitHubDisconnectedEvent) Attributes() map[string]interface{} {
	return map[string]interface{}{"userId": e.UserID, "revoked": e.Revoked}
}
