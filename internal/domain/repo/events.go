package repo

import (
	"reviewpilot-core/internal/domain/events"
)

// Event types
const (
	EventTypeRepositorySynced  = "repository.synced"
	EventTypeRepositoryRemoved = "repository.removed"
)

// RepositoriesSyncedEvent is raised when selected repositories are upserted from GitHub
type RepositoriesSyncedEvent struct {
	events.BaseEvent
	UserID          string
	Requested       int
	RepositoryCount int
}

// NewRepositoriesSyncedEvent creates a new RepositoriesSyncedEvent
func NewRepositoriesSyncedEvent(userID string, requested, count int) *RepositoriesSyncedEvent {
	return &RepositoriesSyncedEvent{
		BaseEvent:       events.NewBaseEvent(EventTypeRepositorySynced, userID),
		UserID:          userID,
		Requested:       requested,
		RepositoryCount: count,
	}
}

// RepositoryRemovedEvent is raised when a saved repository is deactivated
type RepositoryRemovedEvent struct {
	events.BaseEvent
	RepositoryID string
	UserID       string
}

// NewRepositoryRemovedEvent creates a new RepositoryRemovedEvent
func NewRepositoryRemovedEvent(repoID, userID string) *RepositoryRemovedEvent {
	return &RepositoryRemovedEvent{
		BaseEvent:    events.NewBaseEvent(EventTypeRepositoryRemoved, repoID),
		RepositoryID: repoID,
		UserID:       userID,
	}
}

func (e *RepositoriesSyncedEvent) Attributes() map[string]interface{} {
	return map[string]interface{}{"userId": e.UserID, "requested": e.Requested, "synced": e.RepositoryCount}
}

func (e *RepositoryRemovedEvent) Attributes() map[string]interface{} {
	return map[string]interface{}{"repositoryId": e.RepositoryID, "userId": e.UserID}
}
