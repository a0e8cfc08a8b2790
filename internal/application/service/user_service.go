package service

import (
	"context"

	"reviewpilot-core/internal/application/dto"
	"reviewpilot-core/internal/apperror"
	"reviewpilot-core/internal/domain/events"
	"reviewpilot-core/internal/domain/repo"
	"reviewpilot-core/internal/domain/user"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// ClerkUserData represents user data fetched from Clerk
type ClerkUserData struct {
	ID        string
	Email     string
	FullName  *string
	AvatarURL *string
}

// ClerkService is an interface for interacting with Clerk
type ClerkService interface {
	GetUser(ctx context.Context, clerkUserID string) (*ClerkUserData, error)
}

// Clerk webhook event types handled by HandleClerkEvent
const (
	ClerkUserCreated = "user.created"
	ClerkUserUpdated = "user.updated"
	ClerkUserDeleted = "user.deleted"
)

// ClerkEvent is a decoded Clerk webhook delivery
type ClerkEvent struct {
	Type string
	User ClerkUserData
}

// UserService handles user-related use cases
type UserService struct {
	userRepo    user.Repository
	repoRepo    repo.RepositoryRepo
	clerkClient ClerkService
	publisher   events.Publisher
	clock       clockwork.Clock
}

// NewUserService creates a new user service. clerkClient may be nil when no
// Clerk secret key is configured.
func NewUserService(userRepo user.Repository, repoRepo repo.RepositoryRepo, clerkClient ClerkService, publisher events.Publisher, clock clockwork.Clock) *UserService {
	return &UserService{
		userRepo:    userRepo,
		repoRepo:    repoRepo,
		clerkClient: clerkClient,
		publisher:   publisher,
		clock:       clock,
	}
}

// SyncUser creates the user on first sign-in and refreshes the profile afterwards.
// It reports whether the user was created.
func (s *UserService) SyncUser(ctx context.Context, req *dto.SyncUserRequest) (*dto.UserResponse, bool, error) {
	if req.ClerkID == "" {
		return nil, false, apperror.Validation("clerkId and email are required")
	}

	if req.Email == "" {
		if s.clerkClient == nil {
			return nil, false, apperror.Validation("clerkId and email are required")
		}
		profile, err := s.clerkClient.GetUser(ctx, req.ClerkID)
		if err != nil {
			return nil, false, err
		}
		req = &dto.SyncUserRequest{
			ClerkID:   req.ClerkID,
			Email:     profile.Email,
			FullName:  firstNonEmpty(req.FullName, profile.FullName),
			AvatarURL: firstNonEmpty(req.AvatarURL, profile.AvatarURL),
		}
	}

	if _, err := user.NewClerkUserID(req.ClerkID); err != nil {
		return nil, false, apperror.Validation("clerkId and email are required")
	}

	candidate, err := user.NewUser(req.ClerkID, req.Email, req.FullName, req.AvatarURL, s.clock.Now())
	if err != nil {
		return nil, false, err
	}

	stored, created, err := s.userRepo.UpsertByClerkID(ctx, candidate, user.SyncLogin)
	if err != nil {
		return nil, false, apperror.Internal("failed to sync user", err)
	}

	s.publisher.Publish(ctx, user.NewUserSyncedEvent(stored.ID().String(), stored.ClerkID().String(), created))
	return toUserDTO(stored), created, nil
}

// GetUserByClerkID retrieves a user by Clerk ID
func (s *UserService) GetUserByClerkID(ctx context.Context, clerkUserID string) (*dto.UserResponse, error) {
	u, err := findByClerkID(ctx, s.userRepo, clerkUserID)
	if err != nil {
		return nil, err
	}
	return toUserDTO(u), nil
}

// GetUserByID retrieves a user by internal ID
func (s *UserService) GetUserByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	userID, err := user.ParseUserID(id)
	if err != nil {
		return nil, apperror.NotFound("User not found")
	}

	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal("failed to load user", err)
	}
	return toUserDTO(u), nil
}

// HandleClerkEvent mirrors Clerk user lifecycle events into the users table
func (s *UserService) HandleClerkEvent(ctx context.Context, event *ClerkEvent) error {
	switch event.Type {
	case ClerkUserCreated, ClerkUserUpdated:
		return s.upsertFromClerk(ctx, &event.User)

	case ClerkUserDeleted:
		clerkID, err := user.NewClerkUserID(event.User.ID)
		if err != nil {
			return apperror.Validation("user id is required")
		}
		if err := s.userRepo.DeleteByClerkID(ctx, clerkID); err != nil {
			if apperror.Is(err, apperror.KindNotFound) {
				logrus.WithField("clerkId", clerkID.String()).Debug("deleted clerk user was never synced")
				return nil
			}
			return apperror.Internal("failed to delete user", err)
		}
		s.publisher.Publish(ctx, user.NewUserDeletedEvent(clerkID.String()))
		return nil

	default:
		logrus.WithField("type", event.Type).Debug("ignoring clerk webhook event")
		return nil
	}
}

func (s *UserService) upsertFromClerk(ctx context.Context, data *ClerkUserData) error {
	if _, err := user.NewClerkUserID(data.ID); err != nil {
		return apperror.Validation("user id is required")
	}

	candidate, err := user.NewUser(data.ID, data.Email, data.FullName, data.AvatarURL, s.clock.Now())
	if err != nil {
		return err
	}

	stored, created, err := s.userRepo.UpsertByClerkID(ctx, candidate, user.SyncProfile)
	if err != nil {
		return apperror.Internal("failed to sync user", err)
	}

	s.publisher.Publish(ctx, user.NewUserSyncedEvent(stored.ID().String(), stored.ClerkID().String(), created))
	return nil
}

// DashboardStats returns the dashboard counters. Review statistics are always zero.
func (s *UserService) DashboardStats(ctx context.Context, clerkUserID string) (*dto.DashboardStatsResponse, error) {
	stats := &dto.DashboardStatsResponse{
		TimeSaved: "0h",
		CostSaved: "$0",
	}
	if clerkUserID == "" {
		return stats, nil
	}

	u, err := findByClerkID(ctx, s.userRepo, clerkUserID)
	if err != nil {
		return nil, err
	}

	count, err := s.repoRepo.CountActiveByUserID(ctx, u.ID())
	if err != nil {
		return nil, apperror.Internal("failed to count repositories", err)
	}
	stats.RepoCount = count
	return stats, nil
}

// toUserDTO converts a domain user to DTO
func toUserDTO(u *user.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:              u.ID().String(),
		ClerkID:         u.ClerkID().String(),
		Email:           u.Email().String(),
		FullName:        u.FullName(),
		AvatarURL:       u.AvatarURL(),
		GitHubUsername:  u.GitHub().Username,
		GitHubConnected: u.IsGitHubConnected(),
		CreatedAt:       u.CreatedAt(),
	}
}

func firstNonEmpty(values ...*string) *string {
	for _, v := range values {
		if v != nil && *v != "" {
			return v
		}
	}
	return nil
}
