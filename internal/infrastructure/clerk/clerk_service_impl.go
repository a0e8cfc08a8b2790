package clerk

import (
	"context"
	"fmt"

	"reviewpilot-core/internal/application/service"
	"reviewpilot-core/internal/clerk"
)

// ClerkServiceImpl implements the application service.ClerkService interface
type ClerkServiceImpl struct {
	client *clerk.Client
}

// NewClerkService creates a new Clerk service implementation
func NewClerkService(client *clerk.Client) service.ClerkService {
	return &ClerkServiceImpl{client: client}
}

// GetUser fetches user data from Clerk
func (c *ClerkServiceImpl) GetUser(ctx context.Context, clerkUserID string) (*service.ClerkUserData, error) {
	user, err := c.client.GetUser(ctx, clerkUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user from Clerk: %w", err)
	}

	return ToUserData(user), nil
}

// ToUserData maps a Clerk user object, from the API or a webhook, to service data
func ToUserData(user *clerk.UserData) *service.ClerkUserData {
	return &service.ClerkUserData{
		ID:        user.ID,
		Email:     user.PrimaryEmail(),
		FullName:  user.FullName(),
		AvatarURL: user.ImageURL,
	}
}

// ToEvent maps a webhook delivery to a service event
func ToEvent(event *clerk.WebhookEvent) *service.ClerkEvent {
	return &service.ClerkEvent{
		Type: event.Type,
		User: *ToUserData(&event.Data),
	}
}
