package clerk

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"reviewpilot-core/internal/application/service"
	"reviewpilot-core/internal/clerk"
	"reviewpilot-core/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserMapsProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"user_1","first_name":"Ada","image_url":"https://img","email_addresses":[{"email_address":"ada@example.com"}]}`)
	}))
	defer server.Close()

	svc := NewClerkService(clerk.NewClient(&config.ClerkConfig{SecretKey: "sk", APIURL: server.URL}))

	data, err := svc.GetUser(context.Background(), "user_1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", data.Email)
	assert.Equal(t, "Ada", *data.FullName)
	assert.Equal(t, "https://img", *data.AvatarURL)
}

func TestToEvent(t *testing.T) {
	first, last := "Ada", "Lovelace"
	event := ToEvent(&clerk.WebhookEvent{
		Type: clerk.EventUserUpdated,
		Data: clerk.UserData{ID: "user_1", FirstName: &first, LastName: &last},
	})

	assert.Equal(t, service.ClerkUserUpdated, event.Type)
	assert.Equal(t, "Ada Lovelace", *event.User.FullName)
	assert.Equal(t, "", event.User.Email)
}
