package user_test

import (
	"strings"
	"testing"

	"reviewpilot-core/internal/domain/user"
)

func TestNewEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		want    string
		wantErr bool
	}{
		{"valid", "test@example.com", "test@example.com", false},
		{"normalised", "  Test@Example.COM ", "test@example.com", false},
		{"empty", "", "", true},
		{"no at", "example.com", "", true},
		{"too long", strings.Repeat("a", 250) + "@example.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email, err := user.NewEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewEmail() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && email.String() != tt.want {
				t.Errorf("NewEmail() = %v, want %v", email.String(), tt.want)
			}
		})
	}
}

func TestNewClerkUserID(t *testing.T) {
	tests := []struct {
		name    string
		clerkID string
		wantErr bool
	}{
		{"valid", "user_2abc", false},
		{"trimmed", "  user_2abc ", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", strings.Repeat("x", 256), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := user.NewClerkUserID(tt.clerkID)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewClerkUserID() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && id.String() != strings.TrimSpace(tt.clerkID) {
				t.Errorf("NewClerkUserID() = %v", id.String())
			}
		})
	}
}

func TestParseUserID(t *testing.T) {
	id := user.NewUserID()

	parsed, err := user.ParseUserID(id.String())
	if err != nil {
		t.Fatalf("ParseUserID() error = %v", err)
	}
	if !parsed.Equals(id) {
		t.Errorf("ParseUserID() = %v, want %v", parsed, id)
	}

	if _, err := user.ParseUserID("nope"); err == nil {
		t.Error("ParseUserID() should reject malformed IDs")
	}
}
