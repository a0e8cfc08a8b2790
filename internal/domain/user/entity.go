package user

import (
	"fmt"
	"time"
)

// User is a domain entity representing a dashboard user identified by Clerk
type User struct {
	id          UserID
	clerkID     ClerkUserID
	email       Email
	fullName    *string
	avatarURL   *string
	github      GitHubConnection
	lastLoginAt *time.Time
	createdAt   time.Time
	updatedAt   time.Time
}

// GitHubConnection holds the linked GitHub account. Tokens are ciphertexts.
type GitHubConnection struct {
	Username       *string
	AccessToken    *string
	RefreshToken   *string
	TokenExpiresAt *time.Time
}

// Connected reports whether an access token is stored
func (c GitHubConnection) Connected() bool {
	return c.AccessToken != nil && *c.AccessToken != ""
}

// NewUser creates a new User entity with validation
func NewUser(clerkID, email string, fullName, avatarURL *string, now time.Time) (*User, error) {
	clerkIDVO, err := NewClerkUserID(clerkID)
	if err != nil {
		return nil, ErrInvalidUserData("clerkId", err)
	}

	emailVO, err := NewEmail(email)
	if err != nil {
		return nil, ErrInvalidUserData("email", err)
	}

	return &User{
		id:          NewUserID(),
		clerkID:     clerkIDVO,
		email:       emailVO,
		fullName:    nonEmpty(fullName),
		avatarURL:   nonEmpty(avatarURL),
		lastLoginAt: &now,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstitute recreates a User entity from persistence
func Reconstitute(
	id, clerkID, email string,
	fullName, avatarURL *string,
	github GitHubConnection,
	lastLoginAt *time.Time,
	createdAt, updatedAt time.Time,
) (*User, error) {
	userID, err := ParseUserID(id)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}

	clerkIDVO, err := NewClerkUserID(clerkID)
	if err != nil {
		return nil, fmt.Errorf("invalid clerk user ID: %w", err)
	}

	return &User{
		id:          userID,
		clerkID:     clerkIDVO,
		email:       Email{value: email},
		fullName:    fullName,
		avatarURL:   avatarURL,
		github:      github,
		lastLoginAt: lastLoginAt,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

// RecordLogin refreshes the profile on sign-in. Missing name and avatar keep their current values.
func (u *User) RecordLogin(email string, fullName, avatarURL *string, now time.Time) error {
	emailVO, err := NewEmail(email)
	if err != nil {
		return ErrInvalidUserData("email", err)
	}

	u.email = emailVO
	if v := nonEmpty(fullName); v != nil {
		u.fullName = v
	}
	if v := nonEmpty(avatarURL); v != nil {
		u.avatarURL = v
	}
	u.lastLoginAt = &now
	u.updatedAt = now
	return nil
}

// UpdateProfile overwrites the profile with what the identity provider reports
func (u *User) UpdateProfile(email string, fullName, avatarURL *string, now time.Time) error {
	emailVO, err := NewEmail(email)
	if err != nil {
		return ErrInvalidUserData("email", err)
	}

	u.email = emailVO
	u.fullName = nonEmpty(fullName)
	u.avatarURL = nonEmpty(avatarURL)
	u.updatedAt = now
	return nil
}

// ConnectGitHub stores the linked account and encrypted tokens
func (u *User) ConnectGitHub(username, encryptedAccessToken string, encryptedRefreshToken *string, expiresAt *time.Time, now time.Time) error {
	if username == "" {
		return ErrInvalidUserData("githubUsername", fmt.Errorf("username cannot be empty"))
	}
	if encryptedAccessToken == "" {
		return ErrInvalidUserData("githubAccessToken", fmt.Errorf("access token cannot be empty"))
	}

	u.github = GitHubConnection{
		Username:       &username,
		AccessToken:    &encryptedAccessToken,
		RefreshToken:   nonEmpty(encryptedRefreshToken),
		TokenExpiresAt: expiresAt,
	}
	u.updatedAt = now
	return nil
}

// DisconnectGitHub clears the linked account and every token
func (u *User) DisconnectGitHub(now time.Time) {
	u.github = GitHubConnection{}
	u.updatedAt = now
}

// Getters

func (u *User) ID() UserID {
	return u.id
}

func (u *User) ClerkID() ClerkUserID {
	return u.clerkID
}

func (u *User) Email() Email {
	return u.email
}

func (u *User) FullName() *string {
	return u.fullName
}

func (u *User) AvatarURL() *string {
	return u.avatarURL
}

func (u *User) GitHub() GitHubConnection {
	return u.github
}

func (u *User) IsGitHubConnected() bool {
	return u.github.Connected()
}

func (u *User) LastLoginAt() *time.Time {
	return u.lastLoginAt
}

func (u *User) CreatedAt() time.Time {
	return u.createdAt
}

func (u *User) UpdatedAt() time.Time {
	return u.updatedAt
}

// String returns string representation (for debugging). Tokens are never included.
func (u *User) String() string {
	return fmt.Sprintf("User{id: %s, clerkID: %s, githubConnected: %t}",
		u.id.String(), u.clerkID.String(), u.IsGitHubConnected())
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
