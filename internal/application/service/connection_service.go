package service

import (
	"context"
	"fmt"
	"time"

	"reviewpilot-core/internal/apperror"
	"reviewpilot-core/internal/domain/events"
	"reviewpilot-core/internal/domain/user"
	"reviewpilot-core/internal/infrastructure/oauthstate"
	"reviewpilot-core/internal/metrics"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// TokenCipher encrypts GitHub tokens before they are persisted
type TokenCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// StateCodec carries the user id and CSRF nonce through the OAuth redirect
type StateCodec interface {
	Encode(userID, csrf string) (string, error)
	Decode(token string) (*oauthstate.State, error)
	TTL() time.Duration
}

// CallbackOutcome is reported to the frontend as the github query parameter
type CallbackOutcome string

const (
	OutcomeConnected   CallbackOutcome = "connected"
	OutcomeConfigError CallbackOutcome = "error_config"
	OutcomeTokenError  CallbackOutcome = "error_token"
	OutcomeError       CallbackOutcome = "error"
)

// ConnectionService links and unlinks a user's GitHub account
type ConnectionService struct {
	userRepo   user.Repository
	github     user.GitHubAuthenticator
	cipher     TokenCipher
	codec      StateCodec
	nonces     oauthstate.NonceStore
	publisher  events.Publisher
	clock      clockwork.Clock
	configured bool
}

// NewConnectionService creates a new connection service.
// configured is false when the OAuth application settings are incomplete.
func NewConnectionService(
	userRepo user.Repository,
	github user.GitHubAuthenticator,
	cipher TokenCipher,
	codec StateCodec,
	nonces oauthstate.NonceStore,
	publisher events.Publisher,
	clock clockwork.Clock,
	configured bool,
) *ConnectionService {
	return &ConnectionService{
		userRepo:   userRepo,
		github:     github,
		cipher:     cipher,
		codec:      codec,
		nonces:     nonces,
		publisher:  publisher,
		clock:      clock,
		configured: configured,
	}
}

// Configured reports whether the OAuth application settings are present
func (s *ConnectionService) Configured() bool {
	return s.configured
}

// InitiateConnection returns the GitHub consent URL for the user
func (s *ConnectionService) InitiateConnection(ctx context.Context, clerkUserID string) (string, error) {
	if !s.configured {
		return "", apperror.Config("Server misconfiguration: Missing GitHub credentials")
	}

	u, err := findByClerkID(ctx, s.userRepo, clerkUserID)
	if err != nil {
		return "", err
	}

	nonce, err := oauthstate.NewNonce()
	if err != nil {
		return "", apperror.Internal("failed to generate state", err)
	}
	if err := s.nonces.Issue(ctx, nonce, s.codec.TTL()); err != nil {
		return "", apperror.Internal("failed to store state", err)
	}

	state, err := s.codec.Encode(u.ID().String(), nonce)
	if err != nil {
		return "", apperror.Internal("failed to encode state", err)
	}

	return s.github.AuthorizationURL(state), nil
}

// CompleteConnection finishes the OAuth round-trip. Failures are logged and
// reported as an outcome, never as an error.
func (s *ConnectionService) CompleteConnection(ctx context.Context, code, state string) CallbackOutcome {
	outcome, err := s.completeConnection(ctx, code, state)
	if err != nil {
		logrus.WithField("outcome", outcome).Errorf("github oauth callback failed: %v", err)
	}
	metrics.OAuthCallbacks.WithLabelValues(string(outcome)).Inc()
	return outcome
}

func (s *ConnectionService) completeConnection(ctx context.Context, code, state string) (CallbackOutcome, error) {
	if !s.configured {
		return OutcomeConfigError, apperror.Config("GitHub OAuth not configured")
	}

	decoded, err := s.codec.Decode(state)
	if err != nil {
		return OutcomeError, err
	}

	fresh, err := s.nonces.Consume(ctx, decoded.CSRF)
	if err != nil {
		return OutcomeError, fmt.Errorf("failed to consume state nonce: %w", err)
	}
	if !fresh {
		return OutcomeError, apperror.InvalidState("state was not issued or was already used", nil)
	}

	userID, err := user.ParseUserID(decoded.UserID)
	if err != nil {
		return OutcomeError, apperror.InvalidState("invalid user id in state", err)
	}

	token, err := s.github.ExchangeCode(ctx, code)
	if err != nil {
		return OutcomeTokenError, err
	}

	account, err := s.github.AuthenticatedAccount(ctx, token.AccessToken)
	if err != nil {
		return OutcomeError, fmt.Errorf("failed to fetch GitHub user: %w", err)
	}

	now := s.clock.Now()
	var expiresAt *time.Time
	if token.ExpiresIn > 0 {
		t := now.Add(time.Duration(token.ExpiresIn) * time.Second)
		expiresAt = &t
	}

	encryptedAccess, err := s.cipher.Encrypt(token.AccessToken)
	if err != nil {
		return OutcomeError, fmt.Errorf("failed to encrypt access token: %w", err)
	}

	var encryptedRefresh *string
	if token.RefreshToken != "" {
		enc, err := s.cipher.Encrypt(token.RefreshToken)
		if err != nil {
			return OutcomeError, fmt.Errorf("failed to encrypt refresh token: %w", err)
		}
		encryptedRefresh = &enc
	}

	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return OutcomeError, err
	}
	if err := u.ConnectGitHub(account.Login, encryptedAccess, encryptedRefresh, expiresAt, now); err != nil {
		return OutcomeError, err
	}
	if err := s.userRepo.UpdateGitHubConnection(ctx, u); err != nil {
		return OutcomeError, err
	}

	s.publisher.Publish(ctx, user.NewGitHubConnectedEvent(u.ID().String(), account.Login))
	return OutcomeConnected, nil
}

// DisconnectConnection revokes the GitHub grant when possible and always clears
// the stored connection
func (s *ConnectionService) DisconnectConnection(ctx context.Context, clerkUserID string) error {
	u, err := findByClerkID(ctx, s.userRepo, clerkUserID)
	if err != nil {
		return err
	}

	revoked := false
	if gh := u.GitHub(); gh.Connected() && s.configured {
		if err := s.revoke(ctx, *gh.AccessToken); err != nil {
			logrus.WithField("userId", u.ID().String()).Warnf("failed to revoke GitHub grant: %v", err)
		} else {
			revoked = true
		}
	}

	u.DisconnectGitHub(s.clock.Now())
	if err := s.userRepo.UpdateGitHubConnection(ctx, u); err != nil {
		return apperror.Internal("failed to disconnect GitHub account", err)
	}

	s.publisher.Publish(ctx, user.NewGitHubDisconnectedEvent(u.ID().String(), revoked))
	return nil
}

func (s *ConnectionService) revoke(ctx context.Context, encryptedToken string) error {
	plain, err := s.cipher.Decrypt(encryptedToken)
	if err != nil {
		return err
	}
	return s.github.RevokeGrant(ctx, plain)
}

// findByClerkID resolves a Clerk id to a stored user, mapping a blank id to a
// validation error
func findByClerkID(ctx context.Context, users user.Repository, clerkUserID string) (*user.User, error) {
	clerkID, err := user.NewClerkUserID(clerkUserID)
	if err != nil {
		return nil, apperror.Validation("clerkId is required")
	}

	u, err := users.FindByClerkID(ctx, clerkID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal("failed to load user", err)
	}
	return u, nil
}

// accessToken decrypts the user's stored GitHub token
func accessToken(u *user.User, cipher TokenCipher) (string, error) {
	gh := u.GitHub()
	if !gh.Connected() {
		return "", apperror.NotConnected()
	}

	token, err := cipher.Decrypt(*gh.AccessToken)
	if err != nil {
		return "", apperror.Authentication(err)
	}
	return token, nil
}
