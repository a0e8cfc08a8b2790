package oauthstate

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"reviewpilot-core/internal/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

// DefaultTTL bounds how long a user has to finish the GitHub consent screen
const DefaultTTL = 10 * time.Minute

// State is the payload carried through the OAuth round-trip
type State struct {
	UserID string
	CSRF   string
}

type stateClaims struct {
	UserID string `json:"userId"`
	CSRF   string `json:"csrf"`
	jwt.RegisteredClaims
}

// Codec turns a State into an opaque, URL-safe, signed token and back
type Codec struct {
	secret []byte
	ttl    time.Duration
	clock  clockwork.Clock
}

// NewCodec creates a codec signing with HS256
func NewCodec(secret []byte, ttl time.Duration, clock clockwork.Clock) *Codec {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Codec{secret: secret, ttl: ttl, clock: clock}
}

// TTL returns the lifetime of encoded tokens
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Encode signs the state
func (c *Codec) Encode(userID, csrf string) (string, error) {
	now := c.clock.Now()
	claims := stateClaims{
		UserID: userID,
		CSRF:   csrf,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign state: %w", err)
	}
	return token, nil
}

// Decode verifies the signature and expiry and returns the carried state
func (c *Codec) Decode(token string) (*State, error) {
	if token == "" {
		return nil, apperror.InvalidState("state is empty", nil)
	}

	claims := &stateClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.InvalidState("state has expired", err)
		}
		return nil, apperror.InvalidState("state could not be verified", err)
	}

	if claims.UserID == "" || claims.CSRF == "" {
		return nil, apperror.InvalidState("state is missing userId or csrf", nil)
	}

	return &State{UserID: claims.UserID, CSRF: claims.CSRF}, nil
}

// NewNonce returns a random 128-bit hex nonce
func NewNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return hex.EncodeToString(b), nil
}
