package oauthstate

import (
	"context"
	"testing"
	"time"

	"reviewpilot-core/internal/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("state-secret")

func TestCodecRoundTrip(t *testing.T) {
	codec := NewCodec(testSecret, 0, clockwork.NewFakeClock())

	nonce, err := NewNonce()
	require.NoError(t, err)
	assert.Len(t, nonce, 32)

	token, err := codec.Encode("550e8400-e29b-41d4-a716-446655440000", nonce)
	require.NoError(t, err)

	state, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", state.UserID)
	assert.Equal(t, nonce, state.CSRF)
	assert.Equal(t, DefaultTTL, codec.TTL())
}

func TestCodecRejects(t *testing.T) {
	clock := clockwork.NewFakeClock()
	codec := NewCodec(testSecret, time.Minute, clock)

	forged, err := NewCodec([]byte("other-secret"), time.Minute, clock).Encode("user", "csrf")
	require.NoError(t, err)

	incomplete, err := jwt.NewWithClaims(jwt.SigningMethodHS256, stateClaims{
		UserID: "user",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Minute)),
		},
	}).SignedString(testSecret)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, stateClaims{
		UserID: "user",
		CSRF:   "csrf",
	}).SignedString(testSecret)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-state"},
		{"base64 json", "eyJ1c2VySWQiOiJ4IiwiY3NyZiI6InkifQ"},
		{"forged", forged},
		{"missing csrf", incomplete},
		{"missing expiry", noExpiry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decode(tt.token)
			require.Error(t, err)
			assert.True(t, apperror.Is(err, apperror.KindInvalidState))
		})
	}
}

func TestCodecExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	codec := NewCodec(testSecret, time.Minute, clock)

	token, err := codec.Encode("user", "csrf")
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)

	_, err = codec.Decode(token)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindInvalidState))
}

func TestMemoryNonceStore(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	store := NewMemoryNonceStore(clock)

	require.NoError(t, store.Issue(ctx, "n1", time.Minute))
	assert.Error(t, store.Issue(ctx, "n1", time.Minute))

	ok, err := store.Consume(ctx, "n1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Consume(ctx, "n1")
	require.NoError(t, err)
	assert.False(t, ok, "nonce must only be consumable once")

	ok, err = store.Consume(ctx, "never-issued")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Issue(ctx, "n2", time.Minute))
	clock.Advance(2 * time.Minute)
	ok, err = store.Consume(ctx, "n2")
	require.NoError(t, err)
	assert.False(t, ok, "expired nonce must be rejected")
}

func TestRedisNonceStoreUnreachable(t *testing.T) {
	_, err := NewRedisNonceStore(RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
