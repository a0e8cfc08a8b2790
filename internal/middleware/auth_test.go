package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reviewpilot-core/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIssuer = "https://clerk.example.com"

func signToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func newRouter(am *AuthMiddleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", am.RequireAuth(), func(c *gin.Context) {
		user, ok := SessionUser(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, user.ID)
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	am := NewAuthMiddlewareWithKeys(testIssuer, map[string]*rsa.PublicKey{"k1": &key.PublicKey})
	router := newRouter(am)

	valid := jwt.MapClaims{"sub": "user_1", "iss": testIssuer, "exp": time.Now().Add(time.Hour).Unix()}

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid", "Bearer " + signToken(t, key, "k1", valid), http.StatusOK, "user_1"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"not bearer", "Basic abc", http.StatusUnauthorized, ""},
		{"unknown kid", "Bearer " + signToken(t, key, "k2", valid), http.StatusUnauthorized, ""},
		{"wrong key", "Bearer " + signToken(t, other, "k1", valid), http.StatusUnauthorized, ""},
		{"wrong issuer", "Bearer " + signToken(t, key, "k1", jwt.MapClaims{"sub": "user_1", "iss": "evil", "exp": time.Now().Add(time.Hour).Unix()}), http.StatusUnauthorized, ""},
		{"expired", "Bearer " + signToken(t, key, "k1", jwt.MapClaims{"sub": "user_1", "iss": testIssuer, "exp": time.Now().Add(-time.Hour).Unix()}), http.StatusUnauthorized, ""},
		{"no subject", "Bearer " + signToken(t, key, "k1", jwt.MapClaims{"iss": testIssuer, "exp": time.Now().Add(time.Hour).Unix()}), http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestNewAuthMiddlewareLoadsJWKS(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(JWKSet{Keys: []JWK{
			{Kty: "EC", Kid: "ignored"},
			{
				Kty: "RSA",
				Kid: "k1",
				N:   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
				E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
			},
		}})
	}))
	defer server.Close()

	am, err := NewAuthMiddleware(context.Background(), &config.ClerkConfig{JWKSURL: server.URL, Issuer: testIssuer})
	require.NoError(t, err)
	require.Contains(t, am.publicKeys, "k1")
	assert.Equal(t, key.PublicKey.E, am.publicKeys["k1"].E)
	assert.NotContains(t, am.publicKeys, "ignored")
}

func TestNewAuthMiddlewareEmptyJWKS(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"keys":[]}`))
	}))
	defer server.Close()

	_, err := NewAuthMiddleware(context.Background(), &config.ClerkConfig{JWKSURL: server.URL, Issuer: testIssuer})
	assert.Error(t, err)
}
