package middleware

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"reviewpilot-core/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

// ContextKeyUser is where RequireAuth stores the verified *ClerkUser
const ContextKeyUser = "user"

// JWK represents a JSON Web Key
type JWK struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// JWKSet represents a set of JSON Web Keys
type JWKSet struct {
	Keys []JWK `json:"keys"`
}

// AuthMiddleware verifies Clerk session tokens
type AuthMiddleware struct {
	jwksURL    string
	issuer     string
	publicKeys map[string]*rsa.PublicKey
}

// NewAuthMiddleware creates a new authentication middleware and loads the signing keys
func NewAuthMiddleware(ctx context.Context, cfg *config.ClerkConfig) (*AuthMiddleware, error) {
	am := &AuthMiddleware{
		jwksURL:    cfg.JWKSURL,
		issuer:     cfg.Issuer,
		publicKeys: make(map[string]*rsa.PublicKey),
	}

	if err := am.loadPublicKeys(ctx); err != nil {
		return nil, fmt.Errorf("failed to load public keys: %w", err)
	}

	logrus.Infof("loaded %d Clerk signing keys", len(am.publicKeys))
	return am, nil
}

// NewAuthMiddlewareWithKeys creates a middleware from already known keys
func NewAuthMiddlewareWithKeys(issuer string, keys map[string]*rsa.PublicKey) *AuthMiddleware {
	return &AuthMiddleware{issuer: issuer, publicKeys: keys}
}

// RequireAuth is a Gin middleware that requires a valid Clerk session token
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header is required",
				"code":  "UNAUTHORIZED",
			})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header must start with 'Bearer '",
				"code":  "UNAUTHORIZED",
			})
			return
		}

		user, err := am.verifyToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			logrus.Debugf("rejected session token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid token",
				"code":  "UNAUTHORIZED",
			})
			return
		}

		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// verifyToken verifies the JWT token with Clerk's signing keys
func (am *AuthMiddleware) verifyToken(token string) (*ClerkUser, error) {
	claims := jwt.MapClaims{}
	parsedToken, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok {
			return nil, fmt.Errorf("missing key ID in token header")
		}

		publicKey, exists := am.publicKeys[kid]
		if !exists {
			return nil, fmt.Errorf("unknown key ID: %s", kid)
		}

		return publicKey, nil
	},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(am.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !parsedToken.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	user := &ClerkUser{}
	if sub, ok := claims["sub"].(string); ok {
		user.ID = sub
	}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	if user.ID == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	return user, nil
}

// loadPublicKeys loads public keys from the JWKS endpoint
func (am *AuthMiddleware) loadPublicKeys(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, am.jwksURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create JWKS request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("JWKS endpoint returned %d", resp.StatusCode)
	}

	var jwks JWKSet
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return fmt.Errorf("failed to decode JWKS: %w", err)
	}

	for _, jwk := range jwks.Keys {
		if jwk.Kty != "RSA" {
			continue
		}

		nBytes, err := base64.RawURLEncoding.DecodeString(jwk.N)
		if err != nil {
			continue
		}

		eBytes, err := base64.RawURLEncoding.DecodeString(jwk.E)
		if err != nil {
			continue
		}

		am.publicKeys[jwk.Kid] = &rsa.PublicKey{
			N: new(big.Int).SetBytes(nBytes),
			E: int(new(big.Int).SetBytes(eBytes).Int64()),
		}
	}

	if len(am.publicKeys) == 0 {
		return fmt.Errorf("no RSA keys in JWKS")
	}
	return nil
}

// ClerkUser represents the subject of a verified Clerk session
type ClerkUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SessionUser returns the verified Clerk user, if RequireAuth ran
func SessionUser(c *gin.Context) (*ClerkUser, bool) {
	value, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*ClerkUser)
	return user, ok
}
