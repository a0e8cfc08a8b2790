package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig `envconfig:"DB"`
	GitHub   GitHubConfig
	Redis    RedisConfig
	Clerk    ClerkConfig
	Logging  LoggingConfig `envconfig:"LOG"`

	FrontendURL      string `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`
	EncryptionKey    string `envconfig:"ENCRYPTION_KEY"`
	OAuthStateSecret string `envconfig:"OAUTH_STATE_SECRET"`
	GinMode          string `envconfig:"GIN_MODE"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         string `envconfig:"PORT" default:"3001"`
	Host         string `envconfig:"HOST" default:"0.0.0.0"`
	ReadTimeout  int    `envconfig:"READ_TIMEOUT" default:"30"`
	WriteTimeout int    `envconfig:"WRITE_TIMEOUT" default:"30"`
	IdleTimeout  int    `envconfig:"IDLE_TIMEOUT" default:"120"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string `envconfig:"DRIVER" default:"postgres"`
	DSN      string `envconfig:"DSN"`
	MaxConns int    `envconfig:"MAX_CONNS" default:"25"`
	MinConns int    `envconfig:"MIN_CONNS" default:"5"`
}

// GitHubConfig holds the OAuth application settings and API endpoints
type GitHubConfig struct {
	ClientID     string `envconfig:"CLIENT_ID"`
	ClientSecret string `envconfig:"CLIENT_SECRET"`
	CallbackURL  string `envconfig:"CALLBACK_URL"`
	AuthURL      string `envconfig:"AUTH_URL" default:"https://github.com/login/oauth/authorize"`
	TokenURL     string `envconfig:"TOKEN_URL" default:"https://github.com/login/oauth/access_token"`
	APIURL       string `envconfig:"API_URL" default:"https://api.github.com/"`
}

// Configured reports whether the OAuth application settings are all present
func (g GitHubConfig) Configured() bool {
	return g.ClientID != "" && g.ClientSecret != "" && g.CallbackURL != ""
}

// RedisConfig holds the nonce store connection. An empty Addr selects the in-memory store.
type RedisConfig struct {
	Addr     string `envconfig:"ADDR"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB" default:"0"`
}

// ClerkConfig holds Clerk configuration
type ClerkConfig struct {
	SecretKey string `envconfig:"SECRET_KEY"`
	APIURL    string `envconfig:"API_URL" default:"https://api.clerk.com/v1"`
	JWKSURL   string `envconfig:"JWKS_URL"`
	Issuer    string `envconfig:"ISSUER"`

	// WebhookSecret is the whsec_ signing secret of the Clerk webhook endpoint
	WebhookSecret string `envconfig:"WEBHOOK_SECRET"`
}

// SessionAuthEnabled reports whether Clerk session tokens should be verified
func (c ClerkConfig) SessionAuthEnabled() bool {
	return c.JWKSURL != "" && c.Issuer != ""
}

// LoggingConfig holds logrus settings
type LoggingConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"text"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, using environment variables")
	}

	config := &Config{}
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.EncryptionKey == "" {
		return fmt.Errorf("ENCRYPTION_KEY is required")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	return nil
}

// StateSecret returns the key used to sign OAuth state tokens.
// Without OAUTH_STATE_SECRET it is derived from the encryption key.
func (c *Config) StateSecret() []byte {
	if c.OAuthStateSecret != "" {
		return []byte(c.OAuthStateSecret)
	}
	sum := sha256.Sum256([]byte("oauth-state:" + c.EncryptionKey))
	return []byte(hex.EncodeToString(sum[:]))
}

// GetServerAddress returns the server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
