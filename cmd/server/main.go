package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "reviewpilot-core/docs"
	"reviewpilot-core/internal/application/service"
	"reviewpilot-core/internal/clerk"
	"reviewpilot-core/internal/config"
	"reviewpilot-core/internal/database"
	"reviewpilot-core/internal/domain/events"
	"reviewpilot-core/internal/github"
	"reviewpilot-core/internal/infrastructure/audit"
	infraClerk "reviewpilot-core/internal/infrastructure/clerk"
	"reviewpilot-core/internal/infrastructure/encryption"
	infraGitHub "reviewpilot-core/internal/infrastructure/github"
	"reviewpilot-core/internal/infrastructure/oauthstate"
	"reviewpilot-core/internal/infrastructure/persistence"
	"reviewpilot-core/internal/logging"
	"reviewpilot-core/internal/middleware"
	"reviewpilot-core/internal/presentation/handlers"
	"reviewpilot-core/internal/presentation/router"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// @title ReviewPilot Core API
// @version 1.0
// @description GitHub connection and repository sync for the ReviewPilot dashboard

// @contact.name ReviewPilot Team

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:3001
// @BasePath /

// @securityDefinitions.apikey ClerkAuth
// @in header
// @name Authorization
// @description Clerk session token

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	// Initialize database
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	clock := clockwork.NewRealClock()

	// Initialize infrastructure layer
	cipher, err := encryption.NewEncryptionService(cfg.EncryptionKey)
	if err != nil {
		logrus.Fatalf("Failed to initialize encryption: %v", err)
	}

	var nonces oauthstate.NonceStore
	if cfg.Redis.Addr != "" {
		redisNonces, err := oauthstate.NewRedisNonceStore(oauthstate.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			logrus.Fatalf("Failed to initialize nonce store: %v", err)
		}
		defer redisNonces.Close()
		nonces = redisNonces
	} else {
		nonces = oauthstate.NewMemoryNonceStore(clock)
	}
	codec := oauthstate.NewCodec(cfg.StateSecret(), oauthstate.DefaultTTL, clock)

	githubClient, err := github.NewClient(github.Config{
		ClientID:     cfg.GitHub.ClientID,
		ClientSecret: cfg.GitHub.ClientSecret,
		CallbackURL:  cfg.GitHub.CallbackURL,
		AuthURL:      cfg.GitHub.AuthURL,
		TokenURL:     cfg.GitHub.TokenURL,
		APIURL:       cfg.GitHub.APIURL,
	})
	if err != nil {
		logrus.Fatalf("Failed to initialize GitHub client: %v", err)
	}
	githubService := infraGitHub.NewGitHubService(githubClient)
	if !cfg.GitHub.Configured() {
		logrus.Warn("GitHub OAuth is not configured; connection requests will fail")
	}

	var clerkService service.ClerkService
	if cfg.Clerk.SecretKey != "" {
		clerkService = infraClerk.NewClerkService(clerk.NewClient(&cfg.Clerk))
	}

	var webhookVerifier *clerk.WebhookVerifier
	if cfg.Clerk.WebhookSecret != "" {
		webhookVerifier, err = clerk.NewWebhookVerifier(cfg.Clerk.WebhookSecret, clock)
		if err != nil {
			logrus.Fatalf("Failed to initialize Clerk webhook verifier: %v", err)
		}
	} else {
		logrus.Warn("CLERK_WEBHOOK_SECRET not set; Clerk webhook deliveries are not verified")
	}

	dispatcher := events.NewDispatcher()
	audit.Register(dispatcher)

	// Repository implementations
	userRepository := persistence.NewUserRepository(db)
	repositoryRepository := persistence.NewRepositoryRepository(db)

	// Initialize application layer
	connectionService := service.NewConnectionService(
		userRepository, githubService, cipher, codec, nonces, dispatcher, clock, cfg.GitHub.Configured(),
	)
	repositoryService := service.NewRepositoryService(userRepository, repositoryRepository, githubService, cipher, dispatcher, clock)
	userService := service.NewUserService(userRepository, repositoryRepository, clerkService, dispatcher, clock)

	// Initialize auth middleware
	var authMiddleware *middleware.AuthMiddleware
	if cfg.Clerk.SessionAuthEnabled() {
		authMiddleware, err = middleware.NewAuthMiddleware(context.Background(), &cfg.Clerk)
		if err != nil {
			logrus.Fatalf("Failed to initialize auth middleware: %v", err)
		}
	} else {
		logrus.Warn("Clerk session verification disabled; clerkId parameters are trusted")
	}

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.New(router.Handlers{
		Health:     handlers.NewHealthHandler(),
		GitHubAuth: handlers.NewGitHubAuthHandler(connectionService, cfg.FrontendURL),
		Repository: handlers.NewRepositoryHandler(repositoryService),
		User:       handlers.NewUserHandler(userService),
		Webhook:    handlers.NewWebhookHandler(userService, webhookVerifier),
	}, router.Options{
		FrontendURL: cfg.FrontendURL,
		Auth:        authMiddleware,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logrus.Infof("Server starting on %s", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
