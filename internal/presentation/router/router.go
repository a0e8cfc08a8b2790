package router

import (
	"net/http"
	"time"

	"reviewpilot-core/internal/middleware"
	"reviewpilot-core/internal/presentation/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers groups the HTTP handlers served by the router
type Handlers struct {
	Health     *handlers.HealthHandler
	GitHubAuth *handlers.GitHubAuthHandler
	Repository *handlers.RepositoryHandler
	User       *handlers.UserHandler
	Webhook    *handlers.WebhookHandler
}

// Options configures the router
type Options struct {
	FrontendURL string
	// Auth is optional. Without it user routes trust the clerkId parameter.
	Auth *middleware.AuthMiddleware
}

// New builds the gin engine with every route of the API
func New(h Handlers, opts Options) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logrus.StandardLogger()))
	router.Use(middleware.Metrics())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{opts.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/", h.Health.Root)
	router.GET("/health", h.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Called by GitHub and Clerk, never with a session token
	router.GET("/api/auth/github/callback", h.GitHubAuth.Callback)
	router.POST("/api/webhooks/clerk", h.Webhook.Clerk)

	api := router.Group("/api")
	if opts.Auth != nil {
		api.Use(opts.Auth.RequireAuth())
	}
	{
		auth := api.Group("/auth")
		{
			auth.POST("/sync", h.User.SyncUser)
			auth.GET("/me", h.User.GetCurrentUser)
			auth.GET("/me/:userId", h.User.GetUser)
			auth.GET("/github", h.GitHubAuth.Initiate)
			auth.POST("/github/disconnect", h.GitHubAuth.Disconnect)
		}

		repos := api.Group("/repos")
		{
			repos.GET("", h.Repository.ListRemoteRepositories)
			repos.POST("/sync", h.Repository.SyncRepositories)
			repos.GET("/saved", h.Repository.ListSavedRepositories)
			repos.GET("/:owner/:repo/pulls", h.Repository.ListPullRequests)
			repos.DELETE("/:id", h.Repository.RemoveRepository)
		}

		api.GET("/dashboard/stats", h.User.DashboardStats)
	}

	return router
}
