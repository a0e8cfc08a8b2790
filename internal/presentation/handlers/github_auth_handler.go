package handlers

import (
	"net/http"
	"net/url"

	"reviewpilot-core/internal/application/dto"
	"reviewpilot-core/internal/application/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GitHubAuthHandler handles the GitHub account connection flow
type GitHubAuthHandler struct {
	connectionService *service.ConnectionService
	frontendURL       string
}

// NewGitHubAuthHandler creates a new GitHub auth handler
func NewGitHubAuthHandler(connectionService *service.ConnectionService, frontendURL string) *GitHubAuthHandler {
	return &GitHubAuthHandler{
		connectionService: connectionService,
		frontendURL:       frontendURL,
	}
}

// Initiate handles GET /api/auth/github
// @Summary Start the GitHub connection
// @Description Returns the GitHub consent URL for the user
// @Tags GitHub
// @Produce json
// @Param clerkId query string true "Clerk user ID"
// @Success 200 {object} dto.AuthURLResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/auth/github [get]
func (h *GitHubAuthHandler) Initiate(c *gin.Context) {
	clerkID, err := clerkIDFrom(c, c.Query("clerkId"))
	if err != nil {
		respondError(c, err, "Failed to initiate GitHub OAuth")
		return
	}

	authURL, err := h.connectionService.InitiateConnection(c.Request.Context(), clerkID)
	if err != nil {
		respondError(c, err, "Failed to initiate GitHub OAuth")
		return
	}

	c.JSON(http.StatusOK, dto.AuthURLResponse{AuthURL: authURL})
}

// Callback handles GET /api/auth/github/callback
// @Summary GitHub OAuth callback
// @Description Completes the connection and redirects to the frontend with ?github=<outcome>
// @Tags GitHub
// @Param code query string true "Authorization code"
// @Param state query string true "OAuth state"
// @Success 302
// @Failure 400 {object} ErrorResponse
// @Router /api/auth/github/callback [get]
func (h *GitHubAuthHandler) Callback(c *gin.Context) {
	if !h.connectionService.Configured() {
		h.redirect(c, service.OutcomeConfigError)
		return
	}

	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		if providerErr := c.Query("error"); providerErr != "" {
			logrus.WithField("error", providerErr).Warn("GitHub denied the authorization request")
			h.redirect(c, service.OutcomeError)
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing code or state", Code: "VALIDATION_ERROR"})
		return
	}

	h.redirect(c, h.connectionService.CompleteConnection(c.Request.Context(), code, state))
}

func (h *GitHubAuthHandler) redirect(c *gin.Context, outcome service.CallbackOutcome) {
	c.Redirect(http.StatusFound, h.frontendURL+"?github="+url.QueryEscape(string(outcome)))
}

// Disconnect handles POST /api/auth/github/disconnect
// @Summary Disconnect GitHub
// @Description Revokes the GitHub grant when possible and clears the stored connection
// @Tags GitHub
// @Produce json
// @Param clerkId query string true "Clerk user ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/auth/github/disconnect [post]
func (h *GitHubAuthHandler) Disconnect(c *gin.Context) {
	clerkID, err := clerkIDFrom(c, c.Query("clerkId"))
	if err != nil {
		respondError(c, err, "Failed to disconnect GitHub account")
		return
	}

	if err := h.connectionService.DisconnectConnection(c.Request.Context(), clerkID); err != nil {
		respondError(c, err, "Failed to disconnect GitHub account")
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "GitHub account disconnected successfully"})
}
