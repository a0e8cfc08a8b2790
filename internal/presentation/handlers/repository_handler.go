package handlers

import (
	"math"
	"net/http"

	"reviewpilot-core/internal/application/dto"
	"reviewpilot-core/internal/application/service"
	"reviewpilot-core/internal/domain/repo"

	"github.com/gin-gonic/gin"
)

const maxPageSize = 100

// RepositoryHandler handles repository-related HTTP requests
type RepositoryHandler struct {
	repositoryService *service.RepositoryService
}

// NewRepositoryHandler creates a new repository handler
func NewRepositoryHandler(repositoryService *service.RepositoryService) *RepositoryHandler {
	return &RepositoryHandler{
		repositoryService: repositoryService,
	}
}

// ListRemoteRepositories handles GET /api/repos
// @Summary List GitHub repositories
// @Description Returns one page of the user's GitHub repositories, most recently updated first
// @Tags Repositories
// @Produce json
// @Param clerkId query string true "Clerk user ID"
// @Param page query int false "Page number" default(1) minimum(1)
// @Param limit query int false "Items per page" default(10) minimum(1) maximum(100)
// @Success 200 {object} dto.RemoteRepositoryListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/repos [get]
func (h *RepositoryHandler) ListRemoteRepositories(c *gin.Context) {
	clerkID, err := clerkIDFrom(c, c.Query("clerkId"))
	if err != nil {
		respondError(c, err, "Failed to fetch repositories")
		return
	}

	page := intQuery(c, "page", 1, math.MaxInt)
	limit := intQuery(c, "limit", 10, maxPageSize)

	response, err := h.repositoryService.ListRemoteRepositories(c.Request.Context(), clerkID, page, limit)
	if err != nil {
		respondError(c, err, "Failed to fetch repositories")
		return
	}

	c.JSON(http.StatusOK, response)
}

// SyncRepositories handles POST /api/repos/sync
// @Summary Save selected repositories
// @Description Upserts the selected GitHub repositories for the user
// @Tags Repositories
// @Accept json
// @Produce json
// @Param request body dto.SyncRepositoriesRequest true "Repositories to sync"
// @Success 200 {object} dto.SyncRepositoriesResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/repos/sync [post]
func (h *RepositoryHandler) SyncRepositories(c *gin.Context) {
	var req dto.SyncRepositoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid repository IDs", Code: "VALIDATION_ERROR"})
		return
	}

	clerkID, err := clerkIDFrom(c, req.ClerkID)
	if err != nil {
		respondError(c, err, "Failed to sync repositories")
		return
	}

	repositories, err := h.repositoryService.SyncSelectedRepositories(c.Request.Context(), clerkID, req.RepositoryIDs)
	if err != nil {
		respondError(c, err, "Failed to sync repositories")
		return
	}

	c.JSON(http.StatusOK, dto.SyncRepositoriesResponse{
		Message:      "Repositories synced successfully",
		Count:        len(repositories),
		Repositories: repositories,
	})
}

// ListSavedRepositories handles GET /api/repos/saved
// @Summary List saved repositories
// @Tags Repositories
// @Produce json
// @Param clerkId query string true "Clerk user ID"
// @Success 200 {object} dto.SavedRepositoryListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/repos/saved [get]
func (h *RepositoryHandler) ListSavedRepositories(c *gin.Context) {
	clerkID, err := clerkIDFrom(c, c.Query("clerkId"))
	if err != nil {
		respondError(c, err, "Failed to fetch saved repositories")
		return
	}

	repositories, err := h.repositoryService.ListSavedRepositories(c.Request.Context(), clerkID)
	if err != nil {
		respondError(c, err, "Failed to fetch saved repositories")
		return
	}

	c.JSON(http.StatusOK, dto.SavedRepositoryListResponse{
		Count:        len(repositories),
		Repositories: repositories,
	})
}

// ListPullRequests handles GET /api/repos/:owner/:repo/pulls
// @Summary List pull requests
// @Tags Repositories
// @Produce json
// @Param owner path string true "Repository owner"
// @Param repo path string true "Repository name"
// @Param clerkId query string true "Clerk user ID"
// @Param state query string false "open, closed or all" default(all)
// @Param page query int false "Page number" default(1) minimum(1)
// @Param per_page query int false "Items per page" default(30) minimum(1) maximum(100)
// @Success 200 {object} dto.PullRequestListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/repos/{owner}/{repo}/pulls [get]
func (h *RepositoryHandler) ListPullRequests(c *gin.Context) {
	clerkID, err := clerkIDFrom(c, c.Query("clerkId"))
	if err != nil {
		respondError(c, err, "Failed to fetch pull requests")
		return
	}

	state, err := repo.ParsePullRequestState(c.Query("state"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "VALIDATION_ERROR"})
		return
	}

	page := intQuery(c, "page", 1, math.MaxInt)
	perPage := intQuery(c, "per_page", 30, maxPageSize)

	response, err := h.repositoryService.ListPullRequests(
		c.Request.Context(), clerkID, c.Param("owner"), c.Param("repo"), state, page, perPage,
	)
	if err != nil {
		respondError(c, err, "Failed to fetch pull requests")
		return
	}

	c.JSON(http.StatusOK, response)
}

// RemoveRepository handles DELETE /api/repos/:id
// @Summary Remove a saved repository
// @Description Marks the repository inactive. Nothing is deleted.
// @Tags Repositories
// @Produce json
// @Param id path string true "Repository ID"
// @Param clerkId query string true "Clerk user ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/repos/{id} [delete]
func (h *RepositoryHandler) RemoveRepository(c *gin.Context) {
	clerkID, err := clerkIDFrom(c, c.Query("clerkId"))
	if err != nil {
		respondError(c, err, "Failed to remove repository")
		return
	}

	if err := h.repositoryService.RemoveSavedRepository(c.Request.Context(), clerkID, c.Param("id")); err != nil {
		respondError(c, err, "Failed to remove repository")
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Repository removed successfully"})
}
