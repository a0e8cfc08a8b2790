package handlers

import (
	"net/http"

	"reviewpilot-core/internal/application/dto"
	"reviewpilot-core/internal/application/service"

	"github.com/gin-gonic/gin"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// SyncUser handles POST /api/auth/sync
// @Summary Sync the signed-in user
// @Description Creates the user on first sign-in and refreshes the profile afterwards
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.SyncUserRequest true "Clerk identity"
// @Success 200 {object} dto.SyncUserResponse
// @Success 201 {object} dto.SyncUserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/auth/sync [post]
func (h *UserHandler) SyncUser(c *gin.Context) {
	var req dto.SyncUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "clerkId and email are required", Code: "VALIDATION_ERROR"})
		return
	}

	clerkID, err := clerkIDFrom(c, req.ClerkID)
	if err != nil {
		respondError(c, err, "Internal server error")
		return
	}
	req.ClerkID = clerkID

	user, created, err := h.userService.SyncUser(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Internal server error")
		return
	}

	if created {
		c.JSON(http.StatusCreated, dto.SyncUserResponse{
			Message:   "User created successfully",
			User:      user,
			IsNewUser: true,
		})
		return
	}

	c.JSON(http.StatusOK, dto.SyncUserResponse{
		Message: "User synced successfully",
		User:    user,
	})
}

// GetCurrentUser handles GET /api/auth/me
// @Summary Get current user information
// @Tags Authentication
// @Produce json
// @Param clerkId query string true "Clerk user ID"
// @Success 200 {object} dto.CurrentUserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/auth/me [get]
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	clerkID, err := clerkIDFrom(c, c.Query("clerkId"))
	if err != nil {
		respondError(c, err, "Internal server error")
		return
	}

	user, err := h.userService.GetUserByClerkID(c.Request.Context(), clerkID)
	if err != nil {
		respondError(c, err, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, dto.CurrentUserResponse{User: user})
}

// GetUser handles GET /api/auth/me/:userId
// @Summary Get a user by internal ID
// @Tags Authentication
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} dto.CurrentUserResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/auth/me/{userId} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUserByID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err, "Internal server error")
		return
	}

	if _, err := clerkIDFrom(c, user.ClerkID); err != nil {
		respondError(c, err, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, dto.CurrentUserResponse{User: user})
}

// DashboardStats handles GET /api/dashboard/stats
// @Summary Dashboard counters
// @Description Review statistics are placeholders; repoCount counts active saved repositories
// @Tags Dashboard
// @Produce json
// @Param clerkId query string false "Clerk user ID"
// @Success 200 {object} dto.DashboardStatsResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/dashboard/stats [get]
func (h *UserHandler) DashboardStats(c *gin.Context) {
	clerkID, err := clerkIDFrom(c, c.Query("clerkId"))
	if err != nil {
		respondError(c, err, "Internal server error")
		return
	}

	stats, err := h.userService.DashboardStats(c.Request.Context(), clerkID)
	if err != nil {
		respondError(c, err, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, stats)
}
