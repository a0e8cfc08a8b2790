package handlers

import (
	"encoding/json"
	"net/http"

	"reviewpilot-core/internal/application/dto"
	"reviewpilot-core/internal/application/service"
	"reviewpilot-core/internal/clerk"
	infraClerk "reviewpilot-core/internal/infrastructure/clerk"

	"github.com/gin-gonic/gin"
)

// WebhookHandler receives Clerk user lifecycle events
type WebhookHandler struct {
	userService *service.UserService
	verifier    *clerk.WebhookVerifier
}

// NewWebhookHandler creates a new webhook handler. Deliveries are only
// signature-checked when verifier is not nil.
func NewWebhookHandler(userService *service.UserService, verifier *clerk.WebhookVerifier) *WebhookHandler {
	return &WebhookHandler{userService: userService, verifier: verifier}
}

// Clerk handles POST /api/webhooks/clerk
// @Summary Clerk webhook
// @Description Mirrors user.created, user.updated and user.deleted into the users table
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param event body clerk.WebhookEvent true "Clerk event"
// @Param svix-id header string false "Delivery id"
// @Param svix-timestamp header string false "Delivery time (unix seconds)"
// @Param svix-signature header string false "v1 HMAC-SHA256 signatures"
// @Success 200 {object} dto.WebhookResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/webhooks/clerk [post]
func (h *WebhookHandler) Clerk(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid webhook payload", Code: "VALIDATION_ERROR"})
		return
	}

	if h.verifier != nil {
		if err := h.verifier.Verify(c.Request.Header, body); err != nil {
			respondError(c, err, "Invalid webhook signature")
			return
		}
	}

	var event clerk.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid webhook payload", Code: "VALIDATION_ERROR"})
		return
	}

	if err := h.userService.HandleClerkEvent(c.Request.Context(), infraClerk.ToEvent(&event)); err != nil {
		respondError(c, err, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, dto.WebhookResponse{Success: true})
}
