package handlers

import (
	"net/http"
	"strconv"

	"reviewpilot-core/internal/apperror"
	"reviewpilot-core/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondError writes err as an ErrorResponse. Internal details are logged and
// replaced with fallback.
func respondError(c *gin.Context, err error, fallback string) {
	appErr, ok := apperror.As(err)
	if !ok {
		appErr = apperror.Internal(fallback, err)
	}

	status, message := statusFor(appErr, fallback)
	if status >= http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"code":   appErr.Code,
		}).Errorf("%s: %v", fallback, err)
	}

	c.JSON(status, ErrorResponse{Error: message, Code: appErr.Code})
}

func statusFor(err *apperror.Error, fallback string) (int, string) {
	switch err.Kind {
	case apperror.KindValidation:
		return http.StatusBadRequest, err.Message
	case apperror.KindNotConnected:
		return http.StatusBadRequest, "GitHub account not connected"
	case apperror.KindNotFound:
		return http.StatusNotFound, err.Message
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized, err.Message
	case apperror.KindUpstreamAuth:
		return http.StatusUnauthorized, "GitHub token expired or invalid. Please reconnect your GitHub account."
	case apperror.KindUpstreamNotFound:
		return http.StatusNotFound, "Repository not found"
	case apperror.KindAuthentication:
		return http.StatusInternalServerError, "Authentication error"
	case apperror.KindConfig:
		return http.StatusInternalServerError, err.Message
	default:
		return http.StatusInternalServerError, fallback
	}
}

// clerkIDFrom resolves the Clerk user id for the request. When a verified
// session is present the id defaults to the session subject and must match it.
func clerkIDFrom(c *gin.Context, provided string) (string, error) {
	session, ok := middleware.SessionUser(c)
	if !ok {
		return provided, nil
	}
	if provided == "" {
		return session.ID, nil
	}
	if provided != session.ID {
		return "", apperror.Unauthorized("clerkId does not match the session")
	}
	return provided, nil
}

// intQuery parses a positive integer query parameter, clamped to [1, max]
func intQuery(c *gin.Context, key string, def, max int) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	if value < 1 {
		return 1
	}
	if value > max {
		return max
	}
	return value
}
