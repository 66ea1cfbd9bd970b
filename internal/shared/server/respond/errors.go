package respond

import (
	"github.com/gin-gonic/gin"

	"resume-insights/internal/shared/telemetry"
)

// ErrorResponse is the error body returned by every route.
type ErrorResponse struct {
	Error         string      `json:"error"`
	Message       string      `json:"message"`
	RequiresLogin bool        `json:"requiresLogin,omitempty"`
	Details       interface{} `json:"details,omitempty"`
}

// Error sends a standardized error response and aborts the chain.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	write(c, status, ErrorResponse{Error: code, Message: message, Details: details})
}

// LoginRequired sends an error that tells the client to sign in to continue.
func LoginRequired(c *gin.Context, status int, code, message string) {
	write(c, status, ErrorResponse{Error: code, Message: message, RequiresLogin: true})
}

func write(c *gin.Context, status int, body ErrorResponse) {
	fields := map[string]any{
		"status":     status,
		"code":       body.Error,
		"message":    body.Message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	if isGuest, ok := c.Get("isGuest"); ok {
		fields["is_guest"] = isGuest
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}

	c.AbortWithStatusJSON(status, body)
}
