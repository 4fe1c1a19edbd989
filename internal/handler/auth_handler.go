package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gaitlab/gait-backend-go/internal/middleware"
	"github.com/gaitlab/gait-backend-go/pkg/response"
)

// AuthHandler issues API tokens
type AuthHandler struct {
	secret string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(secret string) *AuthHandler {
	return &AuthHandler{secret: secret}
}

type tokenRequest struct {
	Subject string `json:"subject" binding:"required"`
}

// IssueToken handles POST /api/v1/auth/token
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "subject is required")
		return
	}

	token, err := middleware.IssueToken(h.secret, req.Subject, 24*time.Hour)
	if err != nil {
		response.InternalError(c, "Failed to issue token")
		return
	}
	response.Success(c, gin.H{
		"token":      token,
		"expires_in": int((24 * time.Hour).Seconds()),
	})
}
