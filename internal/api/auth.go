package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/themobileprof/mediguide-be/internal/api/middleware"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler issues access tokens for caller-chosen user ids
type AuthHandler struct {
	jwtSecret      string
	ttl            time.Duration
	accessCodeHash []byte
	clock          func() time.Time
}

// NewAuthHandler creates a new auth handler. When accessCodeHash (a
// bcrypt hash) is set, token requests must present the matching code.
func NewAuthHandler(jwtSecret string, ttl time.Duration, accessCodeHash string) *AuthHandler {
	h := &AuthHandler{
		jwtSecret: jwtSecret,
		ttl:       ttl,
		clock:     time.Now,
	}
	if accessCodeHash != "" {
		h.accessCodeHash = []byte(accessCodeHash)
	}
	return h
}

// TokenRequest represents the token request
type TokenRequest struct {
	UserID     string `json:"user_id" binding:"required,max=128"`
	AccessCode string `json:"access_code"`
}

// TokenResponse represents the token response
type TokenResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueToken signs a token for the requested user id
// POST /api/auth/token
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	if h.accessCodeHash != nil {
		if err := bcrypt.CompareHashAndPassword(h.accessCodeHash, []byte(req.AccessCode)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid access code"})
			return
		}
	}

	now := h.clock()
	token, err := middleware.GenerateToken(h.jwtSecret, req.UserID, h.ttl, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		Token:     token,
		UserID:    req.UserID,
		ExpiresAt: now.Add(h.ttl),
	})
}

// Me returns the authenticated user id
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user_id": middleware.GetUserID(c)})
}
