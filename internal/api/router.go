// Package api exposes the engine over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/themobileprof/mediguide-be/internal/api/middleware"
	"github.com/themobileprof/mediguide-be/internal/platform/logger"
)

// RouterConfig holds everything the router mounts
type RouterConfig struct {
	Health      *HealthHandler
	Auth        *AuthHandler // nil disables the token endpoint
	Chat        gin.HandlerFunc
	JWTSecret   string
	CORSOrigins []string
	IPLimiter   *middleware.RateLimiter
	UserLimiter *middleware.RateLimiter
	Logger      *logger.Logger
}

// NewRouter builds the gin engine with all routes and middleware.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(cfg.CORSOrigins))
	if cfg.IPLimiter != nil {
		router.Use(middleware.PerIP(cfg.IPLimiter))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	auth := router.Group("/api/auth")
	{
		if cfg.Auth != nil {
			auth.POST("/token", cfg.Auth.IssueToken)
			auth.GET("/me", middleware.JWTAuth(cfg.JWTSecret), cfg.Auth.Me)
		}
	}

	protected := router.Group("/api")
	protected.Use(middleware.JWTAuth(cfg.JWTSecret))
	if cfg.UserLimiter != nil {
		protected.Use(middleware.PerUser(cfg.UserLimiter))
	}
	{
		protected.POST("/chat/messages", cfg.Health.PostMessage)
		protected.GET("/health/dashboard", cfg.Health.GetDashboard)
		protected.GET("/health/report", cfg.Health.GetReport)
		protected.GET("/health/trends", cfg.Health.GetTrends)
		protected.GET("/health/conditions", cfg.Health.GetConditions)
	}

	// Authenticates through the token query parameter or header
	if cfg.Chat != nil {
		router.GET("/ws/chat", cfg.Chat)
	}

	return router
}
