package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/themobileprof/mediguide-be/internal/api/middleware"
	"github.com/themobileprof/mediguide-be/internal/chat"
	"github.com/themobileprof/mediguide-be/internal/platform/logger"
	"github.com/themobileprof/mediguide-be/internal/report"
	"github.com/themobileprof/mediguide-be/internal/symptoms"
	"github.com/themobileprof/mediguide-be/internal/trends"
)

// MaxMessageLength bounds a single chat message in bytes.
const MaxMessageLength = 4000

// Engine is the part of the chat engine the handlers use
type Engine interface {
	Process(ctx context.Context, userID, content string) (*chat.Result, error)
	Dashboard(ctx context.Context, userID string) (report.Dashboard, error)
	Report(ctx context.Context, userID string) (report.Report, error)
	Trends(ctx context.Context, userID string) (trends.Trends, error)
	Conditions(text string) ([]symptoms.ConditionMatch, []string)
}

// HealthHandler serves chat and health view endpoints
type HealthHandler struct {
	engine Engine
	log    *logger.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(engine Engine, log *logger.Logger) *HealthHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &HealthHandler{engine: engine, log: log.With("handler", "health")}
}

// MessageRequest is a chat message from the client
type MessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// PostMessage runs a message through the engine
// POST /api/chat/messages
func (h *HealthHandler) PostMessage(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}
	if len(req.Content) > MaxMessageLength {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Message too long"})
		return
	}

	res, err := h.engine.Process(c.Request.Context(), middleware.GetUserID(c), req.Content)
	if err != nil {
		h.fail(c, "process message", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetDashboard returns the dashboard view
// GET /api/health/dashboard
func (h *HealthHandler) GetDashboard(c *gin.Context) {
	d, err := h.engine.Dashboard(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.fail(c, "dashboard", err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// GetReport returns the full health report
// GET /api/health/report
func (h *HealthHandler) GetReport(c *gin.Context) {
	r, err := h.engine.Report(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.fail(c, "report", err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// GetTrends returns current trends
// GET /api/health/trends
func (h *HealthHandler) GetTrends(c *gin.Context) {
	t, err := h.engine.Trends(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.fail(c, "trends", err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// GetConditions ranks conditions for free text without recording anything
// GET /api/health/conditions?q=fever+and+cough
func (h *HealthHandler) GetConditions(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	if len(q) > MaxMessageLength {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Query too long"})
		return
	}

	matches, reported := h.engine.Conditions(q)
	c.JSON(http.StatusOK, gin.H{
		"conditions":        matches,
		"reported_symptoms": reported,
		"count":             len(matches),
	})
}

func (h *HealthHandler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, chat.ErrMissingUser):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, chat.ErrNoSession):
		c.JSON(http.StatusNotFound, gin.H{"error": "No health data yet"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Request cancelled"})
	default:
		h.log.Error("request failed", "op", op, "user_id", middleware.GetUserID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
