// Package ws serves the chat engine over WebSocket.
package ws

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
	"github.com/themobileprof/mediguide-be/internal/api/middleware"
	"github.com/themobileprof/mediguide-be/internal/chat"
	"github.com/themobileprof/mediguide-be/internal/platform/logger"
)

// maxFrameBytes bounds a single inbound frame
const maxFrameBytes = 8 << 10

// Outgoing frame types
const (
	TypeResult = "result"
	TypeError  = "error"
)

// Processor runs one message for a user
type Processor interface {
	Process(ctx context.Context, userID, content string) (*chat.Result, error)
}

// ChatHandler handles WebSocket chat connections
type ChatHandler struct {
	engine    Processor
	jwtSecret string
	perMinute int
	upgrader  websocket.Upgrader
	log       *logger.Logger
}

// NewChatHandler creates a new chat handler. origins lists the allowed
// Origin headers; "*" allows any. perMinute limits messages per connection.
func NewChatHandler(engine Processor, jwtSecret string, origins []string, perMinute int, log *logger.Logger) *ChatHandler {
	if log == nil {
		log = logger.Nop()
	}
	h := &ChatHandler{
		engine:    engine,
		jwtSecret: jwtSecret,
		perMinute: perMinute,
		log:       log.With("handler", "ws_chat"),
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: originChecker(origins)}
	return h
}

func originChecker(origins []string) func(r *http.Request) bool {
	allowAll := len(origins) == 0 || lo.Contains(origins, "*")
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if allowAll || origin == "" {
			return true
		}
		if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
			return true
		}
		return lo.Contains(origins, origin)
	}
}

// IncomingMessage represents a message from the client
type IncomingMessage struct {
	Content string `json:"content"`
}

// OutgoingMessage represents a message to the client
type OutgoingMessage struct {
	Type    string       `json:"type"` // "result" or "error"
	Content string       `json:"content,omitempty"`
	Data    *chat.Result `json:"data,omitempty"`
}

// HandleChat handles WebSocket chat connections
func (h *ChatHandler) HandleChat(c *gin.Context) {
	token := middleware.ExtractToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
		return
	}
	claims, err := middleware.ParseToken(h.jwtSecret, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxFrameBytes)

	userID := claims.UserID
	limiter := middleware.NewMessageLimiter(h.perMinute)
	h.log.Info("websocket connected", "user_id", userID)

	ctx := c.Request.Context()
	for {
		var msg IncomingMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("websocket read failed", "user_id", userID, "error", err)
			}
			break
		}

		if !limiter.Allow() {
			if err := h.sendError(conn, "Rate limit exceeded. Please slow down."); err != nil {
				break
			}
			continue
		}

		res, err := h.engine.Process(ctx, userID, msg.Content)
		if err != nil {
			if werr := h.sendError(conn, errorText(err)); werr != nil {
				break
			}
			continue
		}
		if err := conn.WriteJSON(OutgoingMessage{Type: TypeResult, Data: res}); err != nil {
			h.log.Warn("websocket write failed", "user_id", userID, "error", err)
			break
		}
	}
	h.log.Info("websocket disconnected", "user_id", userID)
}

func errorText(err error) string {
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		return "Message is empty"
	case errors.Is(err, context.Canceled):
		return "Connection closing"
	default:
		return "Failed to process message"
	}
}

// sendError sends an error message to the client
func (h *ChatHandler) sendError(conn *websocket.Conn, message string) error {
	return conn.WriteJSON(OutgoingMessage{
		Type:    TypeError,
		Content: message,
	})
}
