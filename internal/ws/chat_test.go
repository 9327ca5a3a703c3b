package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/themobileprof/mediguide-be/internal/api/middleware"
	"github.com/themobileprof/mediguide-be/internal/chat"
)

const testSecret = "ws-secret"

type mockProcessor struct{}

func (m *mockProcessor) Process(ctx context.Context, userID, content string) (*chat.Result, error) {
	if strings.TrimSpace(content) == "" {
		return nil, chat.ErrEmptyMessage
	}
	return &chat.Result{UserID: userID, Reply: "echo: " + content}, nil
}

func startServer(t *testing.T, perMinute int, origins []string) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewChatHandler(&mockProcessor{}, testSecret, origins, perMinute, nil)
	router.GET("/ws/chat", h.HandleChat)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat?token=" + token
}

func dial(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	token, err := middleware.GenerateToken(testSecret, userID, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, token), nil)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func exchange(t *testing.T, conn *websocket.Conn, content string) OutgoingMessage {
	t.Helper()
	if err := conn.WriteJSON(IncomingMessage{Content: content}); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var out OutgoingMessage
	if err := conn.ReadJSON(&out); err != nil {
		t.Fatalf("Failed to read: %v", err)
	}
	return out
}

func TestHandleChatResult(t *testing.T) {
	srv := startServer(t, 30, []string{"*"})
	conn := dial(t, srv, "user-1")

	out := exchange(t, conn, "hello")
	if out.Type != TypeResult || out.Data == nil {
		t.Fatalf("Expected a result frame, got %+v", out)
	}
	if out.Data.UserID != "user-1" || out.Data.Reply != "echo: hello" {
		t.Errorf("Unexpected result %+v", out.Data)
	}

	out = exchange(t, conn, "  ")
	if out.Type != TypeError || out.Content != "Message is empty" {
		t.Errorf("Expected an empty message error, got %+v", out)
	}

	// connection stays usable after an error
	if out := exchange(t, conn, "again"); out.Type != TypeResult {
		t.Errorf("Expected a result after an error, got %+v", out)
	}
}

func TestHandleChatRateLimit(t *testing.T) {
	srv := startServer(t, 1, []string{"*"})
	conn := dial(t, srv, "user-1")

	if out := exchange(t, conn, "first"); out.Type != TypeResult {
		t.Fatalf("Expected first message to pass, got %+v", out)
	}
	if out := exchange(t, conn, "second"); out.Type != TypeError {
		t.Errorf("Expected second message to be limited, got %+v", out)
	}
}

func TestHandleChatRejectsBadTokens(t *testing.T) {
	srv := startServer(t, 30, []string{"*"})

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"invalid", "garbage"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, tt.token), nil)
			if err == nil {
				t.Fatal("Expected dial to fail")
			}
			if resp == nil || resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("Expected 401, got %v", resp)
			}
		})
	}
}

func TestOriginChecker(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		origin  string
		want    bool
	}{
		{"wildcard", []string{"*"}, "https://any.example", true},
		{"no origin header", []string{"https://app.example"}, "", true},
		{"listed", []string{"https://app.example"}, "https://app.example", true},
		{"same host", []string{"https://app.example"}, "http://api.example", true},
		{"unlisted", []string{"https://app.example"}, "https://evil.example", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://api.example/ws/chat", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if got := originChecker(tt.origins)(req); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}
