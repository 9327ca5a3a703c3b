package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/themobileprof/mediguide-be/internal/api/middleware"
	"github.com/themobileprof/mediguide-be/internal/chat"
	"github.com/themobileprof/mediguide-be/internal/report"
	"github.com/themobileprof/mediguide-be/internal/symptoms"
	"github.com/themobileprof/mediguide-be/internal/trends"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

type mockEngine struct {
	err      error
	lastUser string
	lastText string
}

func (m *mockEngine) Process(ctx context.Context, userID, content string) (*chat.Result, error) {
	m.lastUser, m.lastText = userID, content
	if m.err != nil {
		return nil, m.err
	}
	return &chat.Result{UserID: userID, Reply: "noted"}, nil
}

func (m *mockEngine) Dashboard(ctx context.Context, userID string) (report.Dashboard, error) {
	m.lastUser = userID
	return report.Dashboard{UserID: userID}, m.err
}

func (m *mockEngine) Report(ctx context.Context, userID string) (report.Report, error) {
	m.lastUser = userID
	return report.Report{UserID: userID}, m.err
}

func (m *mockEngine) Trends(ctx context.Context, userID string) (trends.Trends, error) {
	m.lastUser = userID
	return trends.Trends{}, m.err
}

func (m *mockEngine) Conditions(text string) ([]symptoms.ConditionMatch, []string) {
	m.lastText = text
	return []symptoms.ConditionMatch{{Condition: "Flu"}}, []string{"fever"}
}

func setupRouter(engine Engine, auth *AuthHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(RouterConfig{
		Health:      NewHealthHandler(engine, nil),
		Auth:        auth,
		JWTSecret:   testSecret,
		CORSOrigins: []string{"*"},
	})
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token, err := middleware.GenerateToken(testSecret, userID, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return "Bearer " + token
}

func TestHealthCheck(t *testing.T) {
	router := setupRouter(&mockEngine{}, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestPostMessage(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		engineErr  error
		auth       bool
		wantStatus int
	}{
		{"success", `{"content":"I have a cough"}`, nil, true, http.StatusOK},
		{"unauthenticated", `{"content":"I have a cough"}`, nil, false, http.StatusUnauthorized},
		{"missing content", `{}`, nil, true, http.StatusBadRequest},
		{"invalid json", `{`, nil, true, http.StatusBadRequest},
		{"too long", `{"content":"` + strings.Repeat("a", MaxMessageLength+1) + `"}`, nil, true, http.StatusRequestEntityTooLarge},
		{"empty after trim", `{"content":"   "}`, chat.ErrEmptyMessage, true, http.StatusBadRequest},
		{"engine failure", `{"content":"hi"}`, errors.New("boom"), true, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &mockEngine{err: tt.engineErr}
			router := setupRouter(engine, nil)

			req := httptest.NewRequest(http.MethodPost, "/api/chat/messages", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.auth {
				req.Header.Set("Authorization", bearer(t, "user-7"))
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus == http.StatusOK {
				var res chat.Result
				if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				if res.UserID != "user-7" || engine.lastUser != "user-7" {
					t.Errorf("Expected user-7 from the token, got %q", res.UserID)
				}
			}
		})
	}
}

func TestViews(t *testing.T) {
	paths := []string{"/api/health/dashboard", "/api/health/report", "/api/health/trends"}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			engine := &mockEngine{}
			router := setupRouter(engine, nil)

			req := httptest.NewRequest(http.MethodGet, path, nil)
			req.Header.Set("Authorization", bearer(t, "user-3"))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("Expected status 200, got %d", w.Code)
			}
			if engine.lastUser != "user-3" {
				t.Errorf("Expected user-3, got %q", engine.lastUser)
			}
		})
	}

	t.Run("unknown user", func(t *testing.T) {
		router := setupRouter(&mockEngine{err: chat.ErrNoSession}, nil)
		req := httptest.NewRequest(http.MethodGet, "/api/health/report", nil)
		req.Header.Set("Authorization", bearer(t, "user-4"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	t.Run("cancelled request", func(t *testing.T) {
		router := setupRouter(&mockEngine{err: context.Canceled}, nil)
		req := httptest.NewRequest(http.MethodGet, "/api/health/dashboard", nil)
		req.Header.Set("Authorization", bearer(t, "user-3"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", w.Code)
		}
	})
}

func TestGetConditions(t *testing.T) {
	engine := &mockEngine{}
	router := setupRouter(engine, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health/conditions?q=fever", nil)
	req.Header.Set("Authorization", bearer(t, "u"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var body struct {
		Count    int      `json:"count"`
		Reported []string `json:"reported_symptoms"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Count != 1 || len(body.Reported) != 1 || engine.lastText != "fever" {
		t.Errorf("Unexpected response %+v", body)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/health/conditions", nil)
	req.Header.Set("Authorization", bearer(t, "u"))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 without q, got %d", w.Code)
	}
}

func TestIssueToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("letmein"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash code: %v", err)
	}

	tests := []struct {
		name       string
		codeHash   string
		body       string
		wantStatus int
	}{
		{"open issuer", "", `{"user_id":"alice"}`, http.StatusOK},
		{"missing user", "", `{}`, http.StatusBadRequest},
		{"correct code", string(hash), `{"user_id":"alice","access_code":"letmein"}`, http.StatusOK},
		{"wrong code", string(hash), `{"user_id":"alice","access_code":"nope"}`, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(&mockEngine{}, NewAuthHandler(testSecret, time.Hour, tt.codeHash))

			req := httptest.NewRequest(http.MethodPost, "/api/auth/token", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp TokenResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			claims, err := middleware.ParseToken(testSecret, resp.Token)
			if err != nil || claims.UserID != "alice" {
				t.Errorf("Expected a valid token for alice, got %v / %v", claims, err)
			}

			me := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			me.Header.Set("Authorization", "Bearer "+resp.Token)
			w = httptest.NewRecorder()
			router.ServeHTTP(w, me)
			if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "alice") {
				t.Errorf("Expected /me to return alice, got %d %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestTokenEndpointDisabled(t *testing.T) {
	router := setupRouter(&mockEngine{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", bytes.NewBufferString(`{"user_id":"a"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized && w.Code != http.StatusNotFound {
		t.Errorf("Expected the token endpoint to be unavailable, got %d", w.Code)
	}
}
