package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/essaycheck/internal/metrics"
	"github.com/hitoshi/essaycheck/internal/middleware"
	"github.com/hitoshi/essaycheck/internal/model"
)

func newTestRouter(t *testing.T, identity *mockIdentityService, essaySvc *mockEssayService, history *mockHistoryService) http.Handler {
	t.Helper()

	rl := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(1000, 1000))
	t.Cleanup(rl.Stop)

	return NewRouter(&RouterDeps{
		TokenVerifier:     identity,
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
		Logger:            slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Recorder:          metrics.Nop{},
		Gatherer:          prometheus.NewRegistry(),
		IdentityService:   identity,
		EssayService:      essaySvc,
		HistoryService:    history,
	})
}

func validIdentity() *mockIdentityService {
	return &mockIdentityService{
		getUserFn: func(ctx context.Context, accessToken string) (*model.User, error) {
			if accessToken != "valid-token" {
				return nil, model.NewInvalidCredentialError("invalid JWT")
			}
			return &model.User{ID: "user-1", Email: "a@b.com"}, nil
		},
	}
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t, validIdentity(), &mockEssayService{}, &mockHistoryService{})

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/user/update"},
		{http.MethodPost, "/api/analyze-essay"},
		{http.MethodGet, "/api/history"},
		{http.MethodDelete, "/api/history"},
		{http.MethodDelete, "/api/history/1"},
	}

	for _, tt := range protected {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
			}
			body := decodeBody(t, w)
			if body["error"] != "Token is missing" {
				t.Errorf("error = %v", body["error"])
			}
		})
	}
}

func TestRouter_ProtectedRoute_WithValidToken(t *testing.T) {
	router := newTestRouter(t, validIdentity(), &mockEssayService{}, &mockHistoryService{})

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := decodeBody(t, w)
	if _, ok := body["history"].([]any); !ok {
		t.Errorf("history = %v", body["history"])
	}
}

func TestRouter_PublicRoutesSkipAuth(t *testing.T) {
	identity := &mockIdentityService{
		signUpFn: func(ctx context.Context, email, password string) error {
			return nil
		},
	}
	router := newTestRouter(t, identity, &mockEssayService{}, &mockHistoryService{})

	req := jsonRequest(http.MethodPost, "/api/signup", map[string]string{
		"email":    "a@b.com",
		"password": "pw123456",
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t, validIdentity(), &mockEssayService{}, &mockHistoryService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := decodeBody(t, w)
	if body["status"] != "ok" {
		t.Errorf("status field = %v", body["status"])
	}
}

func TestRouter_Metrics(t *testing.T) {
	router := newTestRouter(t, validIdentity(), &mockEssayService{}, &mockHistoryService{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestRouter_PreflightReturns204(t *testing.T) {
	router := newTestRouter(t, validIdentity(), &mockEssayService{}, &mockHistoryService{})

	req := httptest.NewRequest(http.MethodOptions, "/api/analyze-essay", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", got)
	}
}

func TestRouter_SecurityHeadersApplied(t *testing.T) {
	router := newTestRouter(t, validIdentity(), &mockEssayService{}, &mockHistoryService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}

func TestRouter_AnalyzeEssay_EndToEnd(t *testing.T) {
	essaySvc := &mockEssayService{
		analyzeFn: func(ctx context.Context, user *model.User, question, answer string) (string, error) {
			return "פידבק", nil
		},
	}
	router := newTestRouter(t, validIdentity(), essaySvc, &mockHistoryService{})

	req := jsonRequest(http.MethodPost, "/api/analyze-essay", map[string]string{
		"text":   "שאלה",
		"answer": "תשובה",
	})
	req.Header.Set("Authorization", "Bearer valid-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := decodeBody(t, w)
	if body["result"] != "פידבק" || body["status"] != "success" {
		t.Errorf("body = %v", body)
	}
}
