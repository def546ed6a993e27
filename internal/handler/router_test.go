package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/quicknotes/internal/metrics"
	"github.com/hitoshi/quicknotes/internal/middleware"
	"github.com/hitoshi/quicknotes/internal/model"
)

type stubVerifier struct{}

func (stubVerifier) VerifyToken(ctx context.Context, token string) (*model.Identity, error) {
	if token != "valid-token" {
		return nil, model.NewUnauthenticatedError()
	}
	return &model.Identity{UserID: "user-1", TokenID: "jti-1", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func createTestRouter(t *testing.T, reg *prometheus.Registry) http.Handler {
	t.Helper()
	rl := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rl.Stop)

	deps := &RouterDeps{
		TokenVerifier:     stubVerifier{},
		CORSAllowedOrigin: "*",
		RateLimiter:       rl,
		Pinger:            &mockPinger{},
		AuthService: &mockAuthService{
			currentUserFn: func(ctx context.Context, userID string) (*userResponse, error) {
				return &userResponse{ID: userID}, nil
			},
		},
		NoteService: &mockNoteService{},
	}
	if reg != nil {
		deps.Metrics = metrics.NewCollector(reg)
		deps.Gatherer = reg
	}
	return NewRouter(deps)
}

func TestNewRouter_PublicRoutes(t *testing.T) {
	router := createTestRouter(t, nil)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodOptions, "/api/notes", http.StatusNoContent},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		if w.Code != tt.want {
			t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, w.Code, tt.want)
		}
	}
}

func TestNewRouter_ProtectedRoutes_RequireBearerToken(t *testing.T) {
	router := createTestRouter(t, nil)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/auth/verify"},
		{http.MethodPost, "/api/auth/logout"},
		{http.MethodGet, "/api/notes"},
		{http.MethodPost, "/api/notes"},
	}
	for _, rt := range routes {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(rt.method, rt.path, strings.NewReader(`{"title":"T"}`)))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token status = %d, want %d", rt.method, rt.path, w.Code, http.StatusUnauthorized)
		}
		if !strings.Contains(w.Body.String(), "Please authenticate") {
			t.Errorf("%s %s body = %s", rt.method, rt.path, w.Body.String())
		}
	}
}

func TestNewRouter_ProtectedRoutes_WithToken(t *testing.T) {
	router := createTestRouter(t, nil)

	routes := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/api/auth/verify", "", http.StatusOK},
		{http.MethodGet, "/api/notes", "", http.StatusOK},
		{http.MethodPost, "/api/notes", `{"title":"T"}`, http.StatusCreated},
		{http.MethodPost, "/api/auth/logout", "", http.StatusNoContent},
	}
	for _, rt := range routes {
		req := httptest.NewRequest(rt.method, rt.path, strings.NewReader(rt.body))
		req.Header.Set("Authorization", "Bearer valid-token")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != rt.want {
			t.Errorf("%s %s status = %d, want %d", rt.method, rt.path, w.Code, rt.want)
		}
	}
}

func TestNewRouter_UnknownRoute_ReturnsJSON404(t *testing.T) {
	router := createTestRouter(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if body := decodeErrorBody(t, w); body.Code != "NOT_FOUND" {
		t.Errorf("code = %q, want %q", body.Code, "NOT_FOUND")
	}
}

func TestNewRouter_SecurityHeadersOnEveryResponse(t *testing.T) {
	router := createTestRouter(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want %q", got, "nosniff")
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "*")
	}
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := createTestRouter(t, reg)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `quicknotes_http_requests_total{method="GET",route="/health",status="200"} 1`) {
		t.Errorf("expected /health request to be counted, got:\n%s", w.Body.String())
	}
}

func TestNewRouter_MetricsEndpoint_DisabledWithoutGatherer(t *testing.T) {
	router := createTestRouter(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestNewRouter_AuthRateLimit(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(120, 2))
	t.Cleanup(rl.Stop)
	router := NewRouter(&RouterDeps{
		TokenVerifier: stubVerifier{},
		RateLimiter:   rl,
		AuthService:   &mockAuthService{},
		NoteService:   &mockNoteService{},
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{`))
		req.RemoteAddr = "192.0.2.10:5555"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusBadRequest || codes[1] != http.StatusBadRequest {
		t.Errorf("first two codes = %v, want 400s", codes[:2])
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("third code = %d, want %d", codes[2], http.StatusTooManyRequests)
	}
}
