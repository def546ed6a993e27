package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/quicknotes/internal/model"
)

type mockTokenVerifier struct {
	verifyFn func(ctx context.Context, token string) (*model.Identity, error)
}

func (m *mockTokenVerifier) VerifyToken(ctx context.Context, token string) (*model.Identity, error) {
	if m.verifyFn != nil {
		return m.verifyFn(ctx, token)
	}
	return nil, model.NewUnauthenticatedError()
}

var _ TokenVerifier = (*mockTokenVerifier)(nil)

func acceptToken(valid string) *mockTokenVerifier {
	return &mockTokenVerifier{
		verifyFn: func(ctx context.Context, token string) (*model.Identity, error) {
			if token != valid {
				return nil, model.NewUnauthenticatedError()
			}
			return &model.Identity{UserID: "user-1", TokenID: "jti-1"}, nil
		},
	}
}

func TestBearerAuth_ValidToken_InjectsIdentity(t *testing.T) {
	var captured *model.Identity
	handler := NewBearerAuthMiddleware(acceptToken("good"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := IdentityFromContext(r.Context())
		if err != nil {
			t.Errorf("IdentityFromContext() error = %v", err)
		}
		captured = identity
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if captured == nil || captured.UserID != "user-1" || captured.TokenID != "jti-1" {
		t.Errorf("identity = %+v", captured)
	}
}

func TestBearerAuth_SchemeIsCaseInsensitive(t *testing.T) {
	handler := NewBearerAuthMiddleware(acceptToken("good"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
	req.Header.Set("Authorization", "bearer good")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestBearerAuth_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"basic scheme", "Basic dXNlcjpwYXNz"},
		{"scheme only", "Bearer"},
		{"blank token", "Bearer   "},
		{"invalid token", "Bearer bad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := NewBearerAuthMiddleware(acceptToken("good"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if called {
				t.Error("next handler must not be called")
			}
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
			}
			var body ErrorResponseBody
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.Error != model.MsgPleaseAuthenticate {
				t.Errorf("error = %q, want %q", body.Error, model.MsgPleaseAuthenticate)
			}
		})
	}
}

func TestBearerAuth_VerifierFailure_Returns500(t *testing.T) {
	verifier := &mockTokenVerifier{
		verifyFn: func(ctx context.Context, token string) (*model.Identity, error) {
			return nil, errors.New("revocation store unavailable")
		},
	}
	handler := NewBearerAuthMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler must not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/notes", nil)
	req.Header.Set("Authorization", "Bearer any")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestUserIDFromContext(t *testing.T) {
	if _, err := UserIDFromContext(context.Background()); err == nil {
		t.Error("expected error for empty context")
	}

	ctx := ContextWithUserID(context.Background(), "user-42")
	userID, err := UserIDFromContext(ctx)
	if err != nil {
		t.Fatalf("UserIDFromContext() error = %v", err)
	}
	if userID != "user-42" {
		t.Errorf("userID = %q, want %q", userID, "user-42")
	}
}
