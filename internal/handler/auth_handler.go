// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/hitoshi/quicknotes/internal/auth"
	"github.com/hitoshi/quicknotes/internal/metrics"
	"github.com/hitoshi/quicknotes/internal/middleware"
	"github.com/hitoshi/quicknotes/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, in auth.RegisterInput) (*userResponse, string, error)
	Login(ctx context.Context, in auth.LoginInput) (*userResponse, string, error)
	CurrentUser(ctx context.Context, userID string) (*userResponse, error)
	Logout(ctx context.Context, identity *model.Identity) error
}

// AuthHandler はメールアドレス・パスワード認証のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	metrics metrics.MetricsCollector
}

// NewAuthHandler はAuthHandlerを生成する。collectorがnilの場合は記録しない。
func NewAuthHandler(service AuthServiceInterface, collector metrics.MetricsCollector) *AuthHandler {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &AuthHandler{
		service: service,
		metrics: collector,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse はユーザー情報のAPIレスポンス。パスワードハッシュは含めない。
type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type authResponse struct {
	User  *userResponse `json:"user"`
	Token string        `json:"token"`
}

type verifyResponse struct {
	User *userResponse `json:"user"`
}

// Register はユーザー登録を処理する。
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if apiErr := decodeJSONBody(w, r, &req); apiErr != nil {
		h.metrics.RecordAuthEvent(metrics.EventRegister, metrics.OutcomeRejected)
		middleware.WriteErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	user, token, err := h.service.Register(r.Context(), auth.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		h.metrics.RecordAuthEvent(metrics.EventRegister, outcomeOf(err))
		middleware.WriteError(w, r, err)
		return
	}

	h.metrics.RecordAuthEvent(metrics.EventRegister, metrics.OutcomeSuccess)
	writeJSON(w, http.StatusCreated, authResponse{User: user, Token: token})
}

// Login はログインを処理する。
// ボディの解析失敗は400、認証失敗は401を返す。
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if apiErr := decodeJSONBody(w, r, &req); apiErr != nil {
		h.metrics.RecordAuthEvent(metrics.EventLogin, metrics.OutcomeRejected)
		middleware.WriteErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	user, token, err := h.service.Login(r.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.metrics.RecordAuthEvent(metrics.EventLogin, outcomeOf(err))
		middleware.WriteError(w, r, err)
		return
	}

	h.metrics.RecordAuthEvent(metrics.EventLogin, metrics.OutcomeSuccess)
	writeJSON(w, http.StatusOK, authResponse{User: user, Token: token})
}

// Verify はトークンに対応するユーザーを返す。BearerAuthの後に配置する。
// GET /api/auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	user, err := h.service.CurrentUser(r.Context(), identity.UserID)
	if err != nil {
		h.metrics.RecordAuthEvent(metrics.EventVerify, outcomeOf(err))
		middleware.WriteError(w, r, err)
		return
	}

	h.metrics.RecordAuthEvent(metrics.EventVerify, metrics.OutcomeSuccess)
	writeJSON(w, http.StatusOK, verifyResponse{User: user})
}

// Logout は使用中のトークンを失効させる。
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	if err := h.service.Logout(r.Context(), identity); err != nil {
		h.metrics.RecordAuthEvent(metrics.EventLogout, outcomeOf(err))
		middleware.WriteError(w, r, err)
		return
	}

	h.metrics.RecordAuthEvent(metrics.EventLogout, metrics.OutcomeSuccess)
	w.WriteHeader(http.StatusNoContent)
}

// outcomeOf はエラーをメトリクスの結果ラベルに変換する。
func outcomeOf(err error) string {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Kind != model.KindInternal {
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeError
}
