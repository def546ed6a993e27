package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/quicknotes/internal/metrics"
	"github.com/hitoshi/quicknotes/internal/middleware"
	"github.com/hitoshi/quicknotes/internal/model"
	"github.com/hitoshi/quicknotes/internal/note"
)

// NoteServiceInterface はメモハンドラーが必要とするサービスインターフェース。
type NoteServiceInterface interface {
	CreateNote(ctx context.Context, identity *model.Identity, in note.CreateNoteInput) (*noteResponse, error)
	ListNotes(ctx context.Context, identity *model.Identity) ([]noteResponse, error)
}

// NoteHandler はメモのHTTPハンドラー。
type NoteHandler struct {
	service NoteServiceInterface
	metrics metrics.MetricsCollector
}

// NewNoteHandler はNoteHandlerを生成する。
func NewNoteHandler(service NoteServiceInterface, collector metrics.MetricsCollector) *NoteHandler {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &NoteHandler{
		service: service,
		metrics: collector,
	}
}

// createNoteRequest はメモ作成リクエストのボディ。
// 既存クライアントが送るuserフィールドは受け付けるが使用しない。
type createNoteRequest struct {
	Title   string          `json:"title"`
	Content string          `json:"content"`
	Tags    []string        `json:"tags"`
	User    json.RawMessage `json:"user,omitempty"`
}

// noteResponse はメモのAPIレスポンス。所有者はuserフィールドで返す。
type noteResponse struct {
	ID        string   `json:"id"`
	User      string   `json:"user"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// CreateNote はメモを作成する。所有者は常に認証済みユーザーになる。
// POST /api/notes
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	var req createNoteRequest
	if apiErr := decodeJSONBody(w, r, &req); apiErr != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, apiErr)
		return
	}

	created, err := h.service.CreateNote(r.Context(), identity, note.CreateNoteInput{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	h.metrics.RecordNoteCreated()
	writeJSON(w, http.StatusCreated, created)
}

// ListNotes は認証済みユーザーのメモ一覧を返す。該当なしの場合は空配列を返す。
// GET /api/notes
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	notes, err := h.service.ListNotes(r.Context(), identity)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	if notes == nil {
		notes = []noteResponse{}
	}

	writeJSON(w, http.StatusOK, notes)
}
