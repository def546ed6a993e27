package handler

import (
	"context"
	"time"

	"github.com/hitoshi/quicknotes/internal/auth"
	"github.com/hitoshi/quicknotes/internal/model"
	"github.com/hitoshi/quicknotes/internal/note"
)

// AuthServiceAdapter は auth.Service を AuthServiceInterface に適合させるアダプタ。
type AuthServiceAdapter struct {
	svc *auth.Service
}

// NewAuthServiceAdapter はAuthServiceAdapterを生成する。
func NewAuthServiceAdapter(svc *auth.Service) *AuthServiceAdapter {
	return &AuthServiceAdapter{svc: svc}
}

// Register はユーザーを登録しhandlerレスポンス型で返す。
func (a *AuthServiceAdapter) Register(ctx context.Context, in auth.RegisterInput) (*userResponse, string, error) {
	user, token, err := a.svc.Register(ctx, in)
	if err != nil {
		return nil, "", err
	}
	return toUserResponse(user), token, nil
}

// Login はログインしhandlerレスポンス型で返す。
func (a *AuthServiceAdapter) Login(ctx context.Context, in auth.LoginInput) (*userResponse, string, error) {
	user, token, err := a.svc.Login(ctx, in)
	if err != nil {
		return nil, "", err
	}
	return toUserResponse(user), token, nil
}

// CurrentUser は検証済みユーザーをhandlerレスポンス型で返す。
func (a *AuthServiceAdapter) CurrentUser(ctx context.Context, userID string) (*userResponse, error) {
	user, err := a.svc.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// Logout はトークンを失効させる。
func (a *AuthServiceAdapter) Logout(ctx context.Context, identity *model.Identity) error {
	return a.svc.Logout(ctx, identity)
}

// NoteServiceAdapter は note.Service を NoteServiceInterface に適合させるアダプタ。
type NoteServiceAdapter struct {
	svc *note.Service
}

// NewNoteServiceAdapter はNoteServiceAdapterを生成する。
func NewNoteServiceAdapter(svc *note.Service) *NoteServiceAdapter {
	return &NoteServiceAdapter{svc: svc}
}

// CreateNote はメモを作成しhandlerレスポンス型で返す。
func (a *NoteServiceAdapter) CreateNote(ctx context.Context, identity *model.Identity, in note.CreateNoteInput) (*noteResponse, error) {
	n, err := a.svc.CreateNote(ctx, identity, in)
	if err != nil {
		return nil, err
	}
	resp := toNoteResponse(n)
	return &resp, nil
}

// ListNotes はメモ一覧をhandlerレスポンス型で返す。
func (a *NoteServiceAdapter) ListNotes(ctx context.Context, identity *model.Identity) ([]noteResponse, error) {
	notes, err := a.svc.ListNotes(ctx, identity)
	if err != nil {
		return nil, err
	}

	results := make([]noteResponse, len(notes))
	for i, n := range notes {
		results[i] = toNoteResponse(n)
	}
	return results, nil
}

// toUserResponse はmodel.UserをAPIレスポンスに変換する。PasswordHashは含めない。
func toUserResponse(u *model.User) *userResponse {
	return &userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: formatTime(u.CreatedAt),
	}
}

// toNoteResponse はmodel.NoteをAPIレスポンスに変換する。
// タグが無い場合もnullではなく空配列を返す。
func toNoteResponse(n *model.Note) noteResponse {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return noteResponse{
		ID:        n.ID,
		User:      n.UserID,
		Title:     n.Title,
		Content:   n.Content,
		Tags:      tags,
		CreatedAt: formatTime(n.CreatedAt),
		UpdatedAt: formatTime(n.UpdatedAt),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// --- compile-time interface checks ---

var _ AuthServiceInterface = (*AuthServiceAdapter)(nil)
var _ NoteServiceInterface = (*NoteServiceAdapter)(nil)
