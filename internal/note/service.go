// Package note はメモの作成と一覧取得を提供する。
// すべての操作は認証済みユーザーのIDを所有者として扱う。
package note

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/hitoshi/quicknotes/internal/model"
	"github.com/hitoshi/quicknotes/internal/repository"
)

// 入力上限
const (
	MaxTitleLength   = 200
	MaxContentLength = 100000
	MaxTags          = 20
	MaxTagLength     = 50
)

// Sanitizer はメモ本文のサニタイズインターフェース。
type Sanitizer interface {
	SanitizeTitle(raw string) string
	SanitizeContent(raw string) string
	SanitizeTags(raw []string) []string
}

// CreateNoteInput はメモ作成の入力。所有者は含まない。
type CreateNoteInput struct {
	Title   string
	Content string
	Tags    []string
}

// Service はメモに関するビジネスロジックを提供する。
type Service struct {
	repo      repository.NoteRepository
	sanitizer Sanitizer
	now       func() time.Time
}

// NewService はServiceを生成する。
func NewService(repo repository.NoteRepository, sanitizer Sanitizer) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		now:       time.Now,
	}
}

// CreateNote は呼び出し元を所有者としてメモを作成する。
func (s *Service) CreateNote(ctx context.Context, identity *model.Identity, in CreateNoteInput) (*model.Note, error) {
	if identity == nil || identity.UserID == "" {
		return nil, model.NewUnauthenticatedError()
	}

	// 文字数はサニタイズでエスケープされる前の入力で数える
	if err := validateLengths(in); err != nil {
		return nil, err
	}

	title := s.sanitizer.SanitizeTitle(in.Title)
	content := s.sanitizer.SanitizeContent(in.Content)
	tags := s.sanitizer.SanitizeTags(in.Tags)

	if err := validate(title, content, tags); err != nil {
		return nil, err
	}

	now := s.now()
	n := &model.Note{
		ID:        uuid.New().String(),
		UserID:    identity.UserID,
		Title:     title,
		Content:   content,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	slog.Info("note created",
		slog.String("user_id", n.UserID),
		slog.String("note_id", n.ID),
	)
	return n, nil
}

// ListNotes は呼び出し元が所有するメモを新しい順に返す。
// ストレージ障害時は詳細を含まないInternalErrorを返す。
func (s *Service) ListNotes(ctx context.Context, identity *model.Identity) ([]*model.Note, error) {
	if identity == nil || identity.UserID == "" {
		return nil, model.NewUnauthenticatedError()
	}

	notes, err := s.repo.ListByUserID(ctx, identity.UserID)
	if err != nil {
		slog.Error("failed to list notes",
			slog.String("user_id", identity.UserID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewInternalError()
	}
	if notes == nil {
		notes = []*model.Note{}
	}
	return notes, nil
}

// validateLengths は入力値の文字数上限を検証する。前後の空白は数えない。
func validateLengths(in CreateNoteInput) error {
	if utf8.RuneCountInString(strings.TrimSpace(in.Title)) > MaxTitleLength {
		return model.NewValidationError(fmt.Sprintf("title must be at most %d characters", MaxTitleLength))
	}
	if utf8.RuneCountInString(in.Content) > MaxContentLength {
		return model.NewValidationError(fmt.Sprintf("content must be at most %d characters", MaxContentLength))
	}
	for _, tag := range in.Tags {
		if utf8.RuneCountInString(strings.TrimSpace(tag)) > MaxTagLength {
			return model.NewValidationError(fmt.Sprintf("tag must be at most %d characters", MaxTagLength))
		}
	}
	return nil
}

// validate はサニタイズ後の値を検証する。タグ数は空タグと重複を除いた後で数える。
func validate(title, content string, tags []string) error {
	if title == "" && content == "" {
		return model.NewValidationError("title or content is required")
	}
	if len(tags) > MaxTags {
		return model.NewValidationError(fmt.Sprintf("at most %d tags are allowed", MaxTags))
	}
	return nil
}
