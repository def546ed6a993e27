package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hitoshi/quicknotes/internal/model"
)

// MemoryStore はDATABASE_DRIVER=memory用のインメモリ実装。
// 開発・テスト用であり、プロセス終了でデータは失われる。
// UserRepository、NoteRepository、RevocationRepository、RevocationPurgerを全て満たす。
type MemoryStore struct {
	mu sync.RWMutex

	users        map[string]*model.User // id -> user
	emailIndex   map[string]string      // email -> id
	notesByOwner map[string][]*model.Note
	revoked      map[string]*model.RevokedToken
}

// NewMemoryStore は空のMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[string]*model.User),
		emailIndex:   make(map[string]string),
		notesByOwner: make(map[string][]*model.Note),
		revoked:      make(map[string]*model.RevokedToken),
	}
}

// PingContext は常に成功する。
func (s *MemoryStore) PingContext(ctx context.Context) error {
	return ctx.Err()
}

// Create はユーザーを作成する。メールアドレス重複時はErrDuplicateEmailを返す。
func (s *MemoryStore) Create(ctx context.Context, user *model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emailIndex[user.Email]; exists {
		return ErrDuplicateEmail
	}

	u := *user
	s.users[u.ID] = &u
	s.emailIndex[u.Email] = u.ID
	return nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (s *MemoryStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	id, ok := s.emailIndex[email]
	s.mu.RUnlock()

	if !ok {
		return nil, ctx.Err()
	}
	return s.FindByID(ctx, id)
}

// Notes はNoteRepositoryとしてのビューを返す。
// UserRepositoryと同名のCreateを持つため、メモ操作は別の型で公開する。
func (s *MemoryStore) Notes() *MemoryNoteStore {
	return &MemoryNoteStore{s: s}
}

// Revocations はRevocationRepositoryとしてのビューを返す。
func (s *MemoryStore) Revocations() *MemoryRevocationStore {
	return &MemoryRevocationStore{s: s}
}

// MemoryNoteStore はMemoryStore上のNoteRepository実装。
type MemoryNoteStore struct {
	s *MemoryStore
}

// Create はメモを作成する。
func (m *MemoryNoteStore) Create(ctx context.Context, note *model.Note) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n := *note
	n.Tags = append([]string(nil), note.Tags...)

	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.notesByOwner[n.UserID] = append(m.s.notesByOwner[n.UserID], &n)
	return nil
}

// ListByUserID は指定ユーザーが所有するメモをcreated_at降順で返す。
func (m *MemoryNoteStore) ListByUserID(ctx context.Context, userID string) ([]*model.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.s.mu.RLock()
	owned := m.s.notesByOwner[userID]
	notes := make([]*model.Note, 0, len(owned))
	for _, n := range owned {
		cp := *n
		cp.Tags = append([]string(nil), n.Tags...)
		notes = append(notes, &cp)
	}
	m.s.mu.RUnlock()

	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].CreatedAt.Equal(notes[j].CreatedAt) {
			return notes[i].ID > notes[j].ID
		}
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
	return notes, nil
}

// MemoryRevocationStore はMemoryStore上のRevocationRepository実装。
type MemoryRevocationStore struct {
	s *MemoryStore
}

// Revoke はトークンIDを失効済みとして記録する。冪等。
func (m *MemoryRevocationStore) Revoke(ctx context.Context, token *model.RevokedToken) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, exists := m.s.revoked[token.TokenID]; !exists {
		t := *token
		m.s.revoked[t.TokenID] = &t
	}
	return nil
}

// IsRevoked はトークンIDが失効済みかどうかを返す。
func (m *MemoryRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	_, ok := m.s.revoked[tokenID]
	return ok, nil
}

// DeleteExpired はexpires_atがbeforeより古いレコードを削除する。
func (m *MemoryRevocationStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	var n int64
	for id, t := range m.s.revoked {
		if t.ExpiresAt.Before(before) {
			delete(m.s.revoked, id)
			n++
		}
	}
	return n, nil
}

// compile-time interface check
var (
	_ UserRepository       = (*MemoryStore)(nil)
	_ NoteRepository       = (*MemoryNoteStore)(nil)
	_ RevocationRepository = (*MemoryRevocationStore)(nil)
	_ RevocationPurger     = (*MemoryRevocationStore)(nil)
	_ Pinger               = (*MemoryStore)(nil)
)
