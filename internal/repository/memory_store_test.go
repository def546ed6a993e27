package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/quicknotes/internal/model"
)

func TestMemoryStore_CreateAndFindUser(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	now := time.Now()
	err := s.Create(ctx, &model.User{ID: "u1", Email: "a@x.com", PasswordHash: "hash", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	byEmail, err := s.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, "u1", byEmail.ID)

	byID, err := s.FindByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "a@x.com", byID.Email)
}

func TestMemoryStore_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Create(ctx, &model.User{ID: "u1", Email: "a@x.com"}))
	err := s.Create(ctx, &model.User{ID: "u2", Email: "a@x.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestMemoryStore_FindMissingUser_ReturnsNil(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	u, err := s.FindByEmail(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = s.FindByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestMemoryStore_ReturnedUserIsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Create(ctx, &model.User{ID: "u1", Email: "a@x.com"}))

	u, err := s.FindByID(ctx, "u1")
	require.NoError(t, err)
	u.Email = "changed@x.com"

	again, err := s.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", again.Email)
}

func TestMemoryNoteStore_ListScopedToOwner(t *testing.T) {
	ctx := context.Background()
	notes := NewMemoryStore().Notes()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, notes.Create(ctx, &model.Note{ID: "n1", UserID: "u1", Title: "first", CreatedAt: base}))
	require.NoError(t, notes.Create(ctx, &model.Note{ID: "n2", UserID: "u2", Title: "other", CreatedAt: base}))
	require.NoError(t, notes.Create(ctx, &model.Note{ID: "n3", UserID: "u1", Title: "second", CreatedAt: base.Add(time.Minute)}))

	got, err := notes.ListByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "n3", got[0].ID, "newest first")
	assert.Equal(t, "n1", got[1].ID)
	for _, n := range got {
		assert.Equal(t, "u1", n.UserID)
	}
}

func TestMemoryNoteStore_ListEmpty_ReturnsEmptySlice(t *testing.T) {
	got, err := NewMemoryStore().Notes().ListByUserID(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMemoryNoteStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryStore().Notes().ListByUserID(ctx, "u1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryRevocationStore_RevokeAndPurge(t *testing.T) {
	ctx := context.Background()
	rev := NewMemoryStore().Revocations()
	now := time.Now()

	require.NoError(t, rev.Revoke(ctx, &model.RevokedToken{TokenID: "old", ExpiresAt: now.Add(-time.Hour), RevokedAt: now}))
	require.NoError(t, rev.Revoke(ctx, &model.RevokedToken{TokenID: "live", ExpiresAt: now.Add(time.Hour), RevokedAt: now}))
	// 冪等
	require.NoError(t, rev.Revoke(ctx, &model.RevokedToken{TokenID: "live", ExpiresAt: now.Add(time.Hour), RevokedAt: now}))

	revoked, err := rev.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	n, err := rev.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	revoked, err = rev.IsRevoked(ctx, "old")
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = rev.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)
}
