package repository

import (
	"context"
	"testing"
	"time"

	"github.com/hitoshi/quicknotes/internal/model"
)

func TestRedisRevocationRepo_ImplementsInterface(t *testing.T) {
	var _ RevocationRepository = (*RedisRevocationRepo)(nil)
}

// 有効期限切れのトークンはRedisにアクセスせずに無視されること
func TestRedisRevocationRepo_Revoke_ExpiredTokenIsSkipped(t *testing.T) {
	repo := NewRedisRevocationRepo(nil)
	repo.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	err := repo.Revoke(context.Background(), &model.RevokedToken{
		TokenID:   "jti-1",
		ExpiresAt: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
