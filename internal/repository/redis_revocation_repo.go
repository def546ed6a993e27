package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hitoshi/quicknotes/internal/model"
)

// revokedKeyPrefix は失効トークンを保存するRedisキーの接頭辞。
const revokedKeyPrefix = "quicknotes:revoked:"

// RedisRevocationRepo はRedisを使用した失効トークンリポジトリ。
// キーのTTLをトークンの残り有効期間に合わせるため、クリーンアップは不要。
type RedisRevocationRepo struct {
	client redis.Cmdable
	now    func() time.Time
}

// NewRedisRevocationRepo はRedisRevocationRepoを生成する。
func NewRedisRevocationRepo(client redis.Cmdable) *RedisRevocationRepo {
	return &RedisRevocationRepo{client: client, now: time.Now}
}

// Revoke はトークンIDを失効済みとして記録する。
// 既に有効期限を過ぎたトークンは記録しない。
func (r *RedisRevocationRepo) Revoke(ctx context.Context, token *model.RevokedToken) error {
	ttl := token.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}

	if err := r.client.SetNX(ctx, revokedKeyPrefix+token.TokenID, token.UserID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked はトークンIDが失効済みかどうかを返す。
func (r *RedisRevocationRepo) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}
	return n > 0, nil
}

// compile-time interface check
var _ RevocationRepository = (*RedisRevocationRepo)(nil)
