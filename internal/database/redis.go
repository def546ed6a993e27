package database

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

// OpenRedis はRedisの接続URL（例: "redis://localhost:6379/0"）からクライアントを生成する。
// 接続は最初のコマンド実行時に確立される。
func OpenRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}
