package database

import (
	"context"
	"log/slog"
	"time"
)

const (
	// initialRetryDelay は再試行の初回待機時間。
	initialRetryDelay = 500 * time.Millisecond
	// maxRetryDelay は再試行間隔の上限。
	maxRetryDelay = 10 * time.Second
)

// RetryDelay は失敗回数に基づく指数バックオフの待機時間を返す。
// 初回500ms、2倍ずつ増加、最大10秒。
func RetryDelay(failures int) time.Duration {
	delay := initialRetryDelay
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay > maxRetryDelay {
			return maxRetryDelay
		}
	}
	return delay
}

// PingWithRetry はpingが成功するまで最大retries回再試行する。
// コンテナ起動直後などDBの準備が整う前に接続する場合に使用する。
// retriesが0の場合は1回だけ試行する。
func PingWithRetry(ctx context.Context, ping func(context.Context) error, retries int) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = ping(ctx); err == nil {
			return nil
		}
		if attempt >= retries {
			return err
		}

		delay := RetryDelay(attempt)
		slog.Warn("database not ready, retrying",
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
