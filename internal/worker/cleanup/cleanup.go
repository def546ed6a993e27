// Package cleanup は失効済みトークンの自動削除ジョブを提供する。
// 元の有効期限を過ぎた失効レコードは検証に不要なため、定期的に削除する。
// TTLで自動削除されるストア（Redis、MongoのTTLインデックス）でも冪等に動作する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/quicknotes/internal/repository"
)

// PurgeRecorder は削除件数の記録先。metrics.Collectorが実装する。
type PurgeRecorder interface {
	RecordRevocationsPurged(count int64)
}

// CleanupJob は有効期限切れの失効レコードを削除するジョブ。
type CleanupJob struct {
	purger   repository.RevocationPurger
	logger   *slog.Logger
	recorder PurgeRecorder
	now      func() time.Time

	// Grace は有効期限からこの時間が経過したレコードのみ削除する（デフォルト: 1分）。
	// 時計のずれで期限直前のトークンが再び有効にならないようにする。
	Grace time.Duration
}

// NewCleanupJob は新しいCleanupJobを生成する。recorderはnilでもよい。
func NewCleanupJob(purger repository.RevocationPurger, logger *slog.Logger, recorder PurgeRecorder) *CleanupJob {
	return &CleanupJob{
		purger:   purger,
		logger:   logger,
		recorder: recorder,
		now:      time.Now,
		Grace:    time.Minute,
	}
}

// Run は有効期限切れの失効レコードを削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := j.now()
	before := start.Add(-j.Grace)

	deleted, err := j.purger.DeleteExpired(ctx, before)
	if err != nil {
		j.logger.Error("revocation cleanup failed",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to purge expired revocations: %w", err)
	}

	if j.recorder != nil {
		j.recorder.RecordRevocationsPurged(deleted)
	}

	j.logger.Info("revocation cleanup completed",
		slog.Int64("deleted_count", deleted),
		slog.Time("before", before),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return nil
}

// Start は起動直後に1回実行し、以降intervalごとにRunを実行する。
// ctxがキャンセルされるまでブロックする。失敗しても次回の実行は継続する。
func (j *CleanupJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	j.Run(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Run(ctx)
		}
	}
}
