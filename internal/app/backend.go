package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/quicknotes/internal/config"
	"github.com/hitoshi/quicknotes/internal/database"
	"github.com/hitoshi/quicknotes/internal/repository"
)

// backend は選択されたストレージドライバで構築したリポジトリ群。
type backend struct {
	users       repository.UserRepository
	notes       repository.NoteRepository
	revocations repository.RevocationRepository
	// purger はワーカーが期限切れ失効レコードを削除する対象。
	// TTLで自動失効するストア（MongoDB、Redis）ではnil。
	purger repository.RevocationPurger
	pinger repository.Pinger
	closers []func() error
}

// Close は開いた接続をすべて閉じる。
func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			slog.Warn("failed to close backend connection", slog.String("error", err.Error()))
		}
	}
}

// openBackend はcfg.DatabaseDriverに応じてリポジトリを初期化し、疎通を確認する。
// REDIS_URLが設定されている場合、トークン失効リストはRedisに保存する。
func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	b := &backend{}

	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		b.closers = append(b.closers, db.Close)
		if err := database.PingWithRetry(ctx, db.PingContext, cfg.ConnectRetries); err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		revocations := repository.NewPostgresRevocationRepo(db)
		b.users = repository.NewPostgresUserRepo(db)
		b.notes = repository.NewPostgresNoteRepo(db)
		b.revocations = revocations
		b.purger = revocations
		b.pinger = db

	case config.DriverMongo:
		mc, err := database.OpenMongo(ctx, cfg.DatabaseURL, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() error { return mc.Close(context.Background()) })
		if err := database.PingWithRetry(ctx, mc.PingContext, cfg.ConnectRetries); err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		if err := database.EnsureMongoIndexes(ctx, mc.Database); err != nil {
			b.Close()
			return nil, err
		}
		b.users = repository.NewMongoUserRepo(mc.Database)
		b.notes = repository.NewMongoNoteRepo(mc.Database)
		b.revocations = repository.NewMongoRevocationRepo(mc.Database)
		b.pinger = mc

	case config.DriverMemory:
		store := repository.NewMemoryStore()
		b.users = store
		b.notes = store.Notes()
		b.revocations = store.Revocations()
		b.purger = store.Revocations()
		b.pinger = store

	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.DatabaseDriver)
	}

	slog.Info("database connection established", slog.String("driver", string(cfg.DatabaseDriver)))

	if cfg.RedisURL != "" {
		client, err := database.OpenRedis(cfg.RedisURL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		b.revocations = repository.NewRedisRevocationRepo(client)
		b.purger = nil
		slog.Info("token revocations stored in redis")
	}

	return b, nil
}
