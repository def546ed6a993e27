// Package config は環境変数からアプリケーション設定を読み込む。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseDriver は使用するストレージの種類を表す。
type DatabaseDriver string

const (
	// DriverPostgres はPostgreSQLを使用する（デフォルト）。
	DriverPostgres DatabaseDriver = "postgres"
	// DriverMongo はMongoDBを使用する。
	DriverMongo DatabaseDriver = "mongo"
	// DriverMemory はプロセス内メモリを使用する。開発用。
	DriverMemory DatabaseDriver = "memory"
)

// minSecretLength はJWT署名鍵の最小バイト長。
const minSecretLength = 16

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseDriver DatabaseDriver
	DatabaseURL    string
	MongoDatabase  string
	RedisURL       string
	// ConnectRetries は起動時のDB疎通確認の再試行回数
	ConnectRetries int

	// Token
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	// Rate Limit（req/min）
	RateLimitGeneral int
	RateLimitAuth    int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string

	// Worker
	CleanupInterval time.Duration
	// MetricsPort はワーカーが/metricsを公開するポート。空の場合は公開しない
	MetricsPort string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定または不正な場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseDriver = DatabaseDriver(strings.ToLower(getEnvString("DATABASE_DRIVER", string(DriverPostgres))))
	switch cfg.DatabaseDriver {
	case DriverPostgres, DriverMongo, DriverMemory:
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER: %q", cfg.DatabaseDriver)
	}

	// MONGO_URIは旧環境変数名として受け付ける
	cfg.DatabaseURL = getEnvString("DATABASE_URL", os.Getenv("MONGO_URI"))
	if cfg.DatabaseURL == "" && cfg.DatabaseDriver != DriverMemory {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	if len(cfg.JWTSecret) < minSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLength)
	}

	// Optional fields with defaults
	cfg.MongoDatabase = getEnvString("MONGO_DATABASE", "quicknotes")
	cfg.RedisURL = getEnvString("REDIS_URL", "")
	cfg.ConnectRetries = getEnvInt("DB_CONNECT_RETRIES", 3)
	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", 168*time.Hour)
	cfg.BcryptCost = getEnvInt("BCRYPT_COST", 10)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitAuth = getEnvInt("RATE_LIMIT_AUTH", 10)
	cfg.ServerPort = getEnvString("PORT", "5000")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "*")
	cfg.CleanupInterval = getEnvDuration("CLEANUP_INTERVAL", time.Hour)
	cfg.MetricsPort = getEnvString("METRICS_PORT", "")

	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
