package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoClient はMongoDBクライアントと使用するデータベースの組。
type MongoClient struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// OpenMongo はMongoDBへ接続し、指定データベースのハンドルを返す。
// mongo.Connectは接続を遅延確立するため、疎通確認にはPingContextを使用すること。
func OpenMongo(ctx context.Context, uri, dbName string) (*MongoClient, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect mongodb: %w", err)
	}

	return &MongoClient{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

// PingContext はMongoDBへの疎通を確認する。
func (m *MongoClient) PingContext(ctx context.Context) error {
	return m.Client.Ping(ctx, nil)
}

// Close は接続を切断する。
func (m *MongoClient) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// MongoIndexes はコレクションごとに作成するインデックス定義を返す。
//   - users.email: ユニーク（メールアドレス重複の拒否）
//   - notes.user + created_at: 所有者ごとの一覧取得
//   - revoked_tokens.expires_at: TTL（期限切れの失効レコードを自動削除）
func MongoIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		"users": {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("users_email_key").SetUnique(true),
			},
		},
		"notes": {
			{
				Keys:    bson.D{{Key: "user", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_notes_user_created_at"),
			},
		},
		"revoked_tokens": {
			{
				Keys:    bson.D{{Key: "expires_at", Value: 1}},
				Options: options.Index().SetName("idx_revoked_tokens_expires_at").SetExpireAfterSeconds(0),
			},
		},
	}
}

// EnsureMongoIndexes はMongoIndexesの定義をすべて作成する。
// 同名・同定義のインデックスが既に存在する場合は何もしないため冪等。
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	for coll, models := range MongoIndexes() {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
