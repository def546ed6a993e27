package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hitoshi/quicknotes/internal/model"
)

// revokedTokenDocument はrevoked_tokensコレクションのドキュメント形式。
// expires_atにはTTLインデックスを張るため、期限切れレコードはMongoDBが自動で削除する。
type revokedTokenDocument struct {
	TokenID   string    `bson:"_id"`
	UserID    string    `bson:"user"`
	ExpiresAt time.Time `bson:"expires_at"`
	RevokedAt time.Time `bson:"revoked_at"`
}

// MongoRevocationRepo はMongoDBを使用した失効トークンリポジトリ。
type MongoRevocationRepo struct {
	coll *mongo.Collection
}

// NewMongoRevocationRepo はMongoRevocationRepoを生成する。
func NewMongoRevocationRepo(db *mongo.Database) *MongoRevocationRepo {
	return &MongoRevocationRepo{coll: db.Collection(revokedTokensCollection)}
}

// Revoke はトークンIDを失効済みとして記録する。$setOnInsertのupsertで冪等にする。
func (r *MongoRevocationRepo) Revoke(ctx context.Context, token *model.RevokedToken) error {
	doc := revokedTokenDocument{
		TokenID:   token.TokenID,
		UserID:    token.UserID,
		ExpiresAt: token.ExpiresAt,
		RevokedAt: token.RevokedAt,
	}
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": token.TokenID},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked はトークンIDが失効済みかどうかを返す。
func (r *MongoRevocationRepo) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": tokenID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}
	return n > 0, nil
}

// compile-time interface check
var _ RevocationRepository = (*MongoRevocationRepo)(nil)
