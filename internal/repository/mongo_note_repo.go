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

// noteDocument はnotesコレクションのドキュメント形式。
// 所有者フィールドは元のAPIと同じく"user"とする。
type noteDocument struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user"`
	Title     string    `bson:"title"`
	Content   string    `bson:"content"`
	Tags      []string  `bson:"tags"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoNoteRepo はMongoDBを使用したメモリポジトリ。
type MongoNoteRepo struct {
	coll *mongo.Collection
}

// NewMongoNoteRepo はMongoNoteRepoを生成する。
func NewMongoNoteRepo(db *mongo.Database) *MongoNoteRepo {
	return &MongoNoteRepo{coll: db.Collection(notesCollection)}
}

// Create はメモを作成する。
func (r *MongoNoteRepo) Create(ctx context.Context, note *model.Note) error {
	tags := note.Tags
	if tags == nil {
		tags = []string{}
	}

	_, err := r.coll.InsertOne(ctx, noteDocument{
		ID:        note.ID,
		UserID:    note.UserID,
		Title:     note.Title,
		Content:   note.Content,
		Tags:      tags,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	return nil
}

// ListByUserID は指定ユーザーが所有するメモをcreated_at降順で返す。
func (r *MongoNoteRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Note, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})

	cursor, err := r.coll.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	var docs []noteDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode notes: %w", err)
	}

	notes := make([]*model.Note, 0, len(docs))
	for _, d := range docs {
		notes = append(notes, &model.Note{
			ID:        d.ID,
			UserID:    d.UserID,
			Title:     d.Title,
			Content:   d.Content,
			Tags:      d.Tags,
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		})
	}
	return notes, nil
}

// compile-time interface check
var _ NoteRepository = (*MongoNoteRepo)(nil)
