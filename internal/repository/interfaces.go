// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/quicknotes/internal/model"
)

// ErrDuplicateEmail は同じメールアドレスのユーザーが既に存在する場合に返される。
// 各実装はストレージ固有の一意制約違反をこのエラーに変換する。
var ErrDuplicateEmail = errors.New("email already exists")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。メールアドレス重複時はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// NoteRepository はメモデータの永続化インターフェース。
type NoteRepository interface {
	// Create はメモを作成する。
	Create(ctx context.Context, note *model.Note) error

	// ListByUserID は指定ユーザーが所有するメモをcreated_at降順で返す。
	// 該当なしの場合は空スライスを返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Note, error)
}

// RevocationRepository は失効済みトークンの永続化インターフェース。
type RevocationRepository interface {
	// Revoke はトークンIDを失効済みとして記録する。冪等。
	Revoke(ctx context.Context, token *model.RevokedToken) error

	// IsRevoked はトークンIDが失効済みかどうかを返す。
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RevocationPurger は有効期限を過ぎた失効レコードの削除インターフェース。
// TTLを持たないストレージ実装のみが提供する。
type RevocationPurger interface {
	// DeleteExpired はexpires_atがbeforeより古いレコードを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// Pinger はストレージの疎通確認インターフェース。ヘルスチェックで使用する。
type Pinger interface {
	PingContext(ctx context.Context) error
}
