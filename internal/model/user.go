// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptダイジェストのみを保持し、平文パスワードは保持しない。
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity はベアラートークンの検証で確定した呼び出し元の識別情報を表す。
// トークン自体はサーバー側に保存しない。
type Identity struct {
	UserID    string
	TokenID   string // JWTのjti。ログアウト時の失効に使用する
	ExpiresAt time.Time
}

// RevokedToken はログアウトにより失効したトークンを表す。
// 元の有効期限を過ぎたレコードはクリーンアップジョブで削除される。
type RevokedToken struct {
	TokenID   string
	UserID    string
	ExpiresAt time.Time
	RevokedAt time.Time
}
