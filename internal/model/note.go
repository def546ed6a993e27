package model

import "time"

// Note はユーザーが作成するメモを表す。
// UserIDは作成時に認証済みユーザーのIDで必ず上書きされる。
type Note struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}
