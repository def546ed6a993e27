package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hitoshi/quicknotes/internal/model"
)

// tokenIssuer はJWTのissクレームに設定する値。
const tokenIssuer = "quicknotes"

// ErrInvalidToken はトークンの形式・署名・有効期限のいずれかが不正な場合に返される。
var ErrInvalidToken = errors.New("invalid token")

// TokenIssuer はHS256で署名したベアラートークンの発行と検証を行う。
// 署名鍵は起動時に1回だけ設定され、以後は読み取り専用。
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer はTokenIssuerを生成する。
func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL はトークンの有効期間を返す。
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue はユーザーIDをsubに持つトークンを発行する。
// jtiにはランダムなUUIDを設定し、ログアウト時の失効に使用する。
func (i *TokenIssuer) Issue(userID string) (string, *model.Identity, error) {
	now := i.now()
	identity := &model.Identity{
		UserID:    userID,
		TokenID:   uuid.New().String(),
		ExpiresAt: now.Add(i.ttl).Truncate(time.Second),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   identity.UserID,
		ID:        identity.TokenID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(identity.ExpiresAt),
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, identity, nil
}

// Verify はトークンの署名・アルゴリズム・発行者・有効期限を検証し、識別情報を返す。
// 失効済みかどうかは検証しない（呼び出し側で失効ストアを参照する）。
func (i *TokenIssuer) Verify(tokenString string) (*model.Identity, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	return &model.Identity{
		UserID:    claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
