package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes はbcryptが扱えるパスワードの最大バイト長。
const MaxPasswordBytes = 72

// ErrPasswordTooLong はパスワードがMaxPasswordBytesを超える場合に返される。
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// PasswordHasher はbcryptによるパスワードのハッシュ化と検証を行う。
// 平文パスワードは保持せず、比較は常にCompareHashAndPassword経由で行う。
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher はPasswordHasherを生成する。
// costがbcryptの許容範囲外の場合はbcrypt.DefaultCostを使用する。
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Cost は使用するbcryptコストを返す。
func (h *PasswordHasher) Cost() int {
	return h.cost
}

// Hash はパスワードのbcryptダイジェストを返す。
func (h *PasswordHasher) Hash(raw string) (string, error) {
	if len(raw) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(raw), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify はパスワードがダイジェストと一致するかを返す。
// 不一致はfalse, nilを返し、ダイジェストが壊れている場合などはエラーを返す。
func (h *PasswordHasher) Verify(digest, raw string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(raw))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("failed to verify password: %w", err)
}
