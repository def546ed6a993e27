// Package model はドメインモデルを定義する。
package model

import "fmt"

// ErrorKind はAPIエラーの分類を表す。
// 分類ごとにHTTPステータスコードが決まる。
type ErrorKind string

const (
	// KindValidation は入力不正・重複を表す（400）。
	KindValidation ErrorKind = "validation"
	// KindAuthentication は認証情報の不一致やトークン不正を表す（401）。
	KindAuthentication ErrorKind = "authentication"
	// KindInternal は想定外のストレージ障害などを表す（500）。
	KindInternal ErrorKind = "internal"
)

// APIError は統一エラーフォーマットを表す。
type APIError struct {
	Kind    ErrorKind
	Code    string // エラーコード
	Message string // クライアントに返すメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidInput    = "INVALID_INPUT"
	ErrCodeDuplicateEmail  = "DUPLICATE_EMAIL"
	ErrCodeUserNotFound    = "USER_NOT_FOUND"
	ErrCodeInvalidPassword = "INVALID_CREDENTIALS"
	ErrCodeUnauthenticated = "UNAUTHENTICATED"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeRateLimited     = "RATE_LIMITED"
)

// 認証エラーのメッセージ。クライアントはこの文字列をそのまま表示する。
const (
	MsgUserNotFound       = "User not found"
	MsgInvalidCredentials = "Invalid credentials"
	MsgPleaseAuthenticate = "Please authenticate"
)

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}

// NewDuplicateEmailError はメールアドレス重複エラーを生成する。
func NewDuplicateEmailError() *APIError {
	return &APIError{
		Kind:    KindValidation,
		Code:    ErrCodeDuplicateEmail,
		Message: "email is already registered",
	}
}

// NewAuthenticationError は認証エラーを生成する。
func NewAuthenticationError(code, message string) *APIError {
	return &APIError{
		Kind:    KindAuthentication,
		Code:    code,
		Message: message,
	}
}

// NewUserNotFoundError はログイン時にユーザーが存在しない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return NewAuthenticationError(ErrCodeUserNotFound, MsgUserNotFound)
}

// NewInvalidCredentialsError はパスワード不一致エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return NewAuthenticationError(ErrCodeInvalidPassword, MsgInvalidCredentials)
}

// NewUnauthenticatedError はトークンが無い・不正な場合のエラーを生成する。
func NewUnauthenticatedError() *APIError {
	return NewAuthenticationError(ErrCodeUnauthenticated, MsgPleaseAuthenticate)
}

// NewInternalError は内部エラーを生成する。詳細はクライアントに返さない。
func NewInternalError() *APIError {
	return &APIError{
		Kind:    KindInternal,
		Code:    ErrCodeInternal,
		Message: "internal server error",
	}
}
