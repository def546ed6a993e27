// Package auth はメールアドレスとパスワードによる登録・ログインと、
// ベアラートークンの検証・失効を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/quicknotes/internal/model"
	"github.com/hitoshi/quicknotes/internal/repository"
	"github.com/hitoshi/quicknotes/internal/security"
)

// maxNameLength は表示名の最大文字数。
const maxNameLength = 100

// PasswordHasher はパスワードのハッシュ化と照合のインターフェース。
type PasswordHasher interface {
	Hash(raw string) (string, error)
	Verify(digest, raw string) (bool, error)
}

// TokenIssuer はベアラートークンの発行と署名検証のインターフェース。
type TokenIssuer interface {
	Issue(userID string) (string, *model.Identity, error)
	Verify(token string) (*model.Identity, error)
}

// RegisterInput はユーザー登録の入力。
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// LoginInput はログインの入力。
type LoginInput struct {
	Email    string
	Password string
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo       repository.UserRepository
	revocationRepo repository.RevocationRepository
	hasher         PasswordHasher
	tokens         TokenIssuer
	now            func() time.Time
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	revocationRepo repository.RevocationRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
) *Service {
	return &Service{
		userRepo:       userRepo,
		revocationRepo: revocationRepo,
		hasher:         hasher,
		tokens:         tokens,
		now:            time.Now,
	}
}

// normalizeEmail は前後の空白を除去し小文字化する。
// 登録・ログインの双方で同じ正規化を行う。
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register は新しいユーザーを作成し、トークンを発行する。
// 入力不正・メールアドレス重複はValidationErrorを返す。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	email := normalizeEmail(in.Email)
	if err := validateEmail(email); err != nil {
		return nil, "", err
	}
	if in.Password == "" {
		return nil, "", model.NewValidationError("password is required")
	}
	if len(in.Password) > security.MaxPasswordBytes {
		return nil, "", model.NewValidationError("password must be at most 72 bytes")
	}
	name := strings.TrimSpace(in.Name)
	if len([]rune(name)) > maxNameLength {
		return nil, "", model.NewValidationError("name must be at most 100 characters")
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find user by email: %w", err)
	}
	if existing != nil {
		return nil, "", model.NewDuplicateEmailError()
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooLong) {
			return nil, "", model.NewValidationError("password must be at most 72 bytes")
		}
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: digest,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// 事前チェックと作成の間に同じメールアドレスで登録された場合は一意制約で検出する
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, "", model.NewDuplicateEmailError()
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("user registered", slog.String("user_id", user.ID))
	return user, token, nil
}

// Login はメールアドレスとパスワードを照合し、トークンを発行する。
func (s *Service) Login(ctx context.Context, in LoginInput) (*model.User, string, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, "", model.NewUserNotFoundError()
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find user by email: %w", err)
	}
	if user == nil {
		return nil, "", model.NewUserNotFoundError()
	}

	if len(in.Password) > security.MaxPasswordBytes {
		return nil, "", model.NewInvalidCredentialsError()
	}
	ok, err := s.hasher.Verify(user.PasswordHash, in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		slog.Warn("login failed", slog.String("user_id", user.ID))
		return nil, "", model.NewInvalidCredentialsError()
	}

	token, _, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))
	return user, token, nil
}

// VerifyToken はトークンを検証し、呼び出し元の識別情報を返す。
// 署名不正・期限切れ・失効済みはいずれも同じAuthenticationErrorになる。
func (s *Service) VerifyToken(ctx context.Context, token string) (*model.Identity, error) {
	identity, err := s.tokens.Verify(token)
	if err != nil {
		slog.Debug("token rejected", slog.String("error", err.Error()))
		return nil, model.NewUnauthenticatedError()
	}

	revoked, err := s.revocationRepo.IsRevoked(ctx, identity.TokenID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, model.NewUnauthenticatedError()
	}

	return identity, nil
}

// CurrentUser は検証済みトークンのユーザーを取得する。
func (s *Service) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, model.NewUnauthenticatedError()
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUnauthenticatedError()
	}
	return user, nil
}

// Logout はトークンを元の有効期限まで失効させる。
func (s *Service) Logout(ctx context.Context, identity *model.Identity) error {
	if identity == nil || identity.TokenID == "" {
		return model.NewUnauthenticatedError()
	}

	revoked := &model.RevokedToken{
		TokenID:   identity.TokenID,
		UserID:    identity.UserID,
		ExpiresAt: identity.ExpiresAt,
		RevokedAt: s.now(),
	}
	if err := s.revocationRepo.Revoke(ctx, revoked); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	slog.Info("user logged out",
		slog.String("user_id", identity.UserID),
		slog.String("token_id", identity.TokenID),
	)
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return model.NewValidationError("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return model.NewValidationError("email is invalid")
	}
	return nil
}
