package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/ogurasousui/eams-grpc-clean-arch/internal/core/identity"
)

// TokenIssuer はログイン成功時にアクセストークンを発行します。
type TokenIssuer interface {
	Issue(subject, email string, role identity.Role) (string, error)
}

// IDGenerator は新規利用者の ID を生成します。
type IDGenerator interface {
	NewID() string
}

type uuidGenerator struct{}

func (uuidGenerator) NewID() string {
	return uuid.NewString()
}

// Service は登録とログインのユースケースをまとめます。
type Service struct {
	repo   Repository
	tokens TokenIssuer
	ids    IDGenerator
}

// UseCase は認証ユースケースの公開インターフェースです。
type UseCase interface {
	Register(ctx context.Context, in RegisterInput) (*User, error)
	Login(ctx context.Context, in LoginInput) (string, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, tokens TokenIssuer, ids IDGenerator) *Service {
	if ids == nil {
		ids = uuidGenerator{}
	}
	return &Service{repo: repo, tokens: tokens, ids: ids}
}

// RegisterInput は利用者登録時の入力です。
type RegisterInput struct {
	Name  string
	Email string
	Role  string
}

// LoginInput はログイン時の入力です。
type LoginInput struct {
	Email string
}

// Register は新しい利用者を登録します。
// メールアドレスは大文字小文字を区別した完全一致で重複判定します。
// パスワード等の第二認証要素は扱いません。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidName
	}

	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	role, err := identity.ParseRole(in.Role)
	if err != nil {
		return nil, ErrInvalidRole
	}

	if existing, err := s.repo.FindByEmail(ctx, email); err != nil && !errors.Is(err, ErrEmailNotFound) {
		return nil, err
	} else if existing != nil {
		return nil, ErrDuplicateEmail
	}

	created, err := s.repo.Create(ctx, &User{
		ID:    s.ids.NewID(),
		Name:  name,
		Email: email,
		Role:  role,
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Login はメールアドレスで利用者を特定し、アクセストークンを発行します。
// 鮮度や失効の検査は存在せず、既知のメールアドレスであれば常に成功します。
func (s *Service) Login(ctx context.Context, in LoginInput) (string, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return "", err
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	signed, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// normalizeEmail は前後の空白のみを取り除きます。大文字小文字の正規化は
// 行わず、登録時の表記がそのまま一意キーになります。
func normalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmail
	}

	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", ErrInvalidEmail
	}

	return trimmed, nil
}
