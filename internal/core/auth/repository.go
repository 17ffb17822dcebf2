package auth

import "context"

// Repository は利用者永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}
