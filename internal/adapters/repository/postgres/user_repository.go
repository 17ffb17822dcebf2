package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/eams-grpc-clean-arch/internal/core/auth"
	"github.com/ogurasousui/eams-grpc-clean-arch/internal/core/identity"
	pg "github.com/ogurasousui/eams-grpc-clean-arch/internal/platform/db/postgres"
)

const uniqueViolationCode = "23505"

// UserRepository は PostgreSQL を利用した利用者永続化の実装です。
type UserRepository struct {
	pool pg.Queryer
}

// NewUserRepository は UserRepository を生成します。
func NewUserRepository(pool pg.Queryer) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create は利用者を新規作成します。メールアドレスの一意制約違反は
// auth.ErrDuplicateEmail に変換されます。
func (r *UserRepository) Create(ctx context.Context, u *auth.User) (*auth.User, error) {
	q := pg.QueryerFromContext(ctx, r.pool)
	row := q.QueryRow(ctx, `
        INSERT INTO users (id, name, email, role)
        VALUES ($1, $2, $3, $4)
        RETURNING id, name, email, role
    `, u.ID, u.Name, u.Email, string(u.Role))

	created, err := scanUser(row)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return created, nil
}

// FindByEmail はメールアドレスで利用者を取得します。比較は大文字小文字を
// 区別する完全一致です。
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	q := pg.QueryerFromContext(ctx, r.pool)
	row := q.QueryRow(ctx, `
        SELECT id, name, email, role
          FROM users
         WHERE email = $1
         LIMIT 1
    `, email)

	found, err := scanUser(row)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return found, nil
}

func scanUser(row pgx.Row) (*auth.User, error) {
	var (
		id    string
		name  string
		email string
		role  string
	)

	if err := row.Scan(&id, &name, &email, &role); err != nil {
		return nil, err
	}

	return &auth.User{
		ID:    id,
		Name:  name,
		Email: email,
		Role:  identity.Role(role),
	}, nil
}

func translateUserPgError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.ErrEmailNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return auth.ErrDuplicateEmail
	}
	return err
}
