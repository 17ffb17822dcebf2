package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/ogurasousui/eams-grpc-clean-arch/internal/core/identity"
)

var (
	ErrTokenInvalid = errors.New("token: invalid token")
	ErrTokenExpired = errors.New("token: expired token")
)

// DefaultSessionTTL はエッジが発行するセッショントークンの既定の有効期間です。
const DefaultSessionTTL = 7 * 24 * time.Hour

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Codec は署名付きアイデンティティトークンの発行と検証を行います。
// 発行側と検証側で同一の秘密鍵を共有する必要があります。
type Codec struct {
	secret []byte
	ttl    time.Duration
	clock  Clock
}

// NewCodec は Codec を生成します。ttl が 0 以下の場合は DefaultSessionTTL を使います。
func NewCodec(secret string, ttl time.Duration, clock Clock) *Codec {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if clock == nil {
		clock = realClock{}
	}
	return &Codec{secret: []byte(secret), ttl: ttl, clock: clock}
}

// TTL は設定された有効期間を返します。
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

type sessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Issue は subject, email, role を埋め込んだ署名付きトークンを発行します。
func (c *Codec) Issue(subject, email string, role identity.Role) (string, error) {
	now := c.clock.Now()
	claims := &sessionClaims{
		Email: email,
		Role:  string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", ErrTokenInvalid
	}
	return signed, nil
}

// Verify は署名と有効期限を検証し、埋め込まれた Identity を復元します。
// ストアへの再参照は行わないため、発行後にユーザーの役割が変わっても
// 有効期限が切れるまでトークンは発行時の内容のまま有効です。
func (c *Codec) Verify(raw string) (identity.Identity, error) {
	if raw == "" {
		return identity.Identity{}, ErrTokenInvalid
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return identity.Identity{}, ErrTokenExpired
		}
		return identity.Identity{}, ErrTokenInvalid
	}
	if !parsed.Valid {
		return identity.Identity{}, ErrTokenInvalid
	}

	role, err := identity.ParseRole(claims.Role)
	if err != nil {
		return identity.Identity{}, ErrTokenInvalid
	}

	ident := identity.Identity{
		Subject: claims.Subject,
		Email:   claims.Email,
		Role:    role,
	}
	if claims.IssuedAt != nil {
		ident.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		ident.ExpiresAt = claims.ExpiresAt.Time
	}
	return ident, nil
}
