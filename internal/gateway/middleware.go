package gateway

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/ogurasousui/eams-grpc-clean-arch/internal/core/identity"
	"github.com/ogurasousui/eams-grpc-clean-arch/internal/platform/token"
	"go.uber.org/zap"
)

// TokenVerifier は受信トークンを検証し Identity を復元します。
type TokenVerifier interface {
	Verify(raw string) (identity.Identity, error)
}

// GuardChain はすべてのエッジリクエストに適用される二段の検査です。
// 認証検査が先、役割検査が後で、順序が入れ替わることはありません。
type GuardChain struct {
	verifier TokenVerifier
	log      *zap.Logger
}

// NewGuardChain は GuardChain を生成します。
func NewGuardChain(verifier TokenVerifier, log *zap.Logger) *GuardChain {
	if log == nil {
		log = zap.NewNop()
	}
	return &GuardChain{verifier: verifier, log: log}
}

// Authenticate は認証検査のミドルウェアです。認証操作のパス
// （/auth/register, /auth/login）だけが唯一の非認証エントリポイントです。
// 検証に成功した Identity はリクエストコンテキストへ載せられ、
// 以降の処理はそこから明示的に取り出します。
func (g *GuardChain) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/auth") {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			g.deny(w, r, NewFault(http.StatusUnauthorized, KindMissingCredential, "Missing Authorization header"))
			return
		}

		scheme, raw, found := strings.Cut(header, " ")
		if !found || scheme != "Bearer" || raw == "" {
			g.deny(w, r, NewFault(http.StatusUnauthorized, KindMalformedCredential, "Invalid token format"))
			return
		}

		ident, err := g.verifier.Verify(raw)
		if err != nil {
			kind := KindInvalidCredential
			if errors.Is(err, token.ErrTokenExpired) {
				kind = KindExpiredToken
			}
			g.deny(w, r, NewFault(http.StatusUnauthorized, kind, "Invalid or expired token"))
			return
		}

		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), ident)))
	})
}

// RequireRoles は役割検査のミドルウェアを返します。操作ごとに宣言された
// 許可役割の集合に対して単一の述語で判定します。集合が空の場合は
// 認証済みであれば誰でも通過します。
func (g *GuardChain) RequireRoles(roles ...identity.Role) func(http.Handler) http.Handler {
	required := identity.NewRoleSet(roles...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := IdentityFromContext(r.Context())
			if !ok {
				g.deny(w, r, NewFault(http.StatusUnauthorized, KindMissingCredential, "Missing Authorization header"))
				return
			}
			if !required.Permits(ident.Role) {
				g.log.Warn("role not permitted",
					zap.String("path", r.URL.Path),
					zap.String("userId", ident.Subject),
					zap.String("role", string(ident.Role)))
				g.deny(w, r, NewFault(http.StatusForbidden, KindRoleNotPermitted, "Forbidden resource"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (g *GuardChain) deny(w http.ResponseWriter, r *http.Request, fault Fault) {
	g.log.Warn("request denied",
		zap.String("path", r.URL.Path),
		zap.String("kind", fault.Kind),
		zap.Int("status", fault.StatusCode))
	writeFault(w, fault)
}

// RequestLogging はリクエスト単位のアクセスログを出力します。
func RequestLogging(log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("request handled",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("elapsed", time.Since(started)))
		})
	}
}
