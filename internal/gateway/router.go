package gateway

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/ogurasousui/eams-grpc-clean-arch/internal/core/identity"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// RouterParams はルーター構築に必要な依存をまとめます。
type RouterParams struct {
	Log               *zap.Logger
	Guard             *GuardChain
	Auth              *AuthHandler
	Absence           *AbsenceHandler
	ThrottlePerMinute int
	AllowedOrigins    []string
}

// NewRouter はエッジの HTTP ルーターを構築します。ガードチェーンは
// すべてのルートに適用され、役割ゲートは操作ごとの宣言に従います。
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(RequestLogging(params.Log))

	if params.ThrottlePerMinute > 0 {
		r.Use(httprate.LimitByIP(params.ThrottlePerMinute, time.Minute))
	}

	if len(params.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: params.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		}).Handler)
	}

	r.Use(params.Guard.Authenticate)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", params.Auth.Register)
		r.Post("/login", params.Auth.Login)
	})

	r.Route("/absences", func(r chi.Router) {
		r.Get("/", params.Absence.List)
		r.With(params.Guard.RequireRoles(identity.RoleEmployee)).Post("/", params.Absence.Create)
		r.With(params.Guard.RequireRoles(identity.RoleAdmin)).Patch("/{id}/approve", params.Absence.Approve)
		r.With(params.Guard.RequireRoles(identity.RoleAdmin)).Patch("/{id}/reject", params.Absence.Reject)
	})

	return r
}
