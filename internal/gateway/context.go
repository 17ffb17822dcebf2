package gateway

import (
	"context"

	"github.com/ogurasousui/eams-grpc-clean-arch/internal/core/identity"
)

type identityContextKey struct{}

var identityKey = identityContextKey{}

// withIdentity は検証済み Identity をリクエストコンテキストへ載せます。
// ガードチェーンだけが書き込み、以降は明示的な値として取り出して使います。
func withIdentity(ctx context.Context, ident identity.Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// IdentityFromContext はガードチェーンが載せた Identity を取り出します。
func IdentityFromContext(ctx context.Context) (identity.Identity, bool) {
	ident, ok := ctx.Value(identityKey).(identity.Identity)
	return ident, ok
}
