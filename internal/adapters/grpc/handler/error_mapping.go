package handler

import (
	"errors"

	"github.com/ogurasousui/eams-grpc-clean-arch/internal/core/absence"
	"github.com/ogurasousui/eams-grpc-clean-arch/internal/core/auth"
	"github.com/ogurasousui/eams-grpc-clean-arch/internal/core/identity"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatusError はドメイン障害をワイヤ上の gRPC ステータスへ射影します。
// エッジ側の逆写像と合わせて、障害種別が失われないことが契約です。
// DuplicateIdentity / UnknownIdentity を Unauthenticated に載せるのは
// このコアの方針であり、Conflict ではありません。
func toStatusError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, auth.ErrInvalidName),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrInvalidRole),
		errors.Is(err, identity.ErrInvalidRole),
		errors.Is(err, absence.ErrInvalidReason),
		errors.Is(err, absence.ErrInvalidDateRange),
		errors.Is(err, absence.ErrInvalidLimit):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, auth.ErrDuplicateEmail), errors.Is(err, auth.ErrEmailNotFound):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, absence.ErrNotPermitted):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, absence.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, absence.ErrAlreadyDecided):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
