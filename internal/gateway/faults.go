package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// エッジでローカルに発生する障害種別です。バックエンド由来の障害は
// gRPC ステータスコードから FaultFromDispatchError で導出されます。
const (
	KindMissingCredential   = "MissingCredential"
	KindMalformedCredential = "MalformedCredential"
	KindInvalidCredential   = "InvalidCredential"
	KindExpiredToken        = "ExpiredToken"
	KindRoleNotPermitted    = "RoleNotPermitted"
	KindBadRequest          = "BadRequest"
	KindUnauthorized        = "Unauthorized"
	KindForbidden           = "Forbidden"
	KindNotFound            = "NotFound"
	KindConflict            = "Conflict"
	KindInternal            = "InternalServerError"
	KindUpstream            = "UpstreamUnavailable"
)

// Fault はエッジがクライアントへ返す障害表現です。
type Fault struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Kind       string `json:"error"`
	Timestamp  string `json:"timestamp"`
}

// NewFault は Fault を生成します。
func NewFault(statusCode int, kind, message string) Fault {
	return Fault{
		StatusCode: statusCode,
		Message:    message,
		Kind:       kind,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
}

// FaultFromDispatchError はバックエンド障害をエッジの障害表現へ逆写像します。
// ステータスコードとメッセージは失われずに伝搬し、gRPC ステータスを
// 持たない失敗（接続不能・タイムアウト）は bad gateway に落ちます。
func FaultFromDispatchError(err error) Fault {
	st, ok := status.FromError(err)
	if !ok || st.Code() == codes.Unknown {
		return NewFault(http.StatusBadGateway, KindUpstream, "upstream service unavailable")
	}

	switch st.Code() {
	case codes.Unauthenticated:
		return NewFault(http.StatusUnauthorized, KindUnauthorized, st.Message())
	case codes.PermissionDenied:
		return NewFault(http.StatusForbidden, KindForbidden, st.Message())
	case codes.NotFound:
		return NewFault(http.StatusNotFound, KindNotFound, st.Message())
	case codes.InvalidArgument:
		return NewFault(http.StatusBadRequest, KindBadRequest, st.Message())
	case codes.FailedPrecondition:
		return NewFault(http.StatusConflict, KindConflict, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return NewFault(http.StatusBadGateway, KindUpstream, st.Message())
	case codes.Internal:
		return NewFault(http.StatusInternalServerError, KindInternal, st.Message())
	default:
		return NewFault(http.StatusBadGateway, KindUpstream, st.Message())
	}
}

// writeJSON は JSON 応答を書き出します。
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeFault は障害応答を書き出します。
func writeFault(w http.ResponseWriter, fault Fault) {
	writeJSON(w, fault.StatusCode, fault)
}
