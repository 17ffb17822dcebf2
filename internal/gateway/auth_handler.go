package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/ogurasousui/eams-grpc-clean-arch/internal/adapters/grpc/command"
	"go.uber.org/zap"
)

// AuthHandler は認証操作のエッジハンドラです。非認証の唯一の入口であり、
// ボディをコマンドに載せ替えて認証サービスへ転送します。
type AuthHandler struct {
	dispatcher CommandDispatcher
	log        *zap.Logger
}

// NewAuthHandler は AuthHandler を生成します。
func NewAuthHandler(dispatcher CommandDispatcher, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{dispatcher: dispatcher, log: log}
}

// Register は利用者登録を転送します。
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body command.RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeFault(w, NewFault(http.StatusBadRequest, KindBadRequest, "malformed request body"))
		return
	}

	h.log.Info("dispatching auth.register", zap.String("email", body.Email))

	var reply command.User
	if err := h.dispatcher.Dispatch(r.Context(), command.AuthRegister, body, &reply); err != nil {
		fault := FaultFromDispatchError(err)
		h.log.Warn("registration failed",
			zap.String("email", body.Email),
			zap.String("kind", fault.Kind),
			zap.Error(err))
		writeFault(w, fault)
		return
	}

	h.log.Info("user registered", zap.String("email", body.Email))
	writeJSON(w, http.StatusCreated, reply)
}

// Login はログインを転送し、ベアラートークンを返します。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body command.LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeFault(w, NewFault(http.StatusBadRequest, KindBadRequest, "malformed request body"))
		return
	}

	h.log.Info("dispatching auth.login", zap.String("email", body.Email))

	var reply command.LoginResult
	if err := h.dispatcher.Dispatch(r.Context(), command.AuthLogin, body, &reply); err != nil {
		fault := FaultFromDispatchError(err)
		h.log.Warn("login failed",
			zap.String("email", body.Email),
			zap.String("kind", fault.Kind),
			zap.Error(err))
		writeFault(w, fault)
		return
	}

	h.log.Info("user logged in", zap.String("email", body.Email))
	writeJSON(w, http.StatusOK, reply)
}
