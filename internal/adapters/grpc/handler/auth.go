package handler

import (
	"context"
	"encoding/json"

	"github.com/ogurasousui/eams-grpc-clean-arch/internal/adapters/grpc/command"
	"github.com/ogurasousui/eams-grpc-clean-arch/internal/core/auth"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AuthCommandHandler は認証サービスのコマンドハンドラです。
type AuthCommandHandler struct {
	svc auth.UseCase
	log *zap.Logger
}

// NewAuthCommandHandler は AuthCommandHandler を生成します。
func NewAuthCommandHandler(svc auth.UseCase, log *zap.Logger) *AuthCommandHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthCommandHandler{svc: svc, log: log}
}

// Commands はこのハンドラが所有するコマンドの対応表を返します。
func (h *AuthCommandHandler) Commands() map[string]command.HandlerFunc {
	return map[string]command.HandlerFunc{
		command.AuthRegister: h.register,
		command.AuthLogin:    h.login,
	}
}

func (h *AuthCommandHandler) register(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var in command.RegisterPayload
	if err := json.Unmarshal(payload, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, "malformed register payload")
	}

	h.log.Info("received auth.register", zap.String("email", in.Email))

	created, err := h.svc.Register(ctx, auth.RegisterInput{
		Name:  in.Name,
		Email: in.Email,
		Role:  in.Role,
	})
	if err != nil {
		h.log.Warn("registration failed", zap.String("email", in.Email), zap.Error(err))
		return nil, toStatusError(err)
	}

	h.log.Info("user registered", zap.String("userId", created.ID), zap.String("email", created.Email))
	return command.FromUser(created), nil
}

func (h *AuthCommandHandler) login(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var in command.LoginPayload
	if err := json.Unmarshal(payload, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, "malformed login payload")
	}

	h.log.Info("received auth.login", zap.String("email", in.Email))

	signed, err := h.svc.Login(ctx, auth.LoginInput{Email: in.Email})
	if err != nil {
		h.log.Warn("login failed", zap.String("email", in.Email), zap.Error(err))
		return nil, toStatusError(err)
	}

	return command.LoginResult{AccessToken: signed}, nil
}
