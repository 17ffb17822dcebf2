package handler

import (
	"context"
	"encoding/json"

	"github.com/ogurasousui/eams-grpc-clean-arch/internal/adapters/grpc/command"
	"github.com/ogurasousui/eams-grpc-clean-arch/internal/core/absence"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AbsenceCommandHandler は休暇サービスのコマンドハンドラです。
type AbsenceCommandHandler struct {
	svc absence.UseCase
	log *zap.Logger
}

// NewAbsenceCommandHandler は AbsenceCommandHandler を生成します。
func NewAbsenceCommandHandler(svc absence.UseCase, log *zap.Logger) *AbsenceCommandHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AbsenceCommandHandler{svc: svc, log: log}
}

// Commands はこのハンドラが所有するコマンドの対応表を返します。
func (h *AbsenceCommandHandler) Commands() map[string]command.HandlerFunc {
	return map[string]command.HandlerFunc{
		command.AbsenceList:    h.list,
		command.AbsenceCreate:  h.create,
		command.AbsenceApprove: h.approve,
		command.AbsenceReject:  h.reject,
	}
}

func (h *AbsenceCommandHandler) list(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var in command.ListAbsencesPayload
	if err := json.Unmarshal(payload, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, "malformed list payload")
	}

	caller, err := in.Identity.ToIdentity()
	if err != nil {
		return nil, toStatusError(err)
	}

	h.log.Info("received absence.list",
		zap.String("userId", caller.Subject),
		zap.String("role", string(caller.Role)),
		zap.Int("page", in.Page),
		zap.Int("limit", in.Limit))

	result, err := h.svc.List(ctx, absence.ListInput{Page: in.Page, Limit: in.Limit}, caller)
	if err != nil {
		h.log.Warn("list failed", zap.String("userId", caller.Subject), zap.Error(err))
		return nil, toStatusError(err)
	}

	return command.ListAbsencesResult{
		Data:  command.FromAbsences(result.Data),
		Total: result.Total,
		Page:  result.Page,
		Limit: result.Limit,
	}, nil
}

func (h *AbsenceCommandHandler) create(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	var in command.CreateAbsencePayload
	if err := json.Unmarshal(payload, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, "malformed create payload")
	}

	caller, err := in.Identity.ToIdentity()
	if err != nil {
		return nil, toStatusError(err)
	}

	h.log.Info("received absence.create",
		zap.String("userId", caller.Subject),
		zap.String("startDate", in.DTO.StartDate),
		zap.String("endDate", in.DTO.EndDate))

	start, err := command.ParseDate(in.DTO.StartDate)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid startDate")
	}
	end, err := command.ParseDate(in.DTO.EndDate)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid endDate")
	}

	created, err := h.svc.Create(ctx, absence.CreateInput{
		Reason:    in.DTO.Reason,
		StartDate: start,
		EndDate:   end,
	}, caller)
	if err != nil {
		h.log.Warn("create failed", zap.String("userId", caller.Subject), zap.Error(err))
		return nil, toStatusError(err)
	}

	h.log.Info("absence created", zap.String("absenceId", created.ID), zap.String("userId", caller.Subject))
	return command.FromAbsence(created), nil
}

func (h *AbsenceCommandHandler) approve(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	return h.decide(ctx, payload, command.AbsenceApprove)
}

func (h *AbsenceCommandHandler) reject(ctx context.Context, payload json.RawMessage) (interface{}, error) {
	return h.decide(ctx, payload, command.AbsenceReject)
}

func (h *AbsenceCommandHandler) decide(ctx context.Context, payload json.RawMessage, cmd string) (interface{}, error) {
	var in command.DecideAbsencePayload
	if err := json.Unmarshal(payload, &in); err != nil {
		return nil, status.Error(codes.InvalidArgument, "malformed decide payload")
	}

	caller, err := in.Identity.ToIdentity()
	if err != nil {
		return nil, toStatusError(err)
	}

	h.log.Info("received "+cmd,
		zap.String("absenceId", in.ID),
		zap.String("userId", caller.Subject),
		zap.String("role", string(caller.Role)))

	var decided *absence.AbsenceRequest
	switch cmd {
	case command.AbsenceApprove:
		decided, err = h.svc.Approve(ctx, in.ID, caller)
	default:
		decided, err = h.svc.Reject(ctx, in.ID, caller)
	}
	if err != nil {
		h.log.Warn("decision failed",
			zap.String("command", cmd),
			zap.String("absenceId", in.ID),
			zap.String("userId", caller.Subject),
			zap.Error(err))
		return nil, toStatusError(err)
	}

	return command.FromAbsence(decided), nil
}
