package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/ogurasousui/eams-grpc-clean-arch/internal/adapters/grpc/command"
	"go.uber.org/zap"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// AbsenceHandler は休暇申請操作のエッジハンドラです。ガードチェーンを
// 通過した Identity をコマンドペイロードへ明示的に添付して転送します。
type AbsenceHandler struct {
	dispatcher CommandDispatcher
	log        *zap.Logger
}

// NewAbsenceHandler は AbsenceHandler を生成します。
func NewAbsenceHandler(dispatcher CommandDispatcher, log *zap.Logger) *AbsenceHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AbsenceHandler{dispatcher: dispatcher, log: log}
}

// List は休暇申請の一覧取得を転送します。page と limit はクエリ引数で、
// 省略時はそれぞれ 1 と 10 です。
func (h *AbsenceHandler) List(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFromContext(r.Context())
	if !ok {
		writeFault(w, NewFault(http.StatusUnauthorized, KindMissingCredential, "Missing Authorization header"))
		return
	}

	page, err := queryInt(r, "page", defaultPage)
	if err != nil {
		writeFault(w, NewFault(http.StatusBadRequest, KindBadRequest, "invalid page"))
		return
	}
	limit, err := queryInt(r, "limit", defaultLimit)
	if err != nil {
		writeFault(w, NewFault(http.StatusBadRequest, KindBadRequest, "invalid limit"))
		return
	}

	h.log.Info("dispatching absence.list",
		zap.String("userId", ident.Subject),
		zap.String("role", string(ident.Role)),
		zap.Int("page", page),
		zap.Int("limit", limit))

	payload := command.ListAbsencesPayload{
		Identity: command.FromIdentity(ident),
		Page:     page,
		Limit:    limit,
	}

	var reply command.ListAbsencesResult
	if err := h.dispatcher.Dispatch(r.Context(), command.AbsenceList, payload, &reply); err != nil {
		h.fail(w, command.AbsenceList, ident.Subject, "", err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

// Create は休暇申請の作成を転送します。
func (h *AbsenceHandler) Create(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFromContext(r.Context())
	if !ok {
		writeFault(w, NewFault(http.StatusUnauthorized, KindMissingCredential, "Missing Authorization header"))
		return
	}

	var dto command.CreateAbsenceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeFault(w, NewFault(http.StatusBadRequest, KindBadRequest, "malformed request body"))
		return
	}

	h.log.Info("dispatching absence.create", zap.String("userId", ident.Subject))

	payload := command.CreateAbsencePayload{
		DTO:      dto,
		Identity: command.FromIdentity(ident),
	}

	var reply command.Absence
	if err := h.dispatcher.Dispatch(r.Context(), command.AbsenceCreate, payload, &reply); err != nil {
		h.fail(w, command.AbsenceCreate, ident.Subject, "", err)
		return
	}

	writeJSON(w, http.StatusCreated, reply)
}

// Approve は休暇申請の承認を転送します。
func (h *AbsenceHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, command.AbsenceApprove)
}

// Reject は休暇申請の却下を転送します。
func (h *AbsenceHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, command.AbsenceReject)
}

func (h *AbsenceHandler) decide(w http.ResponseWriter, r *http.Request, cmd string) {
	ident, ok := IdentityFromContext(r.Context())
	if !ok {
		writeFault(w, NewFault(http.StatusUnauthorized, KindMissingCredential, "Missing Authorization header"))
		return
	}

	id := chi.URLParam(r, "id")

	h.log.Info("dispatching "+cmd,
		zap.String("absenceId", id),
		zap.String("userId", ident.Subject))

	payload := command.DecideAbsencePayload{
		ID:       id,
		Identity: command.FromIdentity(ident),
	}

	var reply command.Absence
	if err := h.dispatcher.Dispatch(r.Context(), cmd, payload, &reply); err != nil {
		h.fail(w, cmd, ident.Subject, id, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

// fail はバックエンド障害をログへ残し、逆写像した障害応答を返します。
// 障害が黙って握り潰されることはありません。
func (h *AbsenceHandler) fail(w http.ResponseWriter, cmd, subject, entityID string, err error) {
	fault := FaultFromDispatchError(err)
	h.log.Warn("command dispatch failed",
		zap.String("command", cmd),
		zap.String("userId", subject),
		zap.String("absenceId", entityID),
		zap.String("kind", fault.Kind),
		zap.Int("status", fault.StatusCode),
		zap.Error(err))
	writeFault(w, fault)
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, strconv.ErrSyntax
	}
	return value, nil
}
