package absence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/eams-grpc-clean-arch/internal/core/identity"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// IDGenerator は新規申請の ID を生成します。
type IDGenerator interface {
	NewID() string
}

type uuidGenerator struct{}

func (uuidGenerator) NewID() string {
	return uuid.NewString()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const (
	defaultListPage  = 1
	defaultListLimit = 10
	maxListLimit     = 200
)

// Service は休暇申請のライフサイクルをまとめます。
// すべての操作は呼び出し元の Identity を明示的な引数として受け取ります。
type Service struct {
	repo  Repository
	clock Clock
	ids   IDGenerator
	tx    TransactionManager
}

// UseCase は休暇申請ユースケースの公開インターフェースです。
type UseCase interface {
	Create(ctx context.Context, in CreateInput, caller identity.Identity) (*AbsenceRequest, error)
	List(ctx context.Context, in ListInput, caller identity.Identity) (*ListResult, error)
	Approve(ctx context.Context, id string, caller identity.Identity) (*AbsenceRequest, error)
	Reject(ctx context.Context, id string, caller identity.Identity) (*AbsenceRequest, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, ids IDGenerator, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if ids == nil {
		ids = uuidGenerator{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, ids: ids, tx: tx}
}

// CreateInput は申請作成時の入力です。
type CreateInput struct {
	Reason    string
	StartDate time.Time
	EndDate   time.Time
}

// ListInput は一覧取得時の入力です。
type ListInput struct {
	Page  int
	Limit int
}

// ListResult は一覧取得結果を表します。Total はページネーションを無視した
// 役割スコープ内の件数で、Page と Limit は正規化後の値がそのまま返ります。
type ListResult struct {
	Data  []*AbsenceRequest
	Total int
	Page  int
	Limit int
}

// Create は新しい休暇申請を PENDING で永続化します。EMPLOYEE のみ実行できます。
func (s *Service) Create(ctx context.Context, in CreateInput, caller identity.Identity) (*AbsenceRequest, error) {
	if caller.Role != identity.RoleEmployee {
		return nil, ErrNotPermitted
	}

	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, ErrInvalidReason
	}

	start := normalizeDate(in.StartDate)
	end := normalizeDate(in.EndDate)
	if end.Before(start) {
		return nil, ErrInvalidDateRange
	}

	var created *AbsenceRequest
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		result, err := s.repo.Create(txCtx, &AbsenceRequest{
			ID:         s.ids.NewID(),
			Reason:     reason,
			StartDate:  start,
			EndDate:    end,
			Status:     StatusPending,
			EmployeeID: caller.Subject,
			CreatedAt:  s.clock.Now(),
		})
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// List は申請の一覧を返します。EMPLOYEE は自身の申請のみ、ADMIN は全件が
// 対象です。並び順は常に作成日時の降順です。
func (s *Service) List(ctx context.Context, in ListInput, caller identity.Identity) (*ListResult, error) {
	page := in.Page
	if page <= 0 {
		page = defaultListPage
	}

	limit := in.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		return nil, ErrInvalidLimit
	}

	filter := ListFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if caller.Role == identity.RoleEmployee {
		filter.EmployeeID = caller.Subject
	}

	var (
		requests []*AbsenceRequest
		total    int
	)
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, count, err := s.repo.List(txCtx, filter)
		if err != nil {
			return err
		}
		requests = result
		total = count
		return nil
	}); err != nil {
		return nil, err
	}

	if requests == nil {
		requests = []*AbsenceRequest{}
	}
	return &ListResult{Data: requests, Total: total, Page: page, Limit: limit}, nil
}

// Approve は申請を APPROVED へ遷移させます。ADMIN のみ実行できます。
func (s *Service) Approve(ctx context.Context, id string, caller identity.Identity) (*AbsenceRequest, error) {
	return s.decide(ctx, id, StatusApproved, caller)
}

// Reject は申請を REJECTED へ遷移させます。ADMIN のみ実行できます。
func (s *Service) Reject(ctx context.Context, id string, caller identity.Identity) (*AbsenceRequest, error) {
	return s.decide(ctx, id, StatusRejected, caller)
}

// decide は役割検査を存在検査より先に行います。権限のない呼び出し元は
// 対象 ID の存在有無を知ることができません。
func (s *Service) decide(ctx context.Context, id string, status Status, caller identity.Identity) (*AbsenceRequest, error) {
	if caller.Role != identity.RoleAdmin {
		return nil, ErrNotPermitted
	}

	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}

	var decided *AbsenceRequest
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		result, err := s.repo.Decide(txCtx, id, status)
		if err != nil {
			return err
		}
		decided = result
		return nil
	}); err != nil {
		return nil, err
	}

	return decided, nil
}

// normalizeDate は時刻成分を落として UTC の暦日に揃えます。
func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
