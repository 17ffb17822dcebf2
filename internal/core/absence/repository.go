package absence

import "context"

// Repository は休暇申請永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, request *AbsenceRequest) (*AbsenceRequest, error)
	FindByID(ctx context.Context, id string) (*AbsenceRequest, error)
	// Decide は PENDING の申請に限って status へ遷移させます。
	// 対象が存在しなければ ErrNotFound、既に決定済みであれば
	// ErrAlreadyDecided を返します。
	Decide(ctx context.Context, id string, status Status) (*AbsenceRequest, error)
	// List は filter に従って作成日時の降順で申請を返します。
	// 2 番目の戻り値はページネーションを無視した件数です。
	List(ctx context.Context, filter ListFilter) ([]*AbsenceRequest, int, error)
}

// ListFilter は一覧取得用フィルタです。EmployeeID が空の場合は全件が対象です。
type ListFilter struct {
	EmployeeID string
	Limit      int
	Offset     int
}
