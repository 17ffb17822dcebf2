package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/eams-grpc-clean-arch/internal/core/absence"
	pg "github.com/ogurasousui/eams-grpc-clean-arch/internal/platform/db/postgres"
)

// AbsenceRepository は PostgreSQL を利用した休暇申請永続化の実装です。
type AbsenceRepository struct {
	pool pg.Queryer
}

// NewAbsenceRepository は AbsenceRepository を生成します。
func NewAbsenceRepository(pool pg.Queryer) *AbsenceRepository {
	return &AbsenceRepository{pool: pool}
}

// Create は休暇申請を新規作成します。
func (r *AbsenceRepository) Create(ctx context.Context, req *absence.AbsenceRequest) (*absence.AbsenceRequest, error) {
	q := pg.QueryerFromContext(ctx, r.pool)
	row := q.QueryRow(ctx, `
        INSERT INTO absence_requests (id, reason, start_date, end_date, status, employee_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, reason, start_date, end_date, status, employee_id, created_at
    `, req.ID, req.Reason, req.StartDate, req.EndDate, string(req.Status), req.EmployeeID, req.CreatedAt)

	created, err := scanAbsence(row)
	if err != nil {
		return nil, translateAbsencePgError(err)
	}
	return created, nil
}

// FindByID は ID で休暇申請を取得します。
func (r *AbsenceRepository) FindByID(ctx context.Context, id string) (*absence.AbsenceRequest, error) {
	q := pg.QueryerFromContext(ctx, r.pool)
	row := q.QueryRow(ctx, `
        SELECT id, reason, start_date, end_date, status, employee_id, created_at
          FROM absence_requests
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanAbsence(row)
	if err != nil {
		return nil, translateAbsencePgError(err)
	}
	return found, nil
}

// Decide は PENDING の申請に限って status へ更新します。条件付き UPDATE に
// よって、同一申請への並行した approve / reject が決定済みの状態を
// 上書きすることはありません。
func (r *AbsenceRepository) Decide(ctx context.Context, id string, status absence.Status) (*absence.AbsenceRequest, error) {
	q := pg.QueryerFromContext(ctx, r.pool)
	row := q.QueryRow(ctx, `
        UPDATE absence_requests
           SET status = $2
         WHERE id = $1
           AND status = $3
        RETURNING id, reason, start_date, end_date, status, employee_id, created_at
    `, id, string(status), string(absence.StatusPending))

	decided, err := scanAbsence(row)
	if err == nil {
		return decided, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// 更新できなかった理由を区別する。存在しないのか、決定済みなのか。
	existing, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if absence.IsTerminal(existing.Status) {
		return nil, absence.ErrAlreadyDecided
	}
	return nil, absence.ErrNotFound
}

// List は filter に従い、作成日時の降順で休暇申請を返します。2 番目の
// 戻り値はページネーションを無視した件数です。
func (r *AbsenceRepository) List(ctx context.Context, filter absence.ListFilter) ([]*absence.AbsenceRequest, int, error) {
	q := pg.QueryerFromContext(ctx, r.pool)

	var (
		rows pgx.Rows
		err  error
	)
	if filter.EmployeeID != "" {
		rows, err = q.Query(ctx, `
        SELECT id, reason, start_date, end_date, status, employee_id, created_at
          FROM absence_requests
         WHERE employee_id = $1
         ORDER BY created_at DESC, id DESC
         LIMIT $2
        OFFSET $3
    `, filter.EmployeeID, filter.Limit, filter.Offset)
	} else {
		rows, err = q.Query(ctx, `
        SELECT id, reason, start_date, end_date, status, employee_id, created_at
          FROM absence_requests
         ORDER BY created_at DESC, id DESC
         LIMIT $1
        OFFSET $2
    `, filter.Limit, filter.Offset)
	}
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	requests := make([]*absence.AbsenceRequest, 0)
	for rows.Next() {
		req, err := scanAbsence(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	total, err := r.count(ctx, q, filter.EmployeeID)
	if err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *AbsenceRepository) count(ctx context.Context, q pg.Queryer, employeeID string) (int, error) {
	var (
		row pgx.Row
	)
	if employeeID != "" {
		row = q.QueryRow(ctx, `SELECT COUNT(*) FROM absence_requests WHERE employee_id = $1`, employeeID)
	} else {
		row = q.QueryRow(ctx, `SELECT COUNT(*) FROM absence_requests`)
	}

	var total int
	if err := row.Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func scanAbsence(row pgx.Row) (*absence.AbsenceRequest, error) {
	var (
		id         string
		reason     string
		startDate  time.Time
		endDate    time.Time
		status     string
		employeeID string
		createdAt  time.Time
	)

	if err := row.Scan(&id, &reason, &startDate, &endDate, &status, &employeeID, &createdAt); err != nil {
		return nil, err
	}

	return &absence.AbsenceRequest{
		ID:         id,
		Reason:     reason,
		StartDate:  startDate,
		EndDate:    endDate,
		Status:     absence.Status(status),
		EmployeeID: employeeID,
		CreatedAt:  createdAt,
	}, nil
}

func translateAbsencePgError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return absence.ErrNotFound
	}
	return err
}
