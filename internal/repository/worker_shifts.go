package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
)

// ErrShiftOverlap is returned when a new shift overlaps one the worker
// already has.
var ErrShiftOverlap = errors.New("worker already has an overlapping shift")

const workerShiftQuery = `
	SELECT
		ws.id,
		ws.worker_id,
		ws.company_id,
		ws.template_id,
		ws.start_date,
		ws.end_date,
		ws.created_at,
		st.name,
		st.position,
		st.start_time,
		st.end_time
	FROM worker_shifts ws
	LEFT JOIN shift_templates st ON ws.template_id = st.id
`

func scanWorkerShifts(rows *sql.Rows) ([]*domain.WorkerShift, error) {
	shifts := make([]*domain.WorkerShift, 0)

	for rows.Next() {
		shift := &domain.WorkerShift{}
		var template struct {
			Name      sql.NullString
			Position  sql.NullString
			StartTime sql.NullString
			EndTime   sql.NullString
		}

		dst := []any{
			&shift.ID,
			&shift.WorkerID,
			&shift.CompanyID,
			&shift.TemplateID,
			&shift.Start,
			&shift.End,
			&shift.CreatedAt,
			&template.Name,
			&template.Position,
			&template.StartTime,
			&template.EndTime,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if shift.TemplateID.Valid && template.Name.Valid {
			shift.Template = &domain.ShiftTemplate{
				ID:        shift.TemplateID.UUID,
				CompanyID: shift.CompanyID,
				Name:      template.Name.String,
				Position:  template.Position.String,
				StartTime: template.StartTime.String,
				EndTime:   template.EndTime.String,
			}
		}

		shifts = append(shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

func (r *Repository) getWorkerShifts(ctx context.Context, query string, args ...any) ([]*domain.WorkerShift, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout())
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanWorkerShifts(rows)
}

// GetWorkerShiftsInRange returns the company's committed shifts starting
// within rng, both ends included.
func (r *Repository) GetWorkerShiftsInRange(ctx context.Context, companyID uuid.UUID, rng domain.Range) ([]*domain.WorkerShift, error) {
	query := workerShiftQuery + `
		WHERE ws.company_id = $1 AND ws.start_date BETWEEN $2 AND $3
		ORDER BY ws.start_date, ws.id
	`

	return r.getWorkerShifts(ctx, query, companyID, rng.Start, rng.End)
}

// GetWorkerShiftsOverlapping returns the company's committed shifts that
// share at least one instant with rng, including shifts that started before
// it.
func (r *Repository) GetWorkerShiftsOverlapping(ctx context.Context, companyID uuid.UUID, rng domain.Range) ([]*domain.WorkerShift, error) {
	query := workerShiftQuery + `
		WHERE ws.company_id = $1 AND ws.start_date <= $3 AND ws.end_date > $2
		ORDER BY ws.start_date, ws.id
	`

	return r.getWorkerShifts(ctx, query, companyID, rng.Start, rng.End)
}

// GetWorkerShiftsByWorkerID returns the worker's shifts starting within rng.
func (r *Repository) GetWorkerShiftsByWorkerID(ctx context.Context, workerID uuid.UUID, rng domain.Range) ([]*domain.WorkerShift, error) {
	query := workerShiftQuery + `
		WHERE ws.worker_id = $1 AND ws.start_date BETWEEN $2 AND $3
		ORDER BY ws.start_date, ws.id
	`

	return r.getWorkerShifts(ctx, query, workerID, rng.Start, rng.End)
}

// CreateWorkerShift stores a single shift for a worker of the shift's
// company. It fails with sql.ErrNoRows when the worker does not belong to
// the company and with ErrShiftOverlap when the worker is already busy.
func (r *Repository) CreateWorkerShift(ctx context.Context, shift *domain.WorkerShift) error {
	ctx, cancel := context.WithTimeout(ctx, r.transactionTimeout())
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// locking the worker row serializes concurrent inserts for that worker
	var workerID uuid.UUID
	query := `SELECT id FROM users WHERE id = $1 AND company_id = $2 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, query, shift.WorkerID, shift.CompanyID).Scan(&workerID); err != nil {
		return err
	}

	overlapping := false
	query = `
		SELECT EXISTS (
			SELECT 1 FROM worker_shifts
			WHERE worker_id = $1 AND start_date < $3 AND end_date > $2
		)
	`
	if err := tx.QueryRowContext(ctx, query, shift.WorkerID, shift.Start, shift.End).Scan(&overlapping); err != nil {
		return err
	}
	if overlapping {
		return ErrShiftOverlap
	}

	if shift.ID == uuid.Nil {
		shift.ID = uuid.New()
	}

	query = `
		INSERT INTO worker_shifts (id, worker_id, company_id, template_id, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	args := []any{shift.ID, shift.WorkerID, shift.CompanyID, shift.TemplateID, shift.Start, shift.End}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&shift.CreatedAt); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteWorkerShiftsInRange removes the company's shifts lying entirely
// within rng and reports how many were removed.
func (r *Repository) DeleteWorkerShiftsInRange(ctx context.Context, companyID uuid.UUID, rng domain.Range) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout())
	defer cancel()

	query := `
		DELETE FROM worker_shifts
		WHERE company_id = $1 AND start_date >= $2 AND end_date <= $3
	`

	result, err := r.dbpool.ExecContext(ctx, query, companyID, rng.Start, rng.End)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
