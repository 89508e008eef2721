package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
)

// lockCompanySuggestions serializes writers of one company's suggestions
// until tx ends.
func lockCompanySuggestions(ctx context.Context, tx *sql.Tx, companyID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "suggestions:"+companyID.String())
	return err
}

func (r *Repository) GetSuggestionsByCompanyID(ctx context.Context, companyID uuid.UUID) ([]*domain.Suggestion, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout())
	defer cancel()

	query := `
		SELECT id, worker_id, company_id, template_id, start_date, end_date, created_at
		FROM shift_suggestions
		WHERE company_id = $1
		ORDER BY start_date, id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	suggestions := make([]*domain.Suggestion, 0)
	for rows.Next() {
		s := &domain.Suggestion{}
		dst := []any{&s.ID, &s.WorkerID, &s.CompanyID, &s.TemplateID, &s.Start, &s.End, &s.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		suggestions = append(suggestions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return suggestions, nil
}

// ReplaceSuggestions drops the company's current batch and stores
// suggestions in its place. Readers see either the old or the new batch.
func (r *Repository) ReplaceSuggestions(ctx context.Context, companyID uuid.UUID, suggestions []*domain.Suggestion) error {
	ctx, cancel := context.WithTimeout(ctx, r.transactionTimeout())
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := lockCompanySuggestions(ctx, tx, companyID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM shift_suggestions WHERE company_id = $1`, companyID); err != nil {
		return err
	}

	query := `
		INSERT INTO shift_suggestions (id, worker_id, company_id, template_id, start_date, end_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, s := range suggestions {
		args := []any{s.ID, s.WorkerID, companyID, s.TemplateID, s.Start, s.End, s.CreatedAt}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) DeleteAllSuggestions(ctx context.Context, companyID uuid.UUID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.transactionTimeout())
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := lockCompanySuggestions(ctx, tx, companyID); err != nil {
		return 0, err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM shift_suggestions WHERE company_id = $1`, companyID)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return n, nil
}

// MaterializeSuggestions copies the company's suggestions into worker_shifts
// and deletes them in one transaction.
func (r *Repository) MaterializeSuggestions(ctx context.Context, companyID uuid.UUID) ([]*domain.WorkerShift, error) {
	ctx, cancel := context.WithTimeout(ctx, r.transactionTimeout())
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := lockCompanySuggestions(ctx, tx, companyID); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO worker_shifts (worker_id, company_id, template_id, start_date, end_date)
		SELECT worker_id, company_id, template_id, start_date, end_date
		FROM shift_suggestions
		WHERE company_id = $1
		ORDER BY start_date, id
		RETURNING id, worker_id, company_id, template_id, start_date, end_date, created_at
	`

	rows, err := tx.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, err
	}

	shifts := make([]*domain.WorkerShift, 0)
	for rows.Next() {
		shift := &domain.WorkerShift{}
		dst := []any{&shift.ID, &shift.WorkerID, &shift.CompanyID, &shift.TemplateID, &shift.Start, &shift.End, &shift.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			rows.Close()
			return nil, err
		}
		shifts = append(shifts, shift)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM shift_suggestions WHERE company_id = $1`, companyID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return shifts, nil
}
