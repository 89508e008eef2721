package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
)

const shiftTemplateQuery = `
	SELECT
		st.id,
		st.company_id,
		st.name,
		st.position,
		st.start_time,
		st.end_time,
		st.created_at,
		st.version,
		std.day
	FROM shift_templates st
	LEFT JOIN shift_template_days std ON st.id = std.template_id
`

// scanShiftTemplates folds one row per (template, day) back into templates,
// keeping the order in which templates first appear.
func scanShiftTemplates(rows *sql.Rows) ([]*domain.ShiftTemplate, error) {
	templates := make([]*domain.ShiftTemplate, 0)
	templatesMap := make(map[uuid.UUID]*domain.ShiftTemplate)

	for rows.Next() {
		var row struct {
			ID        uuid.UUID
			CompanyID uuid.UUID
			Name      string
			Position  string
			StartTime string
			EndTime   string
			CreatedAt time.Time
			Version   int32

			Day sql.NullInt32
		}

		dst := []any{
			&row.ID,
			&row.CompanyID,
			&row.Name,
			&row.Position,
			&row.StartTime,
			&row.EndTime,
			&row.CreatedAt,
			&row.Version,
			&row.Day,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		template, exists := templatesMap[row.ID]
		if !exists {
			template = &domain.ShiftTemplate{
				ID:        row.ID,
				CompanyID: row.CompanyID,
				Name:      row.Name,
				Position:  row.Position,
				StartTime: row.StartTime,
				EndTime:   row.EndTime,
				Days:      make([]int32, 0),
				CreatedAt: row.CreatedAt,
				Version:   row.Version,
			}
			templatesMap[row.ID] = template
			templates = append(templates, template)
		}

		// a template without days yields a single row with a NULL day
		if !row.Day.Valid {
			continue
		}

		template.Days = append(template.Days, row.Day.Int32)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return templates, nil
}

// GetShiftTemplatesByCompanyID returns the company's templates in creation
// order, which is also the order auto-assign visits them within a day.
func (r *Repository) GetShiftTemplatesByCompanyID(ctx context.Context, companyID uuid.UUID) ([]*domain.ShiftTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout())
	defer cancel()

	query := shiftTemplateQuery + `
		WHERE st.company_id = $1
		ORDER BY st.created_at, st.id, std.day
	`

	rows, err := r.dbpool.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanShiftTemplates(rows)
}

func (r *Repository) GetShiftTemplateByID(ctx context.Context, companyID, id uuid.UUID) (*domain.ShiftTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout())
	defer cancel()

	query := shiftTemplateQuery + `
		WHERE st.company_id = $1 AND st.id = $2
		ORDER BY std.day
	`

	rows, err := r.dbpool.QueryContext(ctx, query, companyID, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates, err := scanShiftTemplates(rows)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, sql.ErrNoRows
	}

	return templates[0], nil
}

func insertShiftTemplateDays(ctx context.Context, tx *sql.Tx, template *domain.ShiftTemplate) error {
	query := `
		INSERT INTO shift_template_days (template_id, day)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	for _, day := range template.Days {
		if _, err := tx.ExecContext(ctx, query, template.ID, day); err != nil {
			return err
		}
	}

	return nil
}

func (r *Repository) CreateShiftTemplate(ctx context.Context, template *domain.ShiftTemplate) error {
	ctx, cancel := context.WithTimeout(ctx, r.transactionTimeout())
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if template.ID == uuid.Nil {
		template.ID = uuid.New()
	}

	query := `
		INSERT INTO shift_templates (id, company_id, name, position, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, version
	`
	args := []any{template.ID, template.CompanyID, template.Name, template.Position, template.StartTime, template.EndTime}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&template.CreatedAt, &template.Version); err != nil {
		return err
	}

	if err := insertShiftTemplateDays(ctx, tx, template); err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateShiftTemplate overwrites the template and its days. It fails with
// sql.ErrNoRows when the stored version no longer matches.
func (r *Repository) UpdateShiftTemplate(ctx context.Context, template *domain.ShiftTemplate) error {
	ctx, cancel := context.WithTimeout(ctx, r.transactionTimeout())
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE shift_templates
		SET
			name = $1,
			position = $2,
			start_time = $3,
			end_time = $4,
			version = version + 1
		WHERE id = $5 AND company_id = $6 AND version = $7
		RETURNING version
	`
	args := []any{template.Name, template.Position, template.StartTime, template.EndTime, template.ID, template.CompanyID, template.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&template.Version); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM shift_template_days WHERE template_id = $1`, template.ID); err != nil {
		return err
	}
	if err := insertShiftTemplateDays(ctx, tx, template); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteShiftTemplate reports sql.ErrNoRows when nothing was deleted.
func (r *Repository) DeleteShiftTemplate(ctx context.Context, companyID, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout())
	defer cancel()

	query := `
		DELETE FROM shift_templates WHERE company_id = $1 AND id = $2
	`

	result, err := r.dbpool.ExecContext(ctx, query, companyID, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}
