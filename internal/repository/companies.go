package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
)

func (r *Repository) CreateCompany(ctx context.Context, company *domain.Company) error {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout())
	defer cancel()

	if company.ID == uuid.Nil {
		company.ID = uuid.New()
	}

	query := `
		INSERT INTO companies (id, name)
		VALUES ($1, $2)
		RETURNING created_at
	`
	if err := r.dbpool.QueryRowContext(ctx, query, company.ID, company.Name).Scan(&company.CreatedAt); err != nil {
		return err
	}

	return nil
}

// RegisterCompany creates a company together with its first admin, or
// neither of them.
func (r *Repository) RegisterCompany(ctx context.Context, company *domain.Company, admin *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, r.transactionTimeout())
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if company.ID == uuid.Nil {
		company.ID = uuid.New()
	}
	query := `
		INSERT INTO companies (id, name)
		VALUES ($1, $2)
		RETURNING created_at
	`
	if err := tx.QueryRowContext(ctx, query, company.ID, company.Name).Scan(&company.CreatedAt); err != nil {
		return err
	}

	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}
	admin.CompanyID = company.ID
	admin.Role = domain.RoleAdmin
	query = `
		INSERT INTO users (id, company_id, email, password_hash, first_name, last_name, role, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING is_active, created_at, version
	`
	args := []any{admin.ID, admin.CompanyID, admin.Email, admin.PasswordHash, admin.FirstName, admin.LastName, admin.Role, admin.Position}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&admin.IsActive, &admin.CreatedAt, &admin.Version); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repository) GetCompanyByID(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout())
	defer cancel()

	query := `
		SELECT name, created_at FROM companies WHERE id = $1
	`

	company := &domain.Company{
		ID: id,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&company.Name, &company.CreatedAt); err != nil {
		return nil, err
	}

	return company, nil
}

func (r *Repository) GetCompanyByName(ctx context.Context, name string) (*domain.Company, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout())
	defer cancel()

	query := `
		SELECT id, created_at FROM companies WHERE name = $1
	`

	company := &domain.Company{
		Name: name,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, name).Scan(&company.ID, &company.CreatedAt); err != nil {
		return nil, err
	}

	return company, nil
}
