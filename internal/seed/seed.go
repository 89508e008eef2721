package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

type Person struct {
	Email     string `yaml:"email" validate:"required,email"`
	FirstName string `yaml:"firstName" validate:"required"`
	LastName  string `yaml:"lastName" validate:"required"`
	Position  string `yaml:"position,omitempty"`
	Password  string `yaml:"password,omitempty"`
}

type Template struct {
	Name      string  `yaml:"name" validate:"required"`
	Position  string  `yaml:"position,omitempty"`
	StartTime string  `yaml:"startTime" validate:"required"`
	EndTime   string  `yaml:"endTime" validate:"required"`
	Days      []int32 `yaml:"days" validate:"dive,gte=1,lte=7"`
}

// Fixture describes one company with its staff and shift templates.
type Fixture struct {
	Company   string     `yaml:"company" validate:"required"`
	Admins    []Person   `yaml:"admins" validate:"dive"`
	Workers   []Person   `yaml:"workers" validate:"dive"`
	Templates []Template `yaml:"templates" validate:"dive"`
}

type Store interface {
	GetCompanyByName(ctx context.Context, name string) (*domain.Company, error)
	CreateCompany(ctx context.Context, company *domain.Company) error
	CreateUser(ctx context.Context, user *domain.User) error
	CreateShiftTemplate(ctx context.Context, template *domain.ShiftTemplate) error
}

// Summary counts the rows Apply inserted. Rows that already existed are
// skipped and not counted.
type Summary struct {
	Company   *domain.Company
	Users     int
	Templates int
}

var validate = validator.New()

// Load decodes and validates a fixture. Template clock times are normalized
// to HH:MM.
func Load(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}

	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("fixture validation failed: %w", err)
	}

	for i := range f.Templates {
		t := f.Templates[i].toDomain()
		if err := utils.ValidateShiftTemplate(t); err != nil {
			return nil, fmt.Errorf("invalid template %q: %w", t.Name, err)
		}
		f.Templates[i].StartTime = t.StartTime
		f.Templates[i].EndTime = t.EndTime
		f.Templates[i].Days = t.Days
	}

	return &f, nil
}

func (t Template) toDomain() *domain.ShiftTemplate {
	return &domain.ShiftTemplate{
		Name:      t.Name,
		Position:  t.Position,
		StartTime: t.StartTime,
		EndTime:   t.EndTime,
		Days:      append([]int32(nil), t.Days...),
	}
}

// Apply inserts the fixture. People without a password get defaultPassword.
func Apply(ctx context.Context, store Store, f *Fixture, defaultPassword string) (*Summary, error) {
	company, err := store.GetCompanyByName(ctx, f.Company)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		company = &domain.Company{Name: f.Company}
		if err := store.CreateCompany(ctx, company); err != nil {
			return nil, fmt.Errorf("create company %q: %w", f.Company, err)
		}
	case err != nil:
		return nil, fmt.Errorf("get company %q: %w", f.Company, err)
	}

	summary := &Summary{Company: company}

	people := []struct {
		role   domain.Role
		people []Person
	}{
		{domain.RoleAdmin, f.Admins},
		{domain.RoleWorker, f.Workers},
	}
	for _, group := range people {
		for _, p := range group.people {
			inserted, err := createUser(ctx, store, company, group.role, p, defaultPassword)
			if err != nil {
				return summary, err
			}
			if inserted {
				summary.Users++
			}
		}
	}

	for _, t := range f.Templates {
		template := t.toDomain()
		template.CompanyID = company.ID
		if err := store.CreateShiftTemplate(ctx, template); err != nil {
			if isUniqueViolation(err, "shift_templates_company_id_name_key") {
				slog.Info("shift template already exists, skipped", slog.String("name", t.Name))
				continue
			}
			return summary, fmt.Errorf("create template %q: %w", t.Name, err)
		}
		summary.Templates++
	}

	return summary, nil
}

func createUser(ctx context.Context, store Store, company *domain.Company, role domain.Role, p Person, defaultPassword string) (bool, error) {
	password := p.Password
	if password == "" {
		password = defaultPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	user := &domain.User{
		CompanyID:    company.ID,
		Email:        p.Email,
		PasswordHash: string(hash),
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Role:         role,
		Position:     p.Position,
	}
	if err := store.CreateUser(ctx, user); err != nil {
		if isUniqueViolation(err, "users_email_key") {
			slog.Info("user already exists, skipped", slog.String("email", p.Email))
			return false, nil
		}
		return false, fmt.Errorf("create user %s: %w", p.Email, err)
	}

	return true, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.ConstraintName == constraint
}
