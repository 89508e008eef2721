package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"slices"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) GetAllWorkers(w http.ResponseWriter, r *http.Request) {
	users, err := h.repository.GetUsersByCompanyID(r.Context(), companyID(r))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	workers := slices.DeleteFunc(users, func(u *domain.User) bool {
		return u.Role != domain.RoleWorker
	})

	h.successResponse(w, r, "fetched workers", workers)
}

func (h *Handler) CreateWorker(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email" validate:"required,email"`
		FirstName string `json:"firstName" validate:"required"`
		LastName  string `json:"lastName" validate:"required"`
		Position  string `json:"position"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	password, err := utils.GenerateRandomPassword(h.config.NewUser.PasswordLength)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	worker := &domain.User{
		CompanyID:    companyID(r),
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         domain.RoleWorker,
		Position:     req.Position,
	}

	if err := h.repository.CreateUser(r.Context(), worker); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "users_email_key":
				h.errorResponse(w, r, "email already exists")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	mail := domain.MailMessage{
		Type: domain.MailTypeNewAccount,
		To:   worker.Email,
		Data: domain.NewAccountMailData{
			FullName: worker.FullName(),
			Email:    worker.Email,
			Password: password,
		},
	}

	// without the mail the worker has no way to learn the password
	if err := h.mailer.Publish(r.Context(), mail); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "worker created", worker)
}

func (h *Handler) GetWorker(w http.ResponseWriter, r *http.Request) {
	worker := r.Context().Value(WorkerInfoCtx).(*domain.User)
	h.successResponse(w, r, "fetched worker", worker)
}

func (h *Handler) UpdateWorker(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName *string `json:"firstName" validate:"omitempty,min=1"`
		LastName  *string `json:"lastName" validate:"omitempty,min=1"`
		Position  *string `json:"position"`
		IsActive  *bool   `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	worker := r.Context().Value(WorkerInfoCtx).(*domain.User)

	if req.FirstName != nil {
		worker.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		worker.LastName = *req.LastName
	}
	if req.Position != nil {
		worker.Position = *req.Position
	}
	if req.IsActive != nil {
		worker.IsActive = *req.IsActive
	}

	if err := h.repository.UpdateUser(r.Context(), worker); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "failed to update worker, please retry")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "worker updated", worker)
}

func (h *Handler) DeleteWorker(w http.ResponseWriter, r *http.Request) {
	worker := r.Context().Value(WorkerInfoCtx).(*domain.User)
	if worker.Role != domain.RoleWorker {
		h.errorResponse(w, r, "only workers can be deleted")
		return
	}

	if err := h.repository.DeleteUser(r.Context(), companyID(r), worker.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "worker not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "worker deleted", nil)
}
