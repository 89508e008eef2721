package handler

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/suggestion"
)

// Store is the part of the repository the handlers read and write directly.
type Store interface {
	RegisterCompany(ctx context.Context, company *domain.Company, admin *domain.User) error
	GetCompanyByID(ctx context.Context, id uuid.UUID) (*domain.Company, error)

	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUsersByCompanyID(ctx context.Context, companyID uuid.UUID) ([]*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) error
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, companyID, id uuid.UUID) error
	CheckEmailIfExists(ctx context.Context, email string) (bool, error)

	GetShiftTemplatesByCompanyID(ctx context.Context, companyID uuid.UUID) ([]*domain.ShiftTemplate, error)
	GetShiftTemplateByID(ctx context.Context, companyID, id uuid.UUID) (*domain.ShiftTemplate, error)
	CreateShiftTemplate(ctx context.Context, template *domain.ShiftTemplate) error
	UpdateShiftTemplate(ctx context.Context, template *domain.ShiftTemplate) error
	DeleteShiftTemplate(ctx context.Context, companyID, id uuid.UUID) error

	GetWorkerShiftsInRange(ctx context.Context, companyID uuid.UUID, rng domain.Range) ([]*domain.WorkerShift, error)
	GetWorkerShiftsByWorkerID(ctx context.Context, workerID uuid.UUID, rng domain.Range) ([]*domain.WorkerShift, error)
	CreateWorkerShift(ctx context.Context, shift *domain.WorkerShift) error
	DeleteWorkerShiftsInRange(ctx context.Context, companyID uuid.UUID, rng domain.Range) (int64, error)
}

type MailPublisher interface {
	Publish(ctx context.Context, msg domain.MailMessage) error
}

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  Store
	suggestions *suggestion.Manager
	mailer      MailPublisher
	translator  ut.Translator
	gatherer    prometheus.Gatherer

	Mux *chi.Mux
}

// NewHandler wires the handlers. A nil gatherer disables /metrics.
func NewHandler(cfg *config.Config, repo Store, suggestions *suggestion.Manager, mailer MailPublisher, gatherer prometheus.Gatherer) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		suggestions: suggestions,
		mailer:      mailer,
		translator:  trans,
		gatherer:    gatherer,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	if h.gatherer != nil {
		h.Mux.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}

	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})

	// everything below requires a logged in user
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Get("/company", h.GetMyCompany)
			r.Patch("/password", h.UpdateMyPassword)
			r.Get("/shifts", h.GetMyShifts)
		})

		r.Route("/workers", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))
			r.Post("/", h.CreateWorker)
			r.Get("/", h.GetAllWorkers)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.workerInfo)
				r.Get("/", h.GetWorker)
				r.Patch("/", h.UpdateWorker)
				r.Delete("/", h.DeleteWorker)
			})
		})

		r.Route("/shift-templates", func(r chi.Router) {
			r.Get("/", h.GetAllShiftTemplates)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateShiftTemplate)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.shiftTemplate)
				r.Get("/", h.GetShiftTemplate)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Patch("/", h.UpdateShiftTemplate)
				r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/", h.DeleteShiftTemplate)
			})
		})

		r.Route("/worker-shifts", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))
			r.Post("/", h.CreateWorkerShift)
			r.Get("/", h.GetCompanyShifts)
			r.Delete("/", h.ClearShifts)
			r.Post("/auto-assign", h.AutoAssign)
			r.Route("/suggestions", func(r chi.Router) {
				r.Get("/", h.GetSuggestions)
				r.Post("/accept", h.AcceptSuggestions)
				r.Delete("/", h.DeclineSuggestions)
			})
		})
	})
}
