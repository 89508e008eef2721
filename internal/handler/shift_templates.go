package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/utils"
)

func (h *Handler) shiftTemplateStoreError(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		switch pgErr.ConstraintName {
		case "shift_templates_company_id_name_key":
			h.errorResponse(w, r, "shift template name already exists")
		default:
			h.internalServerError(w, r, err)
		}
	case errors.Is(err, sql.ErrNoRows):
		h.errorResponse(w, r, "failed to update shift template, please retry")
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) GetAllShiftTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.repository.GetShiftTemplatesByCompanyID(r.Context(), companyID(r))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "fetched shift templates", templates)
}

func (h *Handler) CreateShiftTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string  `json:"name" validate:"required"`
		Position  string  `json:"position"`
		StartTime string  `json:"startTime" validate:"required"`
		EndTime   string  `json:"endTime" validate:"required"`
		Days      []int32 `json:"days" validate:"omitempty,dive,gte=1,lte=7"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	template := &domain.ShiftTemplate{
		CompanyID: companyID(r),
		Name:      req.Name,
		Position:  req.Position,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Days:      req.Days,
	}

	if err := utils.ValidateShiftTemplate(template); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateShiftTemplate(r.Context(), template); err != nil {
		h.shiftTemplateStoreError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift template created", template)
}

func (h *Handler) GetShiftTemplate(w http.ResponseWriter, r *http.Request) {
	template := r.Context().Value(ShiftTemplateCtx).(*domain.ShiftTemplate)
	h.successResponse(w, r, "fetched shift template", template)
}

func (h *Handler) UpdateShiftTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      *string  `json:"name" validate:"omitempty,min=1"`
		Position  *string  `json:"position"`
		StartTime *string  `json:"startTime"`
		EndTime   *string  `json:"endTime"`
		Days      *[]int32 `json:"days" validate:"omitempty,dive,gte=1,lte=7"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	template := r.Context().Value(ShiftTemplateCtx).(*domain.ShiftTemplate)

	if req.Name != nil {
		template.Name = *req.Name
	}
	if req.Position != nil {
		template.Position = *req.Position
	}
	if req.StartTime != nil {
		template.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		template.EndTime = *req.EndTime
	}
	if req.Days != nil {
		template.Days = *req.Days
	}

	if err := utils.ValidateShiftTemplate(template); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateShiftTemplate(r.Context(), template); err != nil {
		h.shiftTemplateStoreError(w, r, err)
		return
	}

	h.successResponse(w, r, "shift template updated", template)
}

func (h *Handler) DeleteShiftTemplate(w http.ResponseWriter, r *http.Request) {
	template := r.Context().Value(ShiftTemplateCtx).(*domain.ShiftTemplate)

	if err := h.repository.DeleteShiftTemplate(r.Context(), template.CompanyID, template.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "shift template not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "shift template deleted", nil)
}
