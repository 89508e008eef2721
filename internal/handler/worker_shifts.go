package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/repository"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/utils"
)

func (h *Handler) rangeFromQuery(r *http.Request) (domain.Range, error) {
	query := r.URL.Query()
	return utils.ParseRange(query.Get("rangeStart"), query.Get("rangeEnd"))
}

// CreateWorkerShift commits one shift for a worker. With a template and no
// explicit window, the template's clock times are applied to the given date.
func (h *Handler) CreateWorkerShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WorkerID   uuid.UUID  `json:"workerID" validate:"required"`
		TemplateID *uuid.UUID `json:"templateID"`
		StartDate  time.Time  `json:"startDate" validate:"required"`
		EndDate    time.Time  `json:"endDate"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	shift := &domain.WorkerShift{
		WorkerID:  req.WorkerID,
		CompanyID: companyID(r),
		Start:     req.StartDate,
		End:       req.EndDate,
	}

	if req.TemplateID != nil {
		template, err := h.repository.GetShiftTemplateByID(r.Context(), shift.CompanyID, *req.TemplateID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "shift template not found")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		shift.TemplateID = uuid.NullUUID{UUID: template.ID, Valid: true}
		shift.Template = template

		if req.EndDate.IsZero() {
			start, end, err := scheduler.Window(template, req.StartDate)
			if err != nil {
				h.badRequest(w, r, err)
				return
			}
			shift.Start, shift.End = start, end
		}
	}

	if err := utils.ValidateShiftWindow(shift.Start, shift.End); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateWorkerShift(r.Context(), shift); err != nil {
		switch {
		case errors.Is(err, repository.ErrShiftOverlap):
			h.errorResponse(w, r, "worker already has a shift in this time window")
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "worker not found")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "shift created", shift)
}

func (h *Handler) GetCompanyShifts(w http.ResponseWriter, r *http.Request) {
	rng, err := h.rangeFromQuery(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	shifts, err := h.repository.GetWorkerShiftsInRange(r.Context(), companyID(r), rng)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "fetched company shifts", shifts)
}

func (h *Handler) ClearShifts(w http.ResponseWriter, r *http.Request) {
	rng, err := h.rangeFromQuery(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	n, err := h.repository.DeleteWorkerShiftsInRange(r.Context(), companyID(r), rng)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "shifts cleared", map[string]int64{"deleted": n})
}
