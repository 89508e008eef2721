package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/suggestion"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/utils"
)

const mailTimeLayout = "Mon 02 Jan 2006 15:04 MST"

// allocationError answers the client errors of an auto-assign run and
// reports whether err was one of them.
func (h *Handler) allocationError(w http.ResponseWriter, r *http.Request, err error) bool {
	var exhausted *scheduler.ExhaustedError
	switch {
	case errors.As(err, &exhausted):
		h.errorResponse(w, r, "cannot auto-assign with current roster: "+exhausted.Error())
	case errors.Is(err, scheduler.ErrInsufficientWorkers):
		h.errorResponse(w, r, "cannot auto-assign with current roster: no active workers")
	case errors.Is(err, scheduler.ErrInvalidRange):
		h.errorResponse(w, r, "range end must not be before range start")
	case errors.Is(err, scheduler.ErrInvalidTemplate):
		h.errorResponse(w, r, err.Error())
	case errors.Is(err, suggestion.ErrConcurrentProposal):
		h.errorResponse(w, r, "suggestions are being updated by another request, please retry")
	default:
		return false
	}
	return true
}

func (h *Handler) AutoAssign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RangeStart string `json:"rangeStart" validate:"required"`
		RangeEnd   string `json:"rangeEnd" validate:"required"`
		Overwrite  bool   `json:"overwrite"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	rng, err := utils.ParseRange(req.RangeStart, req.RangeEnd)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	suggestions, err := h.suggestions.Generate(r.Context(), companyID(r), rng, req.Overwrite)
	if err != nil {
		if !h.allocationError(w, r, err) {
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "suggestions generated", suggestions)
}

func (h *Handler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.suggestions.List(r.Context(), companyID(r))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "fetched suggestions", suggestions)
}

func (h *Handler) AcceptSuggestions(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.suggestions.Accept(r.Context(), companyID(r))
	if err != nil {
		if !h.allocationError(w, r, err) {
			h.internalServerError(w, r, err)
		}
		return
	}

	h.notifyAssignedWorkers(r.Context(), companyID(r), shifts)

	h.successResponse(w, r, "suggestions accepted", shifts)
}

func (h *Handler) DeclineSuggestions(w http.ResponseWriter, r *http.Request) {
	n, err := h.suggestions.Decline(r.Context(), companyID(r))
	if err != nil {
		if !h.allocationError(w, r, err) {
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "suggestions declined", map[string]int64{"deleted": n})
}

// notifyAssignedWorkers queues one shifts_assigned mail per worker. The
// shifts are already committed, so failures are only logged.
func (h *Handler) notifyAssignedWorkers(ctx context.Context, companyID uuid.UUID, shifts []*domain.WorkerShift) {
	if len(shifts) == 0 {
		return
	}

	users, err := h.repository.GetUsersByCompanyID(ctx, companyID)
	if err != nil {
		slog.Error("failed to load workers for assignment mails", "company", companyID, "error", err)
		return
	}
	templates, err := h.repository.GetShiftTemplatesByCompanyID(ctx, companyID)
	if err != nil {
		slog.Error("failed to load shift templates for assignment mails", "company", companyID, "error", err)
		return
	}

	for _, mail := range assignmentMails(users, templates, shifts) {
		if err := h.mailer.Publish(ctx, mail); err != nil {
			slog.Error("failed to queue assignment mail", "company", companyID, "to", mail.To, "error", err)
		}
	}
}

// assignmentMails groups shifts by worker, in order of each worker's first
// shift.
func assignmentMails(users []*domain.User, templates []*domain.ShiftTemplate, shifts []*domain.WorkerShift) []domain.MailMessage {
	usersByID := make(map[uuid.UUID]*domain.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}
	templateNames := make(map[uuid.UUID]string, len(templates))
	for _, t := range templates {
		templateNames[t.ID] = t.Name
	}

	var order []uuid.UUID
	assigned := make(map[uuid.UUID][]domain.AssignedShift)
	for _, shift := range shifts {
		if _, ok := usersByID[shift.WorkerID]; !ok {
			continue
		}
		if _, seen := assigned[shift.WorkerID]; !seen {
			order = append(order, shift.WorkerID)
		}
		assigned[shift.WorkerID] = append(assigned[shift.WorkerID], domain.AssignedShift{
			TemplateName: templateNames[shift.TemplateID.UUID],
			Start:        shift.Start.Format(mailTimeLayout),
			End:          shift.End.Format(mailTimeLayout),
		})
	}

	mails := make([]domain.MailMessage, 0, len(order))
	for _, workerID := range order {
		worker := usersByID[workerID]
		mails = append(mails, domain.MailMessage{
			Type: domain.MailTypeShiftsAssigned,
			To:   worker.Email,
			Data: domain.ShiftsAssignedMailData{
				FullName: worker.FullName(),
				Shifts:   assigned[workerID],
			},
		})
	}

	return mails
}
