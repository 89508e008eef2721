package scheduler

import (
	"bytes"
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
)

// choose picks the worker for occ. continued reports that the worker was
// taken from a committed shift of the same template on the same day.
func (s *Scheduler) choose(occ Occurrence, committed committedShifts, load map[uuid.UUID]int, placeholders []domain.Placeholder) (workerID uuid.UUID, continued bool, err error) {
	dayShifts := committed.byDay[dateOf(occ.Day)]
	for _, shift := range dayShifts {
		if shift.TemplateID.Valid && shift.TemplateID.UUID == occ.Template.ID {
			return shift.WorkerID, true, nil
		}
	}

	candidates := slices.Clone(s.workers)
	slices.SortStableFunc(candidates, func(a, b *domain.User) int {
		if c := cmp.Compare(load[a.ID], load[b.ID]); c != 0 {
			return c
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})

	for _, worker := range candidates {
		if s.hasCommittedConflict(worker.ID, occ, dayShifts, committed.byWorker[worker.ID]) {
			continue
		}
		if s.hasPlaceholderConflict(worker.ID, occ, placeholders) {
			continue
		}
		return worker.ID, false, nil
	}

	return uuid.Nil, false, &ExhaustedError{
		TemplateID:   occ.Template.ID,
		TemplateName: occ.Template.Name,
		Day:          occ.Day,
	}
}

func (s *Scheduler) hasCommittedConflict(workerID uuid.UUID, occ Occurrence, dayShifts, workerShifts []*domain.WorkerShift) bool {
	if s.parameters.ConflictPolicy == ConflictInterval {
		for _, shift := range workerShifts {
			if overlaps(shift.Start, shift.End, occ.Start, occ.End) {
				return true
			}
		}
		return false
	}

	for _, shift := range dayShifts {
		if shift.WorkerID == workerID {
			return true
		}
	}
	return false
}

func (s *Scheduler) hasPlaceholderConflict(workerID uuid.UUID, occ Occurrence, placeholders []domain.Placeholder) bool {
	for _, p := range placeholders {
		if p.WorkerID != workerID {
			continue
		}
		if s.parameters.ConflictPolicy == ConflictInterval {
			if overlaps(p.Start, p.End, occ.Start, occ.End) {
				return true
			}
			continue
		}
		if !p.Start.Before(occ.Start) && !p.End.After(occ.End) {
			return true
		}
	}
	return false
}

// overlaps treats both intervals as half open.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
