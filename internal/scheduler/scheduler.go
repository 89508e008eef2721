package scheduler

import (
	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
)

// Scheduler proposes worker assignments for every template occurrence of a
// range. It performs no I/O and keeps no state between runs.
type Scheduler struct {
	parameters *Parameters
	workers    []*domain.User
	templates  []*domain.ShiftTemplate
	existing   []*domain.WorkerShift
}

func New(parameters *Parameters, workers []*domain.User, templates []*domain.ShiftTemplate, existing []*domain.WorkerShift) *Scheduler {
	if parameters == nil {
		parameters = DefaultParameters()
	}

	return &Scheduler{
		parameters: parameters,
		workers:    workers,
		templates:  templates,
		existing:   existing,
	}
}

// Allocate is a shorthand for New(parameters, ...).Schedule(rng).
func Allocate(rng domain.Range, existing []*domain.WorkerShift, templates []*domain.ShiftTemplate, workers []*domain.User, parameters *Parameters) ([]domain.Placeholder, error) {
	return New(parameters, workers, templates, existing).Schedule(rng)
}

// Schedule walks the range day by day and gives every occurrence a worker.
// The whole run fails when an occurrence cannot be staffed; no partial plan
// is ever returned.
func (s *Scheduler) Schedule(rng domain.Range) ([]domain.Placeholder, error) {
	if rng.End.Before(rng.Start) {
		return nil, ErrInvalidRange
	}
	if len(s.workers) == 0 {
		return nil, ErrInsufficientWorkers
	}

	occurrences, err := Occurrences(rng, s.templates)
	if err != nil {
		return nil, err
	}

	committed := indexCommitted(rng, s.existing)

	load := make(map[uuid.UUID]int, len(s.workers))
	for _, worker := range s.workers {
		load[worker.ID] = 0
	}

	placeholders := make([]domain.Placeholder, 0)
	for occ := range occurrences {
		if !occ.Start.Before(occ.End) {
			return nil, emptyWindowError(occ.Template, occ.Day)
		}

		workerID, continued, err := s.choose(occ, committed, load, placeholders)
		if err != nil {
			return nil, err
		}

		placeholders = append(placeholders, domain.Placeholder{
			WorkerID:   workerID,
			TemplateID: occ.Template.ID,
			Start:      occ.Start,
			End:        occ.End,
		})

		if !continued || s.parameters.CountContinuity {
			load[workerID]++
		}
	}

	return placeholders, nil
}

// committedShifts indexes the committed shifts that touch the expanded days
// of one run.
type committedShifts struct {
	byDay    map[date][]*domain.WorkerShift
	byWorker map[uuid.UUID][]*domain.WorkerShift
}

func indexCommitted(rng domain.Range, existing []*domain.WorkerShift) committedShifts {
	loc := rng.Start.Location()
	days := CoveredDays(rng)

	c := committedShifts{
		byDay:    make(map[date][]*domain.WorkerShift),
		byWorker: make(map[uuid.UUID][]*domain.WorkerShift),
	}
	for _, shift := range existing {
		if !days.Overlaps(shift.Start, shift.End) {
			continue
		}
		c.byWorker[shift.WorkerID] = append(c.byWorker[shift.WorkerID], shift)
		// a shift belongs to the day it starts on
		if days.Contains(shift.Start) {
			day := dateOf(shift.Start.In(loc))
			c.byDay[day] = append(c.byDay[day], shift)
		}
	}
	return c
}
