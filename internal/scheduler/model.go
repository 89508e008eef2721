package scheduler

import (
	"time"

	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
)

// ConflictPolicy decides when a worker is considered busy for an occurrence.
type ConflictPolicy string

const (
	// ConflictSameDay blocks a worker who has any committed shift on the
	// occurrence's day, and placeholders contained in the occurrence window.
	ConflictSameDay ConflictPolicy = "same-day"
	// ConflictInterval blocks a worker only when a committed shift or a
	// placeholder actually overlaps the occurrence window.
	ConflictInterval ConflictPolicy = "interval"
)

// Parameters tune a single allocation run.
type Parameters struct {
	ConflictPolicy  ConflictPolicy
	CountContinuity bool // continuity assignments still increment the worker's load
}

func DefaultParameters() *Parameters {
	return &Parameters{
		ConflictPolicy:  ConflictSameDay,
		CountContinuity: true,
	}
}

// Occurrence is one (day, template) pair that needs a worker.
type Occurrence struct {
	Day      time.Time // midnight of the calendar day, in the range's location
	Template *domain.ShiftTemplate
	Start    time.Time
	End      time.Time
}

type date struct {
	year  int
	month time.Month
	day   int
}

func dateOf(t time.Time) date {
	y, m, d := t.Date()
	return date{year: y, month: m, day: d}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
