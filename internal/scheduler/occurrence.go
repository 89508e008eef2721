package scheduler

import (
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
	"github.com/teambition/rrule-go"
)

var isoWeekdays = map[int32]rrule.Weekday{
	1: rrule.MO,
	2: rrule.TU,
	3: rrule.WE,
	4: rrule.TH,
	5: rrule.FR,
	6: rrule.SA,
	7: rrule.SU,
}

// recurrence is a template prepared for expansion over one range.
type recurrence struct {
	index    int
	template *domain.ShiftTemplate
	rule     *rrule.RRule
	start    Clock
	end      Clock
}

func newRecurrence(index int, t *domain.ShiftTemplate, first, last time.Time) (*recurrence, error) {
	start, end, err := templateClocks(t)
	if err != nil {
		return nil, err
	}

	weekdays := make([]rrule.Weekday, 0, len(t.Days))
	for _, day := range t.Days {
		weekday, ok := isoWeekdays[day]
		if !ok {
			return nil, fmt.Errorf("%w %s: weekday %d is out of 1..7", ErrInvalidTemplate, t.ID, day)
		}
		if !slices.Contains(weekdays, weekday) {
			weekdays = append(weekdays, weekday)
		}
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.DAILY,
		Dtstart:   first,
		Until:     last,
		Byweekday: weekdays,
	})
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrInvalidTemplate, t.ID, err)
	}

	return &recurrence{
		index:    index,
		template: t,
		rule:     rule,
		start:    start,
		end:      end,
	}, nil
}

// cursor walks one recurrence. The rule yields midnights, the clock times
// are placed on the day afterwards so every occurrence agrees with Window.
type cursor struct {
	*recurrence
	next rrule.Next
	head time.Time
	ok   bool
}

func (c *cursor) advance() {
	c.head, c.ok = c.next()
}

func (c *cursor) occurrence() Occurrence {
	day := startOfDay(c.head)
	return Occurrence{
		Day:      day,
		Template: c.template,
		Start:    c.start.On(day),
		End:      c.end.On(day),
	}
}

// Occurrences expands templates over every calendar day of rng, both ends
// included. The sequence is ordered by day, then by the position of the
// template in templates. Templates without days are skipped.
//
// Clock times are taken as wall clock values in rng.Start's location.
func Occurrences(rng domain.Range, templates []*domain.ShiftTemplate) (iter.Seq[Occurrence], error) {
	if rng.End.Before(rng.Start) {
		return nil, ErrInvalidRange
	}

	first := startOfDay(rng.Start)
	last := startOfDay(rng.End.In(rng.Start.Location()))

	recurrences := make([]*recurrence, 0, len(templates))
	for i, t := range templates {
		if len(t.Days) == 0 {
			continue
		}
		r, err := newRecurrence(i, t, first, last)
		if err != nil {
			return nil, err
		}
		recurrences = append(recurrences, r)
	}

	return func(yield func(Occurrence) bool) {
		cursors := make([]*cursor, 0, len(recurrences))
		for _, r := range recurrences {
			c := &cursor{recurrence: r, next: r.rule.Iterator()}
			c.advance()
			cursors = append(cursors, c)
		}

		for {
			// cursors are ordered by template index, so the first cursor
			// holding the earliest day wins ties
			var best *cursor
			for _, c := range cursors {
				if !c.ok {
					continue
				}
				if best == nil || startOfDay(c.head).Before(startOfDay(best.head)) {
					best = c
				}
			}
			if best == nil {
				return
			}

			occ := best.occurrence()
			best.advance()
			if !yield(occ) {
				return
			}
		}
	}, nil
}
