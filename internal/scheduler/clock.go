package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
)

// Clock is a wall clock time of day. Seconds are always dropped.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock accepts "15:04" and "15:04:05". A single digit hour is allowed.
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return Clock{}, fmt.Errorf("malformed time of day %q", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return Clock{}, fmt.Errorf("malformed hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 2 || minute < 0 || minute > 59 {
		return Clock{}, fmt.Errorf("malformed minute in %q", s)
	}
	if len(parts) == 3 {
		second, err := strconv.Atoi(parts[2])
		if err != nil || len(parts[2]) != 2 || second < 0 || second > 59 {
			return Clock{}, fmt.Errorf("malformed second in %q", s)
		}
	}

	return Clock{Hour: hour, Minute: minute}, nil
}

// On places c on the calendar day of day, in day's location. A wall clock
// skipped by a forward transition, such as 02:30 when New York springs
// forward, takes the offset in effect before the gap and so lands after it
// (03:30 EDT), as RFC 5545 does for nonexistent local times.
func (c Clock) On(day time.Time) time.Time {
	y, m, d := day.Date()
	loc := day.Location()

	t := time.Date(y, m, d, c.Hour, c.Minute, 0, 0, loc)
	if t.Hour() == c.Hour && t.Minute() == c.Minute {
		return t
	}

	_, before := t.Add(-24 * time.Hour).Zone()
	wall := time.Date(y, m, d, c.Hour, c.Minute, 0, 0, time.UTC)
	return wall.Add(-time.Duration(before) * time.Second).In(loc)
}

func (c Clock) Before(o Clock) bool {
	return c.Hour < o.Hour || (c.Hour == o.Hour && c.Minute < o.Minute)
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// templateClocks parses the clock times of t. The end must be after the start
// on the same day.
func templateClocks(t *domain.ShiftTemplate) (start, end Clock, err error) {
	start, err = ParseClock(t.StartTime)
	if err != nil {
		return Clock{}, Clock{}, fmt.Errorf("%w %s: %v", ErrInvalidTemplate, t.ID, err)
	}
	end, err = ParseClock(t.EndTime)
	if err != nil {
		return Clock{}, Clock{}, fmt.Errorf("%w %s: %v", ErrInvalidTemplate, t.ID, err)
	}
	if !start.Before(end) {
		return Clock{}, Clock{}, fmt.Errorf("%w %s: end time %s is not after start time %s", ErrInvalidTemplate, t.ID, t.EndTime, t.StartTime)
	}
	return start, end, nil
}

// Window returns the start and end instants of t on the calendar day of day.
func Window(t *domain.ShiftTemplate, day time.Time) (start, end time.Time, err error) {
	from, to, err := templateClocks(t)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	start, end = from.On(day), to.On(day)
	if !start.Before(end) {
		return time.Time{}, time.Time{}, emptyWindowError(t, day)
	}
	return start, end, nil
}

func emptyWindowError(t *domain.ShiftTemplate, day time.Time) error {
	return fmt.Errorf("%w %s: %s to %s is empty on %s after the clock change", ErrInvalidTemplate, t.ID, t.StartTime, t.EndTime, day.Format(time.DateOnly))
}

// CoveredDays widens rng to the whole calendar days the scheduler expands,
// from midnight of rng.Start's day to the last instant of rng.End's day,
// both taken in rng.Start's location.
func CoveredDays(rng domain.Range) domain.Range {
	loc := rng.Start.Location()
	last := startOfDay(rng.End.In(loc))
	return domain.Range{
		Start: startOfDay(rng.Start),
		End:   time.Date(last.Year(), last.Month(), last.Day()+1, 0, 0, 0, 0, loc).Add(-time.Nanosecond),
	}
}
