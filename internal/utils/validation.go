package utils

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/scheduler"
)

// NormalizeClock parses "HH:MM" or "HH:MM:SS" and returns "HH:MM".
func NormalizeClock(s string) (string, error) {
	c, err := scheduler.ParseClock(s)
	if err != nil {
		return "", fmt.Errorf("invalid time of day %q, expected HH:MM", s)
	}
	return c.String(), nil
}

// ValidateShiftTemplate checks the template's clock times and days and
// normalizes them in place: times become "HH:MM" and days are deduplicated
// and sorted.
func ValidateShiftTemplate(t *domain.ShiftTemplate) error {
	start, err := NormalizeClock(t.StartTime)
	if err != nil {
		return fmt.Errorf("start time: %w", err)
	}
	end, err := NormalizeClock(t.EndTime)
	if err != nil {
		return fmt.Errorf("end time: %w", err)
	}
	// zero padded "HH:MM" strings compare like the times they encode
	if end <= start {
		return errors.New("end time must be after start time")
	}

	days := make([]int32, 0, len(t.Days))
	for _, day := range t.Days {
		if day < 1 || day > 7 {
			return fmt.Errorf("day %d is out of range, expected 1 (Monday) to 7 (Sunday)", day)
		}
		if !slices.Contains(days, day) {
			days = append(days, day)
		}
	}
	slices.Sort(days)

	t.StartTime = start
	t.EndTime = end
	t.Days = days

	return nil
}

// ParseRange parses two RFC 3339 timestamps into a range.
func ParseRange(start, end string) (domain.Range, error) {
	rangeStart, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return domain.Range{}, fmt.Errorf("invalid range start %q", start)
	}
	rangeEnd, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return domain.Range{}, fmt.Errorf("invalid range end %q", end)
	}
	if rangeEnd.Before(rangeStart) {
		return domain.Range{}, errors.New("range end must not be before range start")
	}

	return domain.Range{Start: rangeStart, End: rangeEnd}, nil
}

// ValidateShiftWindow checks a single shift's bounds.
func ValidateShiftWindow(start, end time.Time) error {
	if !end.After(start) {
		return errors.New("shift end must be after shift start")
	}
	return nil
}
