package domain

import "time"

// Range is inclusive on both ends.
type Range struct {
	Start time.Time `json:"rangeStart"`
	End   time.Time `json:"rangeEnd"`
}

func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Overlaps reports whether the half open interval [start, end) shares at
// least one instant with r.
func (r Range) Overlaps(start, end time.Time) bool {
	return !start.After(r.End) && end.After(r.Start)
}
