package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    Clock
		wantErr bool
	}{
		{in: "09:00", want: Clock{Hour: 9}},
		{in: "9:05", want: Clock{Hour: 9, Minute: 5}},
		{in: "23:59:59", want: Clock{Hour: 23, Minute: 59}},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "12:5", wantErr: true},
		{in: "12:00:61", wantErr: true},
		{in: "12:00:00:00", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWindow(t *testing.T) {
	template := newTemplate(template1, "09:30", "17:45:10", everyDay)

	start, end, err := Window(template, at(2025, 1, 6, 23, 0))
	require.NoError(t, err)
	assert.Equal(t, at(2025, 1, 6, 9, 30), start)
	assert.Equal(t, at(2025, 1, 6, 17, 45), end)

	_, _, err = Window(newTemplate(template1, "17:00", "09:00", everyDay), at(2025, 1, 6, 0, 0))
	assert.ErrorIs(t, err, ErrInvalidTemplate)
}

func TestWindow_MatchesOccurrences(t *testing.T) {
	rng := utcRange("2025-01-06T00:00:00Z", "2025-01-12T23:59:59Z")
	template := newTemplate(template1, "06:15", "14:00", []int32{1, 4})

	for _, occ := range collect(t, rng, []*domain.ShiftTemplate{template}) {
		start, end, err := Window(template, occ.Day)
		require.NoError(t, err)
		assert.Equal(t, start, occ.Start)
		assert.Equal(t, end, occ.End)
	}
}

func TestCoveredDays(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*60*60)

	tests := []struct {
		name string
		rng  domain.Range
		want domain.Range
	}{
		{
			name: "mid day range",
			rng:  utcRange("2025-01-01T12:00:00Z", "2025-01-02T06:00:00Z"),
			want: domain.Range{
				Start: at(2025, 1, 1, 0, 0),
				End:   at(2025, 1, 3, 0, 0).Add(-time.Nanosecond),
			},
		},
		{
			name: "end taken in start location",
			rng: domain.Range{
				Start: time.Date(2025, 1, 1, 8, 0, 0, 0, loc),
				End:   time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC),
			},
			want: domain.Range{
				Start: time.Date(2025, 1, 1, 0, 0, 0, 0, loc),
				End:   time.Date(2025, 1, 3, 0, 0, 0, 0, loc).Add(-time.Nanosecond),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoveredDays(tt.rng)
			assert.True(t, tt.want.Start.Equal(got.Start), "start %s", got.Start)
			assert.True(t, tt.want.End.Equal(got.End), "end %s", got.End)
		})
	}
}

func newYork(t *testing.T) *time.Location {
	t.Helper()

	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("time zone database unavailable: %v", err)
	}
	return ny
}

func TestClockOn_SpringForwardGap(t *testing.T) {
	ny := newYork(t)
	// 02:00 to 03:00 does not exist on 2025-03-09 in New York
	day := time.Date(2025, 3, 9, 0, 0, 0, 0, ny)

	got := Clock{Hour: 2, Minute: 30}.On(day)
	assert.True(t, time.Date(2025, 3, 9, 7, 30, 0, 0, time.UTC).Equal(got), "got %s", got)
	assert.Equal(t, 3, got.Hour())
	assert.Equal(t, 30, got.Minute())

	// wall clocks outside the gap are untouched
	assert.True(t, time.Date(2025, 3, 9, 6, 30, 0, 0, time.UTC).Equal(Clock{Hour: 1, Minute: 30}.On(day)))
	assert.True(t, time.Date(2025, 3, 9, 7, 0, 0, 0, time.UTC).Equal(Clock{Hour: 3}.On(day)))
}

func TestOccurrences_SpringForwardGap(t *testing.T) {
	ny := newYork(t)
	rng := domain.Range{
		Start: time.Date(2025, 3, 8, 0, 0, 0, 0, ny),
		End:   time.Date(2025, 3, 10, 23, 59, 59, 0, ny),
	}
	template := newTemplate(template1, "02:30", "04:00", everyDay)

	occurrences := collect(t, rng, []*domain.ShiftTemplate{template})
	require.Len(t, occurrences, 3)

	for _, occ := range occurrences {
		start, end, err := Window(template, occ.Day)
		require.NoError(t, err)
		assert.True(t, start.Equal(occ.Start), "start on %s", occ.Day)
		assert.True(t, end.Equal(occ.End), "end on %s", occ.Day)
	}

	gap := occurrences[1]
	assert.Equal(t, 9, gap.Day.Day())
	assert.True(t, time.Date(2025, 3, 9, 3, 30, 0, 0, ny).Equal(gap.Start))
	assert.True(t, time.Date(2025, 3, 9, 4, 0, 0, 0, ny).Equal(gap.End))
	assert.Equal(t, 30*time.Minute, gap.End.Sub(gap.Start))
	assert.Equal(t, 90*time.Minute, occurrences[0].End.Sub(occurrences[0].Start))
}

func TestSchedule_RejectsWindowSwallowedByGap(t *testing.T) {
	ny := newYork(t)
	rng := domain.Range{
		Start: time.Date(2025, 3, 9, 0, 0, 0, 0, ny),
		End:   time.Date(2025, 3, 9, 23, 59, 59, 0, ny),
	}
	// 02:10 moves to 03:10 EDT, after the 03:05 end
	template := newTemplate(template1, "02:10", "03:05", everyDay)

	_, err := Allocate(rng, nil, []*domain.ShiftTemplate{template}, newWorkers(worker1), nil)
	assert.ErrorIs(t, err, ErrInvalidTemplate)
	assert.ErrorContains(t, err, "2025-03-09")

	_, _, err = Window(template, rng.Start)
	assert.ErrorIs(t, err, ErrInvalidTemplate)
}
