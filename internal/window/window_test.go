package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday, 2026-03-04 12:00 UTC
var noon = time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

func TestAlwaysAndNever(t *testing.T) {
	assert.True(t, Always().Contains(noon))
	assert.False(t, Never().Contains(noon))

	assert.False(t, Always().Complement().Contains(noon))
	assert.True(t, Never().Complement().Contains(noon))

	span, ok := Always().RollForward(noon)
	require.True(t, ok)
	assert.Equal(t, noon, span.Start)

	_, ok = Never().RollForward(noon)
	assert.False(t, ok)
}

func TestDailyValidation(t *testing.T) {
	_, err := NewDaily(24, 0, 17, 0, time.UTC)
	assert.ErrorIs(t, err, ErrInvalidTimeOfDay)

	_, err = NewDaily(8, 60, 17, 0, time.UTC)
	assert.ErrorIs(t, err, ErrInvalidTimeOfDay)

	_, err = NewDaily(8, 0, 8, 0, time.UTC)
	assert.ErrorIs(t, err, ErrEmptyWindow)
}

func TestDailyContains(t *testing.T) {
	office, err := NewDaily(8, 0, 17, 0, time.UTC)
	require.NoError(t, err)

	assert.True(t, office.Contains(noon))
	assert.True(t, office.Contains(time.Date(2026, 3, 4, 8, 0, 0, 0, time.UTC)))
	assert.False(t, office.Contains(time.Date(2026, 3, 4, 17, 0, 0, 0, time.UTC)))
	assert.False(t, office.Contains(time.Date(2026, 3, 4, 7, 59, 0, 0, time.UTC)))
}

func TestDailyContainsOvernight(t *testing.T) {
	night, err := NewDaily(22, 0, 6, 0, time.UTC)
	require.NoError(t, err)

	assert.True(t, night.Contains(time.Date(2026, 3, 4, 23, 30, 0, 0, time.UTC)))
	assert.True(t, night.Contains(time.Date(2026, 3, 4, 5, 0, 0, 0, time.UTC)))
	assert.False(t, night.Contains(noon))
	assert.False(t, night.Contains(time.Date(2026, 3, 4, 6, 0, 0, 0, time.UTC)))
}

func TestDailyContainsTimezone(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// 12:00 UTC on 2026-03-04 is 13:00 in Berlin (CET)
	office, err := NewDaily(8, 0, 13, 0, berlin)
	require.NoError(t, err)
	assert.False(t, office.Contains(noon))

	office, err = NewDaily(8, 0, 14, 0, berlin)
	require.NoError(t, err)
	assert.True(t, office.Contains(noon))
}

func TestDailyRollForward(t *testing.T) {
	office, err := NewDaily(8, 0, 17, 0, time.UTC)
	require.NoError(t, err)

	// Inside: current occurrence, left edge in the past
	span, ok := office.RollForward(noon)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 4, 8, 0, 0, 0, time.UTC), span.Start)
	assert.Equal(t, time.Date(2026, 3, 4, 17, 0, 0, 0, time.UTC), span.End)

	// Before today's occurrence
	span, ok = office.RollForward(time.Date(2026, 3, 4, 6, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 4, 8, 0, 0, 0, time.UTC), span.Start)

	// After: next occurrence tomorrow
	span, ok = office.RollForward(time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC), span.Start)
}

func TestDailyRollForwardOvernight(t *testing.T) {
	night, err := NewDaily(22, 0, 6, 0, time.UTC)
	require.NoError(t, err)

	// Evening half: occurrence started today, ends tomorrow morning
	span, ok := night.RollForward(time.Date(2026, 3, 4, 23, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 4, 22, 0, 0, 0, time.UTC), span.Start)
	assert.Equal(t, time.Date(2026, 3, 5, 6, 0, 0, 0, time.UTC), span.End)

	// Morning half: occurrence started yesterday
	span, ok = night.RollForward(time.Date(2026, 3, 4, 5, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 3, 22, 0, 0, 0, time.UTC), span.Start)
	assert.Equal(t, time.Date(2026, 3, 4, 6, 0, 0, 0, time.UTC), span.End)

	// Daytime gap: next occurrence starts tonight
	span, ok = night.RollForward(noon)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 4, 22, 0, 0, 0, time.UTC), span.Start)
}

func TestDailyComplement(t *testing.T) {
	office, err := NewDaily(8, 0, 17, 0, time.UTC)
	require.NoError(t, err)

	offHours := office.Complement()
	assert.False(t, offHours.Contains(noon))
	assert.True(t, offHours.Contains(time.Date(2026, 3, 4, 20, 0, 0, 0, time.UTC)))

	// The off-hours gap after noon opens at 17:00 and lasts until 08:00
	span, ok := offHours.RollForward(noon)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 4, 17, 0, 0, 0, time.UTC), span.Start)
	assert.Equal(t, time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC), span.End)
}

func TestWeeklyValidation(t *testing.T) {
	_, err := NewWeekly(nil, 9, 0, time.Hour, time.UTC)
	assert.ErrorIs(t, err, ErrNoWeekdays)

	_, err = NewWeekly([]time.Weekday{time.Monday}, 9, 0, 0, time.UTC)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = NewWeekly([]time.Weekday{time.Monday}, 25, 0, time.Hour, time.UTC)
	assert.ErrorIs(t, err, ErrInvalidTimeOfDay)
}

func TestWeeklyContains(t *testing.T) {
	// Wednesdays 09:00-17:00
	workday, err := NewWeekly([]time.Weekday{time.Wednesday}, 9, 0, 8*time.Hour, time.UTC)
	require.NoError(t, err)

	assert.True(t, workday.Contains(noon)) // noon is a Wednesday
	assert.False(t, workday.Contains(noon.AddDate(0, 0, 1)))
	assert.False(t, workday.Contains(time.Date(2026, 3, 4, 8, 0, 0, 0, time.UTC)))
	assert.False(t, workday.Contains(time.Date(2026, 3, 4, 17, 0, 0, 0, time.UTC)))
}

func TestWeeklyRollForward(t *testing.T) {
	workday, err := NewWeekly([]time.Weekday{time.Wednesday}, 9, 0, 8*time.Hour, time.UTC)
	require.NoError(t, err)

	// Monday noon rolls to Wednesday 09:00
	monday := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	span, ok := workday.RollForward(monday)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC), span.Start)
	assert.Equal(t, time.Date(2026, 3, 4, 17, 0, 0, 0, time.UTC), span.End)

	// Inside an occurrence returns the current one
	span, ok = workday.RollForward(noon)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC), span.Start)
}

func TestWeeklyComplement(t *testing.T) {
	workday, err := NewWeekly([]time.Weekday{time.Wednesday}, 9, 0, 8*time.Hour, time.UTC)
	require.NoError(t, err)

	gaps := workday.Complement()
	assert.False(t, gaps.Contains(noon))
	assert.True(t, gaps.Contains(noon.AddDate(0, 0, 1)))

	// Double complement collapses to the original window
	assert.Same(t, workday, gaps.Complement().(*Weekly))
}

func TestUnionContains(t *testing.T) {
	morning, err := NewDaily(8, 0, 10, 0, time.UTC)
	require.NoError(t, err)
	evening, err := NewDaily(18, 0, 20, 0, time.UTC)
	require.NoError(t, err)

	both := Union(morning, evening)
	assert.True(t, both.Contains(time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)))
	assert.True(t, both.Contains(time.Date(2026, 3, 4, 19, 0, 0, 0, time.UTC)))
	assert.False(t, both.Contains(noon))
}

func TestUnionRollForward(t *testing.T) {
	afternoon, err := NewDaily(13, 0, 14, 0, time.UTC)
	require.NoError(t, err)
	evening, err := NewDaily(15, 0, 16, 0, time.UTC)
	require.NoError(t, err)

	both := Union(afternoon, evening)
	span, ok := both.RollForward(noon)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 4, 13, 0, 0, 0, time.UTC), span.Start)
	assert.Equal(t, time.Date(2026, 3, 4, 14, 0, 0, 0, time.UTC), span.End)
}

func TestUnionMergesOverlap(t *testing.T) {
	first, err := NewDaily(13, 0, 15, 0, time.UTC)
	require.NoError(t, err)
	second, err := NewDaily(14, 0, 16, 0, time.UTC)
	require.NoError(t, err)

	span, ok := Union(first, second).RollForward(noon)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 4, 13, 0, 0, 0, time.UTC), span.Start)
	assert.Equal(t, time.Date(2026, 3, 4, 16, 0, 0, 0, time.UTC), span.End)
}

func TestUnionIdentities(t *testing.T) {
	daily, err := NewDaily(8, 0, 17, 0, time.UTC)
	require.NoError(t, err)

	assert.True(t, IsAlways(Union(daily, Always())))
	assert.Equal(t, daily, Union(daily, Never()))
	assert.Equal(t, Never(), Union())
}

func TestIntersectContains(t *testing.T) {
	office, err := NewDaily(8, 0, 17, 0, time.UTC)
	require.NoError(t, err)
	wednesday, err := NewWeekly([]time.Weekday{time.Wednesday}, 0, 0, 24*time.Hour, time.UTC)
	require.NoError(t, err)

	both := Intersect(office, wednesday)
	assert.True(t, both.Contains(noon))
	assert.False(t, both.Contains(noon.AddDate(0, 0, 1)))
	assert.False(t, both.Contains(time.Date(2026, 3, 4, 20, 0, 0, 0, time.UTC)))
}

func TestIntersectRollForward(t *testing.T) {
	office, err := NewDaily(9, 0, 17, 0, time.UTC)
	require.NoError(t, err)
	afternoon, err := NewDaily(13, 0, 20, 0, time.UTC)
	require.NoError(t, err)

	span, ok := Intersect(office, afternoon).RollForward(noon)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 4, 13, 0, 0, 0, time.UTC), span.Start)
	assert.Equal(t, time.Date(2026, 3, 4, 17, 0, 0, 0, time.UTC), span.End)
}

func TestIntersectAcrossDays(t *testing.T) {
	morning, err := NewDaily(8, 0, 10, 0, time.UTC)
	require.NoError(t, err)
	saturday, err := NewWeekly([]time.Weekday{time.Saturday}, 0, 0, 24*time.Hour, time.UTC)
	require.NoError(t, err)

	// From Wednesday noon the next Saturday-morning slot is 2026-03-07
	span, ok := Intersect(morning, saturday).RollForward(noon)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 7, 8, 0, 0, 0, time.UTC), span.Start)
	assert.Equal(t, time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC), span.End)
}

func TestIntersectIdentities(t *testing.T) {
	daily, err := NewDaily(8, 0, 17, 0, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, daily, Intersect(daily, Always()))
	assert.Equal(t, Never(), Intersect(daily, Never()))
	assert.True(t, IsAlways(Intersect()))
}
