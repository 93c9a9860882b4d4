package window

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

var (
	ErrNoWeekdays      = errors.New("weekly window needs at least one weekday")
	ErrInvalidDuration = errors.New("weekly window duration must be positive and at most a week")
)

// weekdayMap translates time.Weekday into the recurrence library's weekdays
var weekdayMap = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// Weekly is a recurring window opening at a fixed time of day on a set of
// weekdays, each occurrence lasting a fixed duration. Occurrences are
// generated by an RRULE-style weekly recurrence.
type Weekly struct {
	rule *rrule.RRule
	dur  time.Duration
	loc  *time.Location
}

// NewWeekly creates a weekly window. Each occurrence starts at
// startHour:startMinute on one of the given weekdays and lasts dur.
// If loc is nil, UTC is used.
func NewWeekly(days []time.Weekday, startHour, startMinute int, dur time.Duration, loc *time.Location) (*Weekly, error) {
	if len(days) == 0 {
		return nil, ErrNoWeekdays
	}
	if dur <= 0 || dur > 7*24*time.Hour {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDuration, dur)
	}
	if err := validateTimeOfDay(startHour, startMinute); err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}

	byweekday := make([]rrule.Weekday, 0, len(days))
	for _, day := range days {
		byweekday = append(byweekday, weekdayMap[day])
	}

	// Any instant well in the past works as the recurrence anchor;
	// Byweekday controls which days actually occur.
	dtstart := time.Date(2000, time.January, 3, startHour, startMinute, 0, 0, loc)
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   dtstart,
		Byweekday: byweekday,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build recurrence rule: %w", err)
	}

	return &Weekly{rule: rule, dur: dur, loc: loc}, nil
}

// Contains reports whether t falls inside an occurrence
func (w *Weekly) Contains(t time.Time) bool {
	prev := w.rule.Before(t, true)
	if prev.IsZero() {
		return false
	}
	return t.Before(prev.Add(w.dur)) && !t.Before(prev)
}

// Complement returns the window covering the gaps between occurrences
func (w *Weekly) Complement() Window {
	return complementOf(w)
}

// RollForward returns the occurrence at or after t
func (w *Weekly) RollForward(t time.Time) (Span, bool) {
	prev := w.rule.Before(t, true)
	if !prev.IsZero() && t.Before(prev.Add(w.dur)) {
		return Span{Start: prev, End: prev.Add(w.dur)}, true
	}
	next := w.rule.After(t, true)
	if next.IsZero() {
		return Span{}, false
	}
	return Span{Start: next, End: next.Add(w.dur)}, true
}
