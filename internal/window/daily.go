package window

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidTimeOfDay = errors.New("invalid time of day")
	ErrEmptyWindow      = errors.New("window start and end must differ")
)

// Daily is a recurring time-of-day range in a fixed timezone.
// Overnight ranges (start after end, e.g. 22:00 to 06:00) wrap midnight.
type Daily struct {
	startMin int // minutes since midnight
	endMin   int
	loc      *time.Location
}

// NewDaily creates a daily window covering [start, end) each day.
// If loc is nil, UTC is used.
func NewDaily(startHour, startMinute, endHour, endMinute int, loc *time.Location) (*Daily, error) {
	if err := validateTimeOfDay(startHour, startMinute); err != nil {
		return nil, err
	}
	if err := validateTimeOfDay(endHour, endMinute); err != nil {
		return nil, err
	}
	startMin := startHour*60 + startMinute
	endMin := endHour*60 + endMinute
	if startMin == endMin {
		return nil, ErrEmptyWindow
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Daily{startMin: startMin, endMin: endMin, loc: loc}, nil
}

func validateTimeOfDay(hour, minute int) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("%w: %02d:%02d", ErrInvalidTimeOfDay, hour, minute)
	}
	return nil
}

// Contains reports whether t falls inside the daily range
func (d *Daily) Contains(t time.Time) bool {
	localTime := t.In(d.loc)
	currentMin := localTime.Hour()*60 + localTime.Minute()

	if d.startMin > d.endMin {
		// Overnight range (e.g., 22:00 to 06:00)
		return currentMin >= d.startMin || currentMin < d.endMin
	}
	return currentMin >= d.startMin && currentMin < d.endMin
}

// Complement returns the daily window covering the rest of the day.
// The complement of an overnight range is a same-day range and vice versa.
func (d *Daily) Complement() Window {
	return &Daily{startMin: d.endMin, endMin: d.startMin, loc: d.loc}
}

// RollForward returns the occurrence of the range at or after t
func (d *Daily) RollForward(t time.Time) (Span, bool) {
	localTime := t.In(d.loc)
	currentMin := localTime.Hour()*60 + localTime.Minute()

	if d.startMin > d.endMin {
		// Overnight: each occurrence runs from start on day N to end on day N+1
		switch {
		case currentMin >= d.startMin:
			// Inside the evening half of the current occurrence
			return Span{
				Start: d.atMinute(localTime, d.startMin, 0),
				End:   d.atMinute(localTime, d.endMin, 1),
			}, true
		case currentMin < d.endMin:
			// Inside the morning half, occurrence started yesterday
			return Span{
				Start: d.atMinute(localTime, d.startMin, -1),
				End:   d.atMinute(localTime, d.endMin, 0),
			}, true
		default:
			// Between end and start: next occurrence begins tonight
			return Span{
				Start: d.atMinute(localTime, d.startMin, 0),
				End:   d.atMinute(localTime, d.endMin, 1),
			}, true
		}
	}

	if currentMin < d.endMin {
		// Today's occurrence has not finished yet
		return Span{
			Start: d.atMinute(localTime, d.startMin, 0),
			End:   d.atMinute(localTime, d.endMin, 0),
		}, true
	}
	// Next occurrence is tomorrow
	return Span{
		Start: d.atMinute(localTime, d.startMin, 1),
		End:   d.atMinute(localTime, d.endMin, 1),
	}, true
}

// atMinute builds the instant at the given minutes-since-midnight on the
// day of ref shifted by dayOffset days
func (d *Daily) atMinute(ref time.Time, min, dayOffset int) time.Time {
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), min/60, min%60, 0, 0, d.loc)
	if dayOffset != 0 {
		day = day.AddDate(0, 0, dayOffset)
	}
	return day
}
