package condition

import (
	"context"
	"time"

	"tempo/internal/clock"
	"tempo/internal/window"
)

// TimeCondition is true iff "now" falls inside its window. It reads the
// current time through an injectable clock so tests can pin an instant
// without touching the system clock.
type TimeCondition struct {
	win window.Window
	clk clock.Clock
}

// InWindow creates a time condition from an existing window
func InWindow(win window.Window) *TimeCondition {
	return &TimeCondition{win: win, clk: clock.RealClock{}}
}

// Between creates a time condition over a daily time-of-day range
func Between(startHour, startMinute, endHour, endMinute int, loc *time.Location) (*TimeCondition, error) {
	win, err := window.NewDaily(startHour, startMinute, endHour, endMinute, loc)
	if err != nil {
		return nil, err
	}
	return InWindow(win), nil
}

// WithClock returns a copy of the condition reading time from clk
func (t *TimeCondition) WithClock(clk clock.Clock) *TimeCondition {
	return &TimeCondition{win: t.win, clk: clk}
}

// Evaluate reports whether the current time falls inside the window
func (t *TimeCondition) Evaluate(context.Context) (bool, error) {
	return t.win.Contains(t.clk.Now()), nil
}

// Cycle returns the condition's window
func (t *TimeCondition) Cycle() window.Window {
	return t.win
}

// EstimateNextChange returns the distance from now to the left edge of
// the rolled-forward window, clamped at zero when now is already inside
// an occurrence
func (t *TimeCondition) EstimateNextChange(now time.Time) time.Duration {
	s, ok := t.win.RollForward(now)
	if !ok {
		return 0
	}
	d := s.Start.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

var (
	_ Temporal  = (*TimeCondition)(nil)
	_ Estimator = (*TimeCondition)(nil)
)
