package window

import "time"

// farFuture is the end bound reported for occurrences with no real end.
var farFuture = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

// Span is one concrete occurrence of a window: [Start, End)
type Span struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the span
func (s Span) Contains(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.End)
}

// Duration returns the length of the span
func (s Span) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Window represents a (possibly recurring, possibly unbounded) set of
// instants. Implementations are immutable and safe for concurrent use.
type Window interface {
	// Contains reports whether t falls inside the window
	Contains(t time.Time) bool
	// Complement returns the window covering every instant this one does not
	Complement() Window
	// RollForward returns the occurrence of the window at or after t.
	// The returned span's Start is at most t when t is already inside the
	// window. ok is false when no further occurrence can be found.
	RollForward(t time.Time) (Span, bool)
}

type always struct{}

// Always returns the unbounded window: valid at any instant. It is the
// identity result for windows that cannot be determined.
func Always() Window {
	return always{}
}

func (always) Contains(time.Time) bool {
	return true
}

func (always) Complement() Window {
	return never{}
}

func (always) RollForward(t time.Time) (Span, bool) {
	return Span{Start: t, End: farFuture}, true
}

type never struct{}

// Never returns the empty window
func Never() Window {
	return never{}
}

func (never) Contains(time.Time) bool {
	return false
}

func (never) Complement() Window {
	return always{}
}

func (never) RollForward(time.Time) (Span, bool) {
	return Span{}, false
}

// IsAlways reports whether w is the unbounded window
func IsAlways(w Window) bool {
	_, ok := w.(always)
	return ok
}
