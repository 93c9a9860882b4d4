// Package condition implements the boolean predicates the scheduler polls
// to decide whether a task should fire. Conditions are immutable,
// side-effect free values; composing them never mutates the operands, so
// the same condition may appear in any number of composites and be
// evaluated concurrently without locking.
package condition

import (
	"context"
	"errors"
	"time"

	"tempo/internal/window"
)

// ErrEvaluation is wrapped by every error a condition returns when it
// cannot determine its truth value. A condition never reports a silent
// false in place of a failure.
var ErrEvaluation = errors.New("condition evaluation failed")

// Condition is a boolean predicate over the current time and any state
// its implementation probes
type Condition interface {
	// Evaluate returns the condition's current truth value. It must not
	// mutate the condition.
	Evaluate(ctx context.Context) (bool, error)
}

// Temporal is the optional capability of conditions whose truth is a pure
// function of time. Cycle answers "when could this condition possibly be
// true?"; schedulers use it to prune tasks outside the planning horizon.
type Temporal interface {
	Condition
	Cycle() window.Window
}

// Estimator is the optional capability of conditions that can bound how
// long a scheduler may safely sleep before their truth value could change
type Estimator interface {
	Condition
	EstimateNextChange(now time.Time) time.Duration
}

// Cycle returns the aggregate window during which c could be true.
// Conditions without temporal structure conservatively report the
// unbounded window.
func Cycle(c Condition) window.Window {
	if t, ok := c.(Temporal); ok {
		return t.Cycle()
	}
	return window.Always()
}

// EstimateNextChange returns a lower bound on how long c's truth value
// will hold. Conditions without the capability report zero: re-check
// immediately. Negation proxies are looked through.
func EstimateNextChange(c Condition, now time.Time) time.Duration {
	if e, ok := estimatorOf(c); ok {
		return e.EstimateNextChange(now)
	}
	return 0
}

// estimatorOf resolves the Estimator capability, unwrapping transparent
// proxies such as Not. The distance to the next possible change is the
// same for a condition and its negation.
func estimatorOf(c Condition) (Estimator, bool) {
	for {
		if e, ok := c.(Estimator); ok {
			return e, true
		}
		u, ok := c.(interface{ Unwrap() Condition })
		if !ok {
			return nil, false
		}
		c = u.Unwrap()
	}
}

type alwaysTrue struct{}

// AlwaysTrue returns the constant true condition, the identity for All
func AlwaysTrue() Condition {
	return alwaysTrue{}
}

func (alwaysTrue) Evaluate(context.Context) (bool, error) {
	return true, nil
}

type alwaysFalse struct{}

// AlwaysFalse returns the constant false condition, the identity for Any
func AlwaysFalse() Condition {
	return alwaysFalse{}
}

func (alwaysFalse) Evaluate(context.Context) (bool, error) {
	return false, nil
}
