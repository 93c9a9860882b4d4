package condition

import (
	"context"
	"time"

	"tempo/internal/window"
)

// minResolution is what a child without the Estimator capability
// contributes to a conjunction's estimate. It must stay positive so a
// degenerate all-zero maximum cannot mask a real temporal constraint.
const minResolution = time.Microsecond

type anyCondition struct {
	children []Condition
}

// Any returns the disjunction of the given conditions: true iff at least
// one child is true. Children that are themselves Any composites are
// absorbed in order, so repeated combination never nests. With no
// arguments the disjunction identity AlwaysFalse is returned.
func Any(conds ...Condition) Condition {
	if len(conds) == 0 {
		return AlwaysFalse()
	}
	children := make([]Condition, 0, len(conds))
	for _, c := range conds {
		if a, ok := c.(*anyCondition); ok {
			children = append(children, a.children...)
			continue
		}
		children = append(children, c)
	}
	return &anyCondition{children: children}
}

// Evaluate short-circuits at the first true child. Later children may be
// expensive or legitimately unable to evaluate; once truth is established
// they are never reached.
func (a *anyCondition) Evaluate(ctx context.Context) (bool, error) {
	for _, c := range a.children {
		ok, err := c.Evaluate(ctx)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// EstimateNextChange returns the minimum over the children: the soonest
// any single branch might change warrants re-checking the disjunction
func (a *anyCondition) EstimateNextChange(now time.Time) time.Duration {
	var min time.Duration
	for i, c := range a.children {
		var d time.Duration
		if e, ok := estimatorOf(c); ok {
			d = e.EstimateNextChange(now)
		}
		if i == 0 || d < min {
			min = d
		}
	}
	return min
}

// Cycle returns the union of the children's windows when every child is
// temporal; otherwise the aggregate cannot be determined and the
// unbounded window is returned.
func (a *anyCondition) Cycle() window.Window {
	windows := make([]window.Window, 0, len(a.children))
	for _, c := range a.children {
		t, ok := c.(Temporal)
		if !ok {
			return window.Always()
		}
		windows = append(windows, t.Cycle())
	}
	return window.Union(windows...)
}

type allCondition struct {
	children []Condition
}

// All returns the conjunction of the given conditions: true iff every
// child is true. Flattening mirrors Any. With no arguments the
// conjunction identity AlwaysTrue is returned.
func All(conds ...Condition) Condition {
	if len(conds) == 0 {
		return AlwaysTrue()
	}
	children := make([]Condition, 0, len(conds))
	for _, c := range conds {
		if a, ok := c.(*allCondition); ok {
			children = append(children, a.children...)
			continue
		}
		children = append(children, c)
	}
	return &allCondition{children: children}
}

// Evaluate short-circuits at the first false child
func (a *allCondition) Evaluate(ctx context.Context) (bool, error) {
	for _, c := range a.children {
		ok, err := c.Evaluate(ctx)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// EstimateNextChange returns the maximum over the children: the
// conjunction cannot become newly true before every branch individually
// could
func (a *allCondition) EstimateNextChange(now time.Time) time.Duration {
	var max time.Duration
	for _, c := range a.children {
		d := minResolution
		if e, ok := estimatorOf(c); ok {
			d = e.EstimateNextChange(now)
		}
		if d > max {
			max = d
		}
	}
	return max
}

// Cycle intersects all children's windows. Unlike Any, determinability is
// not required per child: intersecting with the unbounded window is the
// identity operation.
func (a *allCondition) Cycle() window.Window {
	windows := make([]window.Window, 0, len(a.children))
	for _, c := range a.children {
		windows = append(windows, Cycle(c))
	}
	return window.Intersect(windows...)
}

type notCondition struct {
	child Condition
}

// Not returns the boolean complement of c. Negating a negation returns
// the original wrapped condition rather than a double wrapper.
func Not(c Condition) Condition {
	if n, ok := c.(*notCondition); ok {
		return n.child
	}
	return &notCondition{child: c}
}

func (n *notCondition) Evaluate(ctx context.Context) (bool, error) {
	ok, err := n.child.Evaluate(ctx)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// Unwrap exposes the wrapped condition. Not is a transparent proxy for
// every capability it does not invert explicitly.
func (n *notCondition) Unwrap() Condition {
	return n.child
}

// Cycle returns the complement of the child's window when the child is
// temporal; otherwise unbounded
func (n *notCondition) Cycle() window.Window {
	if t, ok := n.child.(Temporal); ok {
		return t.Cycle().Complement()
	}
	return window.Always()
}
