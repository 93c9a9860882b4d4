package window

import "time"

// rollForwardLimit bounds the candidate iteration used where no closed
// form exists (intersection and complement roll-forward).
const rollForwardLimit = 64

type complement struct {
	inner Window
}

// complementOf wraps a window in its complement, collapsing double
// complements back to the original
func complementOf(w Window) Window {
	if c, ok := w.(complement); ok {
		return c.inner
	}
	return complement{inner: w}
}

func (c complement) Contains(t time.Time) bool {
	return !c.inner.Contains(t)
}

func (c complement) Complement() Window {
	return c.inner
}

func (c complement) RollForward(t time.Time) (Span, bool) {
	if !c.inner.Contains(t) {
		// Already in a gap: it lasts until the inner window next opens
		s, ok := c.inner.RollForward(t)
		if !ok || !s.Start.After(t) {
			return Span{Start: t, End: farFuture}, true
		}
		return Span{Start: t, End: s.Start}, true
	}

	// Inside the inner window: the gap opens when the current occurrence
	// ends. Back-to-back occurrences are skipped up to the iteration limit.
	cursor := t
	for i := 0; i < rollForwardLimit; i++ {
		cur, ok := c.inner.RollForward(cursor)
		if !ok {
			return Span{}, false
		}
		if !c.inner.Contains(cur.End) {
			next, ok := c.inner.RollForward(cur.End)
			if !ok || !next.Start.After(cur.End) {
				return Span{Start: cur.End, End: farFuture}, true
			}
			return Span{Start: cur.End, End: next.Start}, true
		}
		cursor = cur.End
	}
	return Span{}, false
}

type union struct {
	members []Window
}

// Union returns the window containing every instant at least one member
// contains. Nested unions are absorbed; Never members are dropped.
func Union(ws ...Window) Window {
	members := make([]Window, 0, len(ws))
	for _, w := range ws {
		if IsAlways(w) {
			return Always()
		}
		if _, empty := w.(never); empty {
			continue
		}
		if u, ok := w.(union); ok {
			members = append(members, u.members...)
			continue
		}
		members = append(members, w)
	}
	if len(members) == 0 {
		return Never()
	}
	if len(members) == 1 {
		return members[0]
	}
	return union{members: members}
}

func (u union) Contains(t time.Time) bool {
	for _, w := range u.members {
		if w.Contains(t) {
			return true
		}
	}
	return false
}

func (u union) Complement() Window {
	return complementOf(u)
}

func (u union) RollForward(t time.Time) (Span, bool) {
	var best Span
	found := false
	spans := make([]Span, 0, len(u.members))
	for _, w := range u.members {
		s, ok := w.RollForward(t)
		if !ok {
			continue
		}
		spans = append(spans, s)
		if !found || s.Start.Before(best.Start) {
			best = s
			found = true
		}
	}
	if !found {
		return Span{}, false
	}

	// Merge overlapping member occurrences into one contiguous span
	for i := 0; i < rollForwardLimit; i++ {
		extended := false
		for _, s := range spans {
			if !s.Start.After(best.End) && s.End.After(best.End) {
				best.End = s.End
				extended = true
			}
		}
		if !extended {
			break
		}
	}
	return best, true
}

type intersection struct {
	members []Window
}

// Intersect returns the window containing every instant all members
// contain. Nested intersections are absorbed; Always members are the
// identity and are dropped.
func Intersect(ws ...Window) Window {
	members := make([]Window, 0, len(ws))
	for _, w := range ws {
		if IsAlways(w) {
			continue
		}
		if _, empty := w.(never); empty {
			return Never()
		}
		if in, ok := w.(intersection); ok {
			members = append(members, in.members...)
			continue
		}
		members = append(members, w)
	}
	if len(members) == 0 {
		return Always()
	}
	if len(members) == 1 {
		return members[0]
	}
	return intersection{members: members}
}

func (in intersection) Contains(t time.Time) bool {
	for _, w := range in.members {
		if !w.Contains(t) {
			return false
		}
	}
	return true
}

func (in intersection) Complement() Window {
	return complementOf(in)
}

// RollForward has no closed form for an arbitrary intersection; candidates
// are advanced to the latest member start until every member agrees, up to
// the iteration limit.
func (in intersection) RollForward(t time.Time) (Span, bool) {
	cursor := t
	for i := 0; i < rollForwardLimit; i++ {
		latest := cursor
		earliestEnd := farFuture
		for _, w := range in.members {
			s, ok := w.RollForward(cursor)
			if !ok {
				return Span{}, false
			}
			if s.Start.After(latest) {
				latest = s.Start
			}
			if s.End.Before(earliestEnd) {
				earliestEnd = s.End
			}
		}

		if in.Contains(latest) {
			end := farFuture
			for _, w := range in.members {
				s, ok := w.RollForward(latest)
				if ok && s.End.Before(end) {
					end = s.End
				}
			}
			return Span{Start: latest, End: end}, true
		}

		if latest.After(cursor) {
			cursor = latest
		} else {
			// No member moved the candidate; jump past the occurrence
			// that ends soonest to guarantee progress
			cursor = earliestEnd
		}
	}
	return Span{}, false
}
