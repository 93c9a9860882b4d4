// Package parse turns human-readable condition expressions into condition
// values by trying an ordered list of pattern rules. The condition engine
// never inspects the rules; it only receives the parsed conditions.
package parse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"tempo/internal/clock"
	"tempo/internal/condition"
	"tempo/internal/window"
)

var (
	ErrParse          = errors.New("cannot parse condition")
	ErrInvalidPattern = errors.New("invalid condition pattern")
)

// BuildFunc constructs a condition from a rule's submatches. groups[0] is
// the full match, as returned by regexp.FindStringSubmatch.
type BuildFunc func(groups []string) (condition.Condition, error)

type rule struct {
	pattern *regexp.Regexp
	build   BuildFunc
}

// Registry holds an ordered list of (pattern, constructor) rules. The
// first matching rule wins.
type Registry struct {
	mu    sync.RWMutex
	loc   *time.Location
	clk   clock.Clock
	rules []rule
}

// NewRegistry creates a registry with the built-in expression grammar.
// If loc is nil, time expressions are interpreted in the local timezone.
func NewRegistry(loc *time.Location) *Registry {
	return NewRegistryAt(loc, clock.RealClock{})
}

// NewRegistryAt creates a registry whose time conditions read the given
// clock, for evaluating expressions at a pinned instant
func NewRegistryAt(loc *time.Location, clk clock.Clock) *Registry {
	if loc == nil {
		loc = time.Local
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	r := &Registry{loc: loc, clk: clk}
	r.registerBuiltins()
	return r
}

// Register appends a rule to the registry. Rules are tried in
// registration order.
func (r *Registry) Register(pattern string, build BuildFunc) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule{pattern: re, build: build})
	return nil
}

// Parse parses an expression into a condition. A rule matching the whole
// expression wins before operator splitting, since rule text may itself
// contain the keywords ("daily between 08:00 and 17:00"). Top-level "or"
// binds looser than "and"; "not" applies to the rest of its operand.
func (r *Registry) Parse(text string) (condition.Condition, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrParse)
	}

	if cond, ok, err := r.matchRule(text); ok {
		return cond, err
	}

	if parts := splitKeyword(text, " or "); len(parts) > 1 {
		if conds, ok := r.combineOperands(parts, " or "); ok {
			return condition.Any(conds...), nil
		}
	}

	if parts := splitKeyword(text, " and "); len(parts) > 1 {
		if conds, ok := r.combineOperands(parts, " and "); ok {
			return condition.All(conds...), nil
		}
	}

	if rest, ok := cutKeyword(text, "not "); ok {
		child, err := r.Parse(rest)
		if err != nil {
			return nil, err
		}
		return condition.Not(child), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrParse, text)
}

// matchRule tries the whole text against the registered rules. A matched
// rule whose constructor fails still ends the search; the pattern claimed
// the expression.
func (r *Registry) matchRule(text string) (condition.Condition, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rule := range r.rules {
		groups := rule.pattern.FindStringSubmatch(text)
		if groups == nil {
			continue
		}
		cond, err := rule.build(groups)
		return cond, true, err
	}
	return nil, false, nil
}

// combineOperands turns keyword-split segments into operands, re-merging
// adjacent segments when the keyword was part of a rule's own text. The
// split is rejected when the segments collapse back into the whole
// expression or a trailing remainder cannot parse.
func (r *Registry) combineOperands(parts []string, sep string) ([]condition.Condition, bool) {
	conds := make([]condition.Condition, 0, len(parts))
	acc := ""
	for i, part := range parts {
		if acc == "" {
			acc = part
		} else {
			acc += sep + part
		}
		if len(conds) == 0 && i == len(parts)-1 {
			// Everything merged back into one operand: not a split
			return nil, false
		}
		cond, err := r.Parse(acc)
		if err != nil {
			continue
		}
		conds = append(conds, cond)
		acc = ""
	}
	if acc != "" {
		return nil, false
	}
	return conds, true
}

func (r *Registry) registerBuiltins() {
	// Registering string literals compiled in-process; errors here would
	// be programming mistakes, so they are ignored.
	r.Register(`^(?i)(?:always\s+)?true$`, func([]string) (condition.Condition, error) {
		return condition.AlwaysTrue(), nil
	})
	r.Register(`^(?i)(?:always\s+)?false$`, func([]string) (condition.Condition, error) {
		return condition.AlwaysFalse(), nil
	})
	r.Register(`^(?i)daily between (\d{1,2}):(\d{2}) and (\d{1,2}):(\d{2})$`, r.buildDaily)
	r.Register(`^(?i)weekly on ([a-z, ]+) between (\d{1,2}):(\d{2}) and (\d{1,2}):(\d{2})$`, r.buildWeekly)
}

func (r *Registry) buildDaily(groups []string) (condition.Condition, error) {
	startHour, startMin := atoi(groups[1]), atoi(groups[2])
	endHour, endMin := atoi(groups[3]), atoi(groups[4])
	win, err := window.NewDaily(startHour, startMin, endHour, endMin, r.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return condition.InWindow(win).WithClock(r.clk), nil
}

func (r *Registry) buildWeekly(groups []string) (condition.Condition, error) {
	days, err := parseWeekdays(groups[1])
	if err != nil {
		return nil, err
	}
	startHour, startMin := atoi(groups[2]), atoi(groups[3])
	endHour, endMin := atoi(groups[4]), atoi(groups[5])

	dur := time.Duration(endHour-startHour)*time.Hour + time.Duration(endMin-startMin)*time.Minute
	if dur <= 0 {
		// Overnight range wraps into the next day
		dur += 24 * time.Hour
	}

	win, err := window.NewWeekly(days, startHour, startMin, dur, r.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return condition.InWindow(win).WithClock(r.clk), nil
}

var weekdayNames = map[string]time.Weekday{
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
	"sun": time.Sunday, "sunday": time.Sunday,
}

func parseWeekdays(list string) ([]time.Weekday, error) {
	parts := strings.Split(list, ",")
	days := make([]time.Weekday, 0, len(parts))
	for _, part := range parts {
		name := strings.ToLower(strings.TrimSpace(part))
		day, ok := weekdayNames[name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown weekday %q", ErrParse, name)
		}
		days = append(days, day)
	}
	return days, nil
}

// splitKeyword splits text on a case-insensitive keyword separator,
// returning the original text as a single part when absent
func splitKeyword(text, sep string) []string {
	lower := strings.ToLower(text)
	var parts []string
	start := 0
	for {
		idx := strings.Index(lower[start:], sep)
		if idx < 0 {
			break
		}
		idx += start
		parts = append(parts, strings.TrimSpace(text[start:idx]))
		start = idx + len(sep)
	}
	parts = append(parts, strings.TrimSpace(text[start:]))
	return parts
}

// cutKeyword strips a case-insensitive prefix keyword
func cutKeyword(text, prefix string) (string, bool) {
	if len(text) >= len(prefix) && strings.EqualFold(text[:len(prefix)], prefix) {
		return strings.TrimSpace(text[len(prefix):]), true
	}
	return "", false
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
