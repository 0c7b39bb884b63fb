package allocator

import (
	"sort"
	"time"
)

// Due date ordering strategy names
const (
	DueDateOrderLexical  = "lexical"
	DueDateOrderCalendar = "calendar"
)

// DueDateOrder decides the order in which task groups are scored
type DueDateOrder interface {
	// Name returns the configuration name of the strategy
	Name() string

	// Less reports whether due date a sorts before due date b
	Less(a, b string) bool
}

// LexicalOrder compares due dates as plain strings.
// This is only chronological for zero-padded, year-first formats such as 2006-01-02.
type LexicalOrder struct{}

func (LexicalOrder) Name() string {
	return DueDateOrderLexical
}

func (LexicalOrder) Less(a, b string) bool {
	return a < b
}

// CalendarOrder parses due dates with the given layouts and compares them as times.
// Dates that match no layout sort after all parseable dates, lexically among themselves.
type CalendarOrder struct {
	Layouts []string
}

// NewCalendarOrder creates a CalendarOrder, defaulting to ISO dates when no layouts are given
func NewCalendarOrder(layouts ...string) *CalendarOrder {
	if len(layouts) == 0 {
		layouts = []string{time.DateOnly}
	}
	return &CalendarOrder{Layouts: layouts}
}

func (c *CalendarOrder) Name() string {
	return DueDateOrderCalendar
}

func (c *CalendarOrder) Less(a, b string) bool {
	ta, okA := c.parse(a)
	tb, okB := c.parse(b)

	switch {
	case okA && okB:
		return ta.Before(tb)
	case okA:
		return true
	case okB:
		return false
	default:
		return a < b
	}
}

func (c *CalendarOrder) parse(value string) (time.Time, bool) {
	for _, layout := range c.Layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// GroupItems partitions items by (location, due date).
// Groups are returned in order of first appearance and items keep their input order.
func GroupItems(items []CalibrationItem) []*TaskGroup {
	groups := make([]*TaskGroup, 0)
	index := make(map[GroupKey]*TaskGroup)

	for _, item := range items {
		key := item.GroupKey()
		group, ok := index[key]
		if !ok {
			group = &TaskGroup{Key: key}
			index[key] = group
			groups = append(groups, group)
		}
		group.Items = append(group.Items, item)
	}

	return groups
}

// SortGroupsByDueDate orders groups by due date using the given strategy.
// The sort is stable, so groups with equal due dates keep first-appearance order.
func SortGroupsByDueDate(groups []*TaskGroup, order DueDateOrder) {
	sort.SliceStable(groups, func(i, j int) bool {
		return order.Less(groups[i].Key.DueDate, groups[j].Key.DueDate)
	})
}

// DedupeWorkers removes duplicate worker IDs, keeping the first occurrence
func DedupeWorkers(workers []string) []string {
	seen := make(map[string]bool, len(workers))
	result := make([]string, 0, len(workers))
	for _, w := range workers {
		if seen[w] {
			continue
		}
		seen[w] = true
		result = append(result, w)
	}
	return result
}
