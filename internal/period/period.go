// Package period implements the calendar granularities used to bucket
// readings: day, week (Monday aligned), month and year.
package period

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Granularity is the bucketing unit.
type Granularity int

const (
	Day Granularity = iota + 1
	Week
	Month
	Year
)

// rule holds everything that differs between granularities.
type rule struct {
	name    string
	start   func(date time.Time) time.Time
	advance func(start time.Time) time.Time
	label   func(start time.Time) string
}

var rules = map[Granularity]rule{
	Day: {
		name:    "day",
		start:   func(d time.Time) time.Time { return d },
		advance: func(s time.Time) time.Time { return s.AddDate(0, 0, 1) },
		label:   func(s time.Time) string { return s.Format("2006-01-02") },
	},
	Week: {
		name:    "week",
		start:   WeekStart,
		advance: func(s time.Time) time.Time { return s.AddDate(0, 0, 7) },
		label:   func(s time.Time) string { return "W/C " + s.Format("02 Jan 2006") },
	},
	Month: {
		name:    "month",
		start:   func(d time.Time) time.Time { return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC) },
		advance: func(s time.Time) time.Time { return s.AddDate(0, 1, 0) },
		label:   func(s time.Time) string { return s.Format("Jan 2006") },
	},
	Year: {
		name:    "year",
		start:   func(d time.Time) time.Time { return time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC) },
		advance: func(s time.Time) time.Time { return s.AddDate(1, 0, 0) },
		label:   func(s time.Time) string { return s.Format("2006") },
	},
}

// lookup panics on an unknown granularity: it can only come from code,
// request input goes through Parse.
func (g Granularity) lookup() rule {
	r, ok := rules[g]
	if !ok {
		panic(fmt.Sprintf("period: invalid granularity %d", int(g)))
	}
	return r
}

// Valid reports whether g is one of the four known granularities.
func (g Granularity) Valid() bool {
	_, ok := rules[g]
	return ok
}

func (g Granularity) String() string {
	if r, ok := rules[g]; ok {
		return r.name
	}
	return fmt.Sprintf("granularity(%d)", int(g))
}

// Start returns the start of the bucket containing t. The calendar date of t
// is taken in t's own location and the result is midnight UTC of that date.
func (g Granularity) Start(t time.Time) time.Time {
	return g.lookup().start(CalendarDate(t))
}

// End returns start advanced by exactly one calendar unit.
func (g Granularity) End(start time.Time) time.Time {
	return g.lookup().advance(start)
}

// Label formats a bucket start for display.
func (g Granularity) Label(start time.Time) string {
	return g.lookup().label(start)
}

// Parse accepts the lower-case or capitalised granularity names.
func Parse(s string) (Granularity, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for g, r := range rules {
		if r.name == name {
			return g, nil
		}
	}
	return 0, fmt.Errorf("unknown period %q: expected day, week, month or year", s)
}

func (g Granularity) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("invalid granularity %d", int(g))
	}
	return []byte(g.String()), nil
}

func (g *Granularity) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// CalendarDate drops the clock part of t without converting its zone.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Monday of the week containing date.
func WeekStart(date time.Time) time.Time {
	date = CalendarDate(date)
	delta := (int(date.Weekday()) - int(time.Monday) + 7) % 7
	return date.AddDate(0, 0, -delta)
}

// WeekdayIndex numbers weekdays Monday=0 through Sunday=6.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) - int(time.Monday) + 7) % 7
}

// DaysIn returns the number of days in the month containing t.
func DaysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Bucket is one half-open [Start, End) span with the items that fell in it.
type Bucket[T any] struct {
	Label string
	Start time.Time
	End   time.Time
	Items []T
}

// Group assigns each item to the bucket containing at(item) and returns the
// non-empty buckets in chronological order.
func Group[T any](items []T, g Granularity, at func(T) time.Time) []Bucket[T] {
	r := g.lookup()

	index := make(map[time.Time]int)
	var buckets []Bucket[T]
	for _, item := range items {
		start := r.start(CalendarDate(at(item)))
		i, ok := index[start]
		if !ok {
			i = len(buckets)
			index[start] = i
			buckets = append(buckets, Bucket[T]{
				Label: r.label(start),
				Start: start,
				End:   r.advance(start),
			})
		}
		buckets[i].Items = append(buckets[i].Items, item)
	}

	sort.Slice(buckets, func(a, b int) bool {
		return buckets[a].Start.Before(buckets[b].Start)
	})
	return buckets
}
