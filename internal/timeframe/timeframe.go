// Package timeframe resolves named, relative date-range expressions
// ("this weekend", "next month", ...) against a reference date.
package timeframe

import (
	"fmt"
	"time"
)

// Frame is a named relative time window.
type Frame string

const (
	Today       Frame = "today"
	Tonight     Frame = "tonight"
	ThisEvening Frame = "this evening"
	Tomorrow    Frame = "tomorrow"
	ThisWeekend Frame = "this weekend"
	NextWeekend Frame = "next weekend"
	ThisWeek    Frame = "this week"
	NextWeek    Frame = "next week"
	ThisMonth   Frame = "this month"
	NextMonth   Frame = "next month"
)

// Resolve converts a frame and a reference date into a concrete [start, end]
// date interval. Both bounds are inclusive and carry ref's clock stripped to
// the day. The weekday convention throughout is Monday = 0.
func Resolve(f Frame, ref time.Time) (start, end time.Time, err error) {
	ref = midnight(ref)
	switch f {
	case Today, Tonight, ThisEvening:
		return ref, ref, nil
	case Tomorrow:
		t := ref.AddDate(0, 0, 1)
		return t, t, nil
	case ThisWeekend:
		sat := ref.AddDate(0, 0, daysUntilSaturday(ref))
		return sat, sat.AddDate(0, 0, 1), nil
	case NextWeekend:
		sat := ref.AddDate(0, 0, daysUntilSaturday(ref)+7)
		return sat, sat.AddDate(0, 0, 1), nil
	case ThisWeek:
		mon := ref.AddDate(0, 0, -weekday(ref))
		return mon, mon.AddDate(0, 0, 6), nil
	case NextWeek:
		mon := ref.AddDate(0, 0, -weekday(ref)+7)
		return mon, mon.AddDate(0, 0, 6), nil
	case ThisMonth:
		first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
		return first, endOfMonth(first), nil
	case NextMonth:
		first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location()).AddDate(0, 1, 0)
		return first, endOfMonth(first), nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("unknown time frame %q", f)
}

// ForPreference resolves the coarser labels used by preference forms. These
// intentionally differ from Resolve for the week/month labels: a preference
// of "this week" means the next seven days, not the calendar week.
func ForPreference(label string, now time.Time) (start, end time.Time, ok bool) {
	today := midnight(now)
	switch label {
	case "Today":
		return today, today, true
	case "This weekend":
		s, e, _ := Resolve(ThisWeekend, now)
		return s, e, true
	case "This week":
		return today, today.AddDate(0, 0, 7), true
	case "Next week":
		return today.AddDate(0, 0, 7), today.AddDate(0, 0, 14), true
	case "This month":
		return today, today.AddDate(0, 0, 30), true
	}
	return time.Time{}, time.Time{}, false
}

// weekday maps Go's Sunday-based weekday to the Monday = 0 convention.
func weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// daysUntilSaturday is zero when t already is a Saturday.
func daysUntilSaturday(t time.Time) int {
	return (5 - weekday(t) + 7) % 7
}

// endOfMonth walks to the first day of the following month and steps back one
// day, so month lengths and December rollover need no special casing.
func endOfMonth(firstOfMonth time.Time) time.Time {
	return firstOfMonth.AddDate(0, 1, 0).AddDate(0, 0, -1)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
