package recommend

import (
	"sort"
	"strings"
	"time"

	"github.com/explorenyc/eventscout/internal/event"
)

// FilterOptions narrows an event list without re-ranking it. Zero-valued
// fields are ignored.
type FilterOptions struct {
	StartDate     *event.Date
	EndDate       *event.Date
	Categories    []string
	PriceRange    *event.Budget
	Neighborhoods []string
	Accessibility []string
}

// Filter returns the events satisfying every populated constraint. Events
// without a date are kept only when no date bounds are set.
func Filter(events []event.Event, opts FilterOptions) []event.Event {
	out := make([]event.Event, 0, len(events))
	for _, ev := range events {
		if !matchesDate(ev, opts.StartDate, opts.EndDate) {
			continue
		}
		if len(opts.Categories) > 0 && !containsFold(opts.Categories, ev.Category) {
			continue
		}
		if r := opts.PriceRange; r != nil && (ev.Price.Min < r.Min || ev.Price.Max > r.Max) {
			continue
		}
		if len(opts.Neighborhoods) > 0 && !inNeighborhood(ev, opts.Neighborhoods) {
			continue
		}
		if !meetsAccessibility(ev, opts.Accessibility) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func matchesDate(ev event.Event, start, end *event.Date) bool {
	if start == nil && end == nil {
		return true
	}
	if ev.Date == nil {
		return false
	}
	if start != nil && ev.Date.Before(start) {
		return false
	}
	if end != nil && end.Before(ev.Date) {
		return false
	}
	return true
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}

func inNeighborhood(ev event.Event, hoods []string) bool {
	location := strings.ToLower(ev.Location)
	for _, h := range hoods {
		if strings.Contains(location, strings.ToLower(h)) {
			return true
		}
	}
	return false
}

func meetsAccessibility(ev event.Event, required []string) bool {
	for _, name := range required {
		if !ev.Accessibility.Flag(name) {
			return false
		}
	}
	return true
}

// SortKey selects the ordering used by SortBy.
type SortKey string

const (
	SortByDate   SortKey = "date"
	SortByPrice  SortKey = "price"
	SortByRating SortKey = "rating"
	SortByTitle  SortKey = "title"
)

// SortBy returns a copy of events ordered by the given key. Date sorting
// places undated events last; rating sorts descending, everything else
// ascending. Unknown keys leave the order unchanged.
func SortBy(events []event.Event, key SortKey) []event.Event {
	out := make([]event.Event, len(events))
	copy(out, events)
	switch key {
	case SortByDate:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].Date, out[j].Date
			if a == nil {
				return false
			}
			if b == nil {
				return true
			}
			return a.Before(b)
		})
	case SortByPrice:
		sort.SliceStable(out, func(i, j int) bool { return minPrice(out[i]) < minPrice(out[j]) })
	case SortByRating:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	case SortByTitle:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
		})
	}
	return out
}

// Stats summarizes a result set for display alongside recommendations.
type Stats struct {
	TotalEvents   int            `json:"total_events"`
	Categories    map[string]int `json:"categories"`
	Neighborhoods map[string]int `json:"neighborhoods"`
	Free          int            `json:"free"`
	Paid          int            `json:"paid"`
	Upcoming      int            `json:"upcoming_events"`
	ThisWeek      int            `json:"this_week"`
}

// Summarize computes aggregate counts over an event list. Upcoming and
// this-week counts are relative to now; undated events count toward neither.
func Summarize(events []event.Event, now time.Time) Stats {
	s := Stats{
		TotalEvents:   len(events),
		Categories:    map[string]int{},
		Neighborhoods: map[string]int{},
	}
	today := event.NewDate(now).Time()
	weekEnd := today.AddDate(0, 0, 7)
	for _, ev := range events {
		category := ev.Category
		if category == "" {
			category = "Other"
		}
		s.Categories[category]++
		location := ev.Location
		if location == "" {
			location = "Unknown"
		}
		s.Neighborhoods[location]++
		if minPrice(ev) == 0 {
			s.Free++
		} else {
			s.Paid++
		}
		if ev.Date != nil {
			t := ev.Date.Time()
			if !t.Before(today) {
				s.Upcoming++
				if !t.After(weekEnd) {
					s.ThisWeek++
				}
			}
		}
	}
	return s
}
