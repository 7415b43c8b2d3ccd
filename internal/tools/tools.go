// Package tools exposes the aggregation pipeline as string-in, string-out
// operations for a conversational agent. Every failure is folded into the
// returned string; these operations never surface an error to the caller.
package tools

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/explorenyc/eventscout/internal/aggregate"
	"github.com/explorenyc/eventscout/internal/apperr"
	"github.com/explorenyc/eventscout/internal/event"
	"github.com/explorenyc/eventscout/internal/recommend"
)

// searchCriteria is the query shape the agent sends. All fields are
// optional; a non-JSON query is treated as bare keywords.
type searchCriteria struct {
	Category  string `json:"category"`
	Location  string `json:"location"`
	Keywords  string `json:"keywords"`
	DateRange string `json:"date_range"`
}

// Search wraps an aggregator behind the event-search tool contract.
type Search struct {
	agg             *aggregate.Aggregator
	defaultLocation string
	limitPerSource  int
	concurrent      bool
}

// SearchOption configures a Search tool.
type SearchOption func(*Search)

// WithDefaultLocation sets the location used when a query names none.
func WithDefaultLocation(loc string) SearchOption {
	return func(s *Search) { s.defaultLocation = loc }
}

// WithLimitPerSource caps each adapter's contribution per search.
func WithLimitPerSource(n int) SearchOption {
	return func(s *Search) { s.limitPerSource = n }
}

// WithConcurrentSearch switches fan-out to the parallel aggregation path.
func WithConcurrentSearch(on bool) SearchOption {
	return func(s *Search) { s.concurrent = on }
}

// NewSearch builds the search tool over an aggregator.
func NewSearch(agg *aggregate.Aggregator, opts ...SearchOption) *Search {
	s := &Search{
		agg:             agg,
		defaultLocation: "New York, NY",
		limitPerSource:  aggregate.DefaultLimitPerSource,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes one search. The query is either a JSON criteria object or a
// bare keyword string. The result is a pretty-printed JSON event list, or an
// inline error string prefixed "Error searching events: ".
func (s *Search) Run(ctx context.Context, query string) string {
	criteria, err := parseQuery(query)
	if err != nil {
		return "Error searching events: " + apperr.UserMessage(err)
	}

	c := aggregate.Criteria{
		Location:       s.defaultLocation,
		Keywords:       criteria.Keywords,
		LimitPerSource: s.limitPerSource,
	}
	if criteria.Location != "" {
		c.Location = criteria.Location
	}
	if criteria.Category != "" {
		c.Categories = []string{criteria.Category}
	}
	c.StartDate, c.EndDate = splitDateRange(criteria.DateRange)

	var events []event.Event
	if s.concurrent {
		events = s.agg.SearchEventsConcurrent(ctx, c)
	} else {
		events = s.agg.SearchEvents(ctx, c)
	}
	if events == nil {
		events = []event.Event{}
	}

	out, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		slog.Error("encoding search result", "error", err)
		return "Error searching events: " + apperr.UserMessage(err)
	}
	return string(out)
}

// parseQuery interprets the agent's query string. Anything not shaped like a
// JSON object is bare keywords; a malformed JSON object is a validation
// failure.
func parseQuery(query string) (searchCriteria, error) {
	query = strings.TrimSpace(query)
	if !strings.HasPrefix(query, "{") {
		return searchCriteria{Keywords: query}, nil
	}
	var c searchCriteria
	if err := json.Unmarshal([]byte(query), &c); err != nil {
		return searchCriteria{}, apperr.NewValidation("search criteria: " + err.Error())
	}
	return c, nil
}

// splitDateRange breaks a comma-joined date pair on the first comma. A
// single date with no comma bounds both ends of the window.
func splitDateRange(r string) (start, end string) {
	r = strings.TrimSpace(r)
	if r == "" {
		return "", ""
	}
	first, rest, found := strings.Cut(r, ",")
	start = strings.TrimSpace(first)
	if !found {
		return start, start
	}
	return start, strings.TrimSpace(rest)
}

// Recommendations wraps the preference scorer behind the recommendation
// tool contract.
type Recommendations struct{}

// NewRecommendations builds the recommendation tool.
func NewRecommendations() *Recommendations {
	return &Recommendations{}
}

// Run scores a serialized event list against serialized preferences and
// returns the serialized top-3 result. Empty inputs mean empty preferences
// and an empty candidate list. Failures come back as an inline error string
// prefixed "Error generating recommendations: ".
func (r *Recommendations) Run(ctx context.Context, preferences, events string) string {
	var prefs event.UserPreferences
	if strings.TrimSpace(preferences) != "" {
		if err := json.Unmarshal([]byte(preferences), &prefs); err != nil {
			return "Error generating recommendations: " +
				apperr.UserMessage(apperr.NewValidation("preferences: "+err.Error()))
		}
	}

	var list []event.Event
	if strings.TrimSpace(events) != "" {
		if err := json.Unmarshal([]byte(events), &list); err != nil {
			return "Error generating recommendations: " +
				apperr.UserMessage(apperr.NewValidation("events: "+err.Error()))
		}
	}

	result := recommend.RecommendTop(list, prefs)
	out, err := json.Marshal(result)
	if err != nil {
		slog.Error("encoding recommendation result", "error", err)
		return "Error generating recommendations: " + apperr.UserMessage(err)
	}
	return string(out)
}
