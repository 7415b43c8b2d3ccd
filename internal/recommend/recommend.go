// Package recommend scores events against a user's preference profile and
// produces ranked recommendations.
package recommend

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/explorenyc/eventscout/internal/event"
	"github.com/explorenyc/eventscout/internal/metrics"
)

// Scoring weights. These are load-bearing constants shared with existing
// clients; changing them changes ranking behavior.
const (
	categoryWeight     = 10
	budgetWeight       = 5
	neighborhoodWeight = 8

	strengthHigh   = 15
	strengthMedium = 8
)

const (
	defaultBudgetMin = 0
	defaultBudgetMax = 1000

	// toolCandidateCap bounds how many events the tool-facing variant even
	// considers; toolResultCap bounds what it returns.
	toolCandidateCap = 5
	toolResultCap    = 3

	// generalResultCap bounds the general-purpose recommender.
	generalResultCap = 20
)

// Recommendation is one scored event with its human-readable justifications.
type Recommendation struct {
	Event    event.Event `json:"event"`
	Score    int         `json:"score"`
	Reasons  []string    `json:"reasons"`
	Strength string      `json:"recommendation_strength"`
}

// Result is the tool-facing recommendation envelope.
type Result struct {
	Recommendations       []Recommendation `json:"recommendations"`
	TotalEventsConsidered int              `json:"total_events_considered,omitempty"`
	Message               string           `json:"message"`
}

// ScoreEvent computes the additive relevance score of one event for the
// given preferences, with a reason per matched contribution. Contributions
// are independent, so evaluation order never matters.
func ScoreEvent(ev event.Event, prefs event.UserPreferences) (int, []string) {
	score := 0
	reasons := []string{}

	for _, cat := range prefs.Categories {
		if ev.Category == cat {
			score += categoryWeight
			reasons = append(reasons, "Matches your interest in "+ev.Category)
			break
		}
	}

	budgetMin, budgetMax := float64(defaultBudgetMin), float64(defaultBudgetMax)
	if prefs.Budget != nil {
		budgetMin, budgetMax = prefs.Budget.Min, prefs.Budget.Max
	}
	if price := minPrice(ev); budgetMin <= price && price <= budgetMax {
		score += budgetWeight
		reasons = append(reasons, "Fits your budget")
	}

	location := strings.ToLower(ev.Location)
	for _, hood := range prefs.Neighborhoods {
		if strings.Contains(location, strings.ToLower(hood)) {
			score += neighborhoodWeight
			reasons = append(reasons, "Located in "+hood)
			break
		}
	}

	return score, reasons
}

// Strength labels a score for the tool-facing surface.
func Strength(score int) string {
	switch {
	case score >= strengthHigh:
		return "High"
	case score >= strengthMedium:
		return "Medium"
	default:
		return "Low"
	}
}

// minPrice resolves an event's minimum cost, falling back to parsing the
// display string when the structured block is empty.
func minPrice(ev event.Event) float64 {
	if ev.Price.Min > 0 {
		return ev.Price.Min
	}
	if ev.Price.Display != "" && ev.Price.Min == 0 && ev.Price.Max == 0 {
		return ParseDisplayPrice(ev.Price.Display)
	}
	return ev.Price.Min
}

// ParseDisplayPrice converts a display price string into a numeric minimum:
// "Free" and "Free entry" mean 0, a leading currency symbol is stripped, and
// anything unparsable defaults to 0 rather than failing.
func ParseDisplayPrice(display string) float64 {
	s := strings.TrimSpace(display)
	if s == "" || strings.EqualFold(s, "Free") || strings.EqualFold(s, "Free entry") {
		return 0
	}
	s = strings.TrimPrefix(s, "$")
	// Keep only the leading number: "25 - $40" -> "25".
	if i := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	}); i >= 0 {
		s = s[:i]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// RecommendTop is the tool-facing variant: it considers at most the first
// five candidates and returns the top three with reasons and strength
// labels. Zero candidates yield an explicit no-results message, never a
// silent empty ranking.
func RecommendTop(events []event.Event, prefs event.UserPreferences) Result {
	metrics.RecommendationsTotal.Inc()

	if len(events) == 0 {
		return Result{
			Recommendations: []Recommendation{},
			Message:         "No events found matching your criteria.",
		}
	}

	candidates := events
	if len(candidates) > toolCandidateCap {
		candidates = candidates[:toolCandidateCap]
	}

	recs := make([]Recommendation, 0, len(candidates))
	for _, ev := range candidates {
		score, reasons := ScoreEvent(ev, prefs)
		recs = append(recs, Recommendation{
			Event:    ev,
			Score:    score,
			Reasons:  reasons,
			Strength: Strength(score),
		})
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if len(recs) > toolResultCap {
		recs = recs[:toolResultCap]
	}

	return Result{
		Recommendations:       recs,
		TotalEventsConsidered: len(events),
		Message: fmt.Sprintf("Found %d events, recommending the top %d based on your preferences.",
			len(events), toolResultCap),
	}
}

// Recommend is the general-purpose variant: it scores an arbitrary candidate
// list and returns the top twenty events, best first. Ties keep input order.
func Recommend(events []event.Event, prefs event.UserPreferences) []event.Event {
	metrics.RecommendationsTotal.Inc()

	if len(events) == 0 {
		return []event.Event{}
	}

	type scored struct {
		ev    event.Event
		score int
	}
	ranked := make([]scored, 0, len(events))
	for _, ev := range events {
		s, _ := ScoreEvent(ev, prefs)
		ranked = append(ranked, scored{ev: ev, score: s})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > generalResultCap {
		ranked = ranked[:generalResultCap]
	}
	out := make([]event.Event, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.ev)
	}
	return out
}
