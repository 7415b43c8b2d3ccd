// Package aggregate fans search requests out to every configured source
// adapter, merges the results, and returns one deduplicated, date-sorted
// event list.
package aggregate

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/explorenyc/eventscout/internal/apperr"
	"github.com/explorenyc/eventscout/internal/event"
	"github.com/explorenyc/eventscout/internal/metrics"
	"github.com/explorenyc/eventscout/internal/source"
)

// ErrNoSources is returned when an Aggregator is constructed with zero
// adapters; there is no valid empty-adapter state.
var ErrNoSources = errors.New("no event sources available")

// Criteria is an aggregated search request.
type Criteria struct {
	Location   string
	Categories []string
	StartDate  string
	EndDate    string
	Keywords   string
	// LimitPerSource caps each adapter's contribution, not the merged total.
	LimitPerSource int
}

// DefaultLimitPerSource applies when a request does not set its own cap.
const DefaultLimitPerSource = 25

// Aggregator owns the configured source adapters. It is safe for concurrent
// use; adapters carry their own rate gates.
type Aggregator struct {
	sources []source.Source
}

// New builds an Aggregator over the given adapters, failing when none are
// configured.
func New(sources ...source.Source) (*Aggregator, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	return &Aggregator{sources: sources}, nil
}

// SearchEvents queries every adapter in turn. One adapter failing is logged
// and contributes nothing; the rest still count.
func (a *Aggregator) SearchEvents(ctx context.Context, c Criteria) []event.Event {
	metrics.SearchesTotal.WithLabelValues("sequential").Inc()

	var all []event.Event
	for _, src := range a.sources {
		all = append(all, a.searchOne(ctx, src, c)...)
	}
	return a.finish(all)
}

// SearchEventsConcurrent has the same output semantics as SearchEvents but
// runs one worker per adapter. A slow or failing adapter cannot block or
// poison the others; its failure is absorbed when that worker's result is
// collected.
func (a *Aggregator) SearchEventsConcurrent(ctx context.Context, c Criteria) []event.Event {
	metrics.SearchesTotal.WithLabelValues("concurrent").Inc()

	results := make(chan []event.Event, len(a.sources))
	var wg sync.WaitGroup
	for _, src := range a.sources {
		wg.Add(1)
		go func(src source.Source) {
			defer wg.Done()
			results <- a.searchOne(ctx, src, c)
		}(src)
	}
	wg.Wait()
	close(results)

	var all []event.Event
	for evs := range results {
		all = append(all, evs...)
	}
	return a.finish(all)
}

// searchOne runs one adapter's search with the shared criteria, applying the
// keyword filter to its contribution before the merge.
func (a *Aggregator) searchOne(ctx context.Context, src source.Source, c Criteria) []event.Event {
	limit := c.LimitPerSource
	if limit <= 0 {
		limit = DefaultLimitPerSource
	}
	started := time.Now()
	evs, err := src.Search(ctx, source.Criteria{
		Location:   c.Location,
		Categories: c.Categories,
		StartDate:  c.StartDate,
		EndDate:    c.EndDate,
		Limit:      limit,
	})
	metrics.SourceRequestDuration.WithLabelValues(src.Name()).
		Observe(float64(time.Since(started).Milliseconds()))
	if err != nil {
		// Upstream trouble is an expected degradation; anything else is not.
		if apperr.IsUpstream(err) {
			slog.Warn("source search failed", "source", src.Name(), "err", err)
		} else {
			slog.Error("source search failed", "source", src.Name(), "err", err)
		}
		metrics.SourceFailures.WithLabelValues(src.Name()).Inc()
		return nil
	}
	if c.Keywords != "" {
		evs = filterByKeywords(evs, c.Keywords)
	}
	metrics.SourceResults.WithLabelValues(src.Name()).Add(float64(len(evs)))
	return evs
}

func (a *Aggregator) finish(all []event.Event) []event.Event {
	unique := dedupe(all)
	sortByDate(unique)
	metrics.LastSearchSize.Set(float64(len(unique)))
	return unique
}

// filterByKeywords keeps events where any whitespace-separated keyword is a
// substring of the lowercased title, description, or tags.
func filterByKeywords(events []event.Event, keywords string) []event.Event {
	words := strings.Fields(strings.ToLower(keywords))
	if len(words) == 0 {
		return events
	}
	kept := make([]event.Event, 0, len(events))
	for _, ev := range events {
		haystack := strings.ToLower(ev.Title + " " + ev.Description + " " + strings.Join(ev.Tags, " "))
		for _, w := range words {
			if strings.Contains(haystack, w) {
				kept = append(kept, ev)
				break
			}
		}
	}
	return kept
}

// dedupKey is the composite identity of a listing across sources.
type dedupKey struct {
	title    string
	date     string
	location string
}

func keyOf(ev event.Event) dedupKey {
	k := dedupKey{
		title:    strings.ToLower(strings.TrimSpace(ev.Title)),
		location: strings.ToLower(strings.TrimSpace(ev.Location)),
	}
	if ev.Date != nil {
		k.date = ev.Date.String()
	}
	return k
}

// dedupe collapses events sharing a (title, date, location) key. The first
// occurrence wins regardless of source.
func dedupe(events []event.Event) []event.Event {
	seen := make(map[dedupKey]bool, len(events))
	unique := make([]event.Event, 0, len(events))
	for _, ev := range events {
		k := keyOf(ev)
		if seen[k] {
			metrics.DuplicatesDropped.Inc()
			continue
		}
		seen[k] = true
		unique = append(unique, ev)
	}
	return unique
}

// sortByDate orders events ascending by date, TBD dates last, stable
// otherwise.
func sortByDate(events []event.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		di, dj := events[i].Date, events[j].Date
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return di.Before(dj)
		}
	})
}

// Categories asks every adapter for its taxonomy. An adapter failing yields
// an empty list for that adapter, never a failed call.
func (a *Aggregator) Categories(ctx context.Context) map[string][]source.Category {
	out := make(map[string][]source.Category, len(a.sources))
	for _, src := range a.sources {
		cats, err := src.Categories(ctx)
		if err != nil {
			slog.Error("source categories failed", "source", src.Name(), "err", err)
			cats = []source.Category{}
		}
		out[src.Name()] = cats
	}
	return out
}

// AvailableSources lists the names of the constructed adapters.
func (a *Aggregator) AvailableSources() []string {
	names := make([]string, 0, len(a.sources))
	for _, src := range a.sources {
		names = append(names, src.Name())
	}
	return names
}

// SourceStatus reports per-adapter availability.
func (a *Aggregator) SourceStatus() map[string]bool {
	status := make(map[string]bool, len(a.sources))
	for _, src := range a.sources {
		status[src.Name()] = src != nil
	}
	return status
}
