package source

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/explorenyc/eventscout/internal/apperr"
	"github.com/explorenyc/eventscout/internal/event"
)

const cityFeedsName = "city_feeds"

// feedCategoryMap folds common RSS category labels into the canonical
// vocabulary. Unmapped labels become "Other".
var feedCategoryMap = map[string]string{
	"art":           "Art",
	"arts":          "Art",
	"culture":       "Art",
	"music":         "Music",
	"concert":       "Music",
	"concerts":      "Music",
	"food":          "Food & Drink",
	"dining":        "Food & Drink",
	"sports":        "Sports",
	"fitness":       "Sports",
	"outdoors":      "Travel & Outdoor",
	"outdoor":       "Travel & Outdoor",
	"family":        "Family & Education",
	"kids":          "Family & Education",
	"education":     "Family & Education",
	"community":     "Community",
	"entertainment": "Entertainment",
}

// CityFeeds aggregates civic event RSS feeds (parks departments, libraries,
// cultural institutions). No credential is needed, so like the open-data
// adapter it is always constructible; an empty URL list just yields an
// adapter that returns nothing.
type CityFeeds struct {
	urls   []string
	parser *gofeed.Parser
	gate   *rateGate
}

// NewCityFeeds builds the adapter over the configured feed URLs.
func NewCityFeeds(urls []string) *CityFeeds {
	p := gofeed.NewParser()
	p.Client = newHTTPClient()
	p.UserAgent = "eventscout/1.0"
	return &CityFeeds{urls: urls, parser: p, gate: newRateGate()}
}

func (s *CityFeeds) Name() string { return cityFeedsName }

// Search fetches every configured feed in order, mapping items into the
// canonical record. A single feed failing is logged and skipped; the whole
// call fails only when every feed fails.
func (s *CityFeeds) Search(ctx context.Context, c Criteria) ([]event.Event, error) {
	limit := c.Limit
	if limit <= 0 {
		limit = 50
	}

	var events []event.Event
	var lastErr error
	for _, feedURL := range s.urls {
		if len(events) >= limit {
			break
		}
		if err := s.gate.wait(ctx); err != nil {
			return nil, err
		}
		feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			slog.Error("city feed fetch failed", "url", feedURL, "err", err)
			lastErr = apperr.NewUpstream(cityFeedsName, err)
			continue
		}
		for _, item := range feed.Items {
			if len(events) >= limit {
				break
			}
			ev := s.mapItem(feed, item)
			if !withinDates(ev.Date, c.StartDate, c.EndDate) {
				continue
			}
			events = append(events, ev)
		}
	}
	if len(events) == 0 && lastErr != nil {
		return nil, lastErr
	}
	if len(c.Categories) > 0 {
		events = filterByCategories(events, c.Categories)
	}
	return events, nil
}

func (s *CityFeeds) mapItem(feed *gofeed.Feed, item *gofeed.Item) event.Event {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = "City Event"
	}

	var date *event.Date
	var clock string
	if item.PublishedParsed != nil {
		date = event.NewDate(*item.PublishedParsed)
		clock = item.PublishedParsed.Format("3:04 PM")
	}

	tags := make([]string, 0, len(item.Categories))
	for _, c := range item.Categories {
		if c = strings.TrimSpace(c); c != "" {
			tags = append(tags, tagify(c))
		}
	}

	return event.Event{
		ID:            item.GUID,
		Title:         title,
		Description:   strings.TrimSpace(item.Description),
		Category:      mapFeedCategories(item.Categories),
		Location:      "New York, NY",
		Venue:         strings.TrimSpace(feed.Title),
		Date:          date,
		Time:          clock,
		Price:         event.FreePrice(),
		URL:           item.Link,
		Tags:          tags,
		Accessibility: event.Accessibility{},
		Source:        "City Feeds",
	}
}

func mapFeedCategories(labels []string) string {
	for _, label := range labels {
		if mapped, ok := feedCategoryMap[strings.ToLower(strings.TrimSpace(label))]; ok {
			return mapped
		}
	}
	return "Other"
}

// withinDates applies the YYYY-MM-DD bounds client side; feeds have no date
// query support. A TBD date passes only when no bounds are set.
func withinDates(d *event.Date, startDate, endDate string) bool {
	if startDate == "" && endDate == "" {
		return true
	}
	if d == nil {
		return false
	}
	t := d.Time()
	if startDate != "" {
		if s := parseDate(startDate); s != nil && t.Before(s.Time()) {
			return false
		}
	}
	if endDate != "" {
		if e := parseDate(endDate); e != nil && t.After(e.Time()) {
			return false
		}
	}
	return true
}

// Categories lists the vocabulary the feed labels fold into, in a fixed
// order.
func (s *CityFeeds) Categories(ctx context.Context) ([]Category, error) {
	return []Category{
		{ID: "art", Name: "Art", ShortName: "art"},
		{ID: "music", Name: "Music", ShortName: "music"},
		{ID: "food_&_drink", Name: "Food & Drink", ShortName: "food"},
		{ID: "sports", Name: "Sports", ShortName: "sports"},
		{ID: "travel_&_outdoor", Name: "Travel & Outdoor", ShortName: "travel"},
		{ID: "family_&_education", Name: "Family & Education", ShortName: "family"},
		{ID: "community", Name: "Community", ShortName: "community"},
		{ID: "entertainment", Name: "Entertainment", ShortName: "entertainment"},
		{ID: "other", Name: "Other", ShortName: "other"},
	}, nil
}
