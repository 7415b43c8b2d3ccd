package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/explorenyc/eventscout/internal/apperr"
	"github.com/explorenyc/eventscout/internal/event"
)

const (
	nycName = "nyc_open_data"

	// Socrata caps a single page at 1000 rows.
	nycMaxLimit = 1000

	defaultNYCBaseURL = "https://data.cityofnewyork.us/resource"

	// NYC Events API dataset.
	nycEventsResource = "tvpp-9vvx.json"
)

// NYCOpenData reads the city's public events dataset. The portal is free and
// open, so this adapter is always constructible.
type NYCOpenData struct {
	baseURL string
	client  *http.Client
	gate    *rateGate
}

// NewNYCOpenData builds the adapter. An empty baseURL selects the public
// portal.
func NewNYCOpenData(baseURL string) *NYCOpenData {
	if baseURL == "" {
		baseURL = defaultNYCBaseURL
	}
	return &NYCOpenData{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(),
		gate:    newRateGate(),
	}
}

func (s *NYCOpenData) Name() string { return nycName }

// nycRecord is the raw row shape of the NYC Events dataset.
type nycRecord struct {
	EventID       string `json:"event_id"`
	EventName     string `json:"event_name"`
	EventType     string `json:"event_type"`
	EventBorough  string `json:"event_borough"`
	EventLocation string `json:"event_location"`
	EventAgency   string `json:"event_agency"`
	StartDateTime string `json:"start_date_time"`
	EndDateTime   string `json:"end_date_time"`
}

// Search queries the dataset ordered by start time descending, maps rows to
// canonical events, and applies the optional category filter locally since
// the dataset has no category column matching our vocabulary.
func (s *NYCOpenData) Search(ctx context.Context, c Criteria) ([]event.Event, error) {
	if err := s.gate.wait(ctx); err != nil {
		return nil, err
	}

	limit := c.Limit
	if limit <= 0 || limit > nycMaxLimit {
		limit = nycMaxLimit
	}

	q := url.Values{}
	q.Set("$limit", strconv.Itoa(limit))
	q.Set("$order", "start_date_time DESC")
	if where := nycWhereClause(c.StartDate, c.EndDate); where != "" {
		q.Set("$where", where)
	}

	reqURL := s.baseURL + "/" + nycEventsResource + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperr.NewUpstream(nycName, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Error("nyc open data request failed", "err", err)
		return nil, apperr.NewUpstream(nycName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		slog.Error("nyc open data request failed", "err", err)
		return nil, apperr.NewUpstream(nycName, err)
	}

	var records []nycRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		slog.Error("nyc open data decode failed", "err", err)
		return nil, apperr.NewUpstream(nycName, err)
	}

	events := make([]event.Event, 0, len(records))
	for _, r := range records {
		events = append(events, s.mapRecord(r))
	}
	if len(c.Categories) > 0 {
		events = filterByCategories(events, c.Categories)
	}
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// nycWhereClause builds the Socrata inequality filter, joining both bounds
// with AND when present.
func nycWhereClause(startDate, endDate string) string {
	var clauses []string
	if startDate != "" {
		clauses = append(clauses, fmt.Sprintf("start_date_time >= '%sT00:00:00.000'", startDate))
	}
	if endDate != "" {
		clauses = append(clauses, fmt.Sprintf("end_date_time <= '%sT23:59:59.000'", endDate))
	}
	return strings.Join(clauses, " AND ")
}

func (s *NYCOpenData) mapRecord(r nycRecord) event.Event {
	title := strings.TrimSpace(r.EventName)
	if title == "" {
		title = "NYC Event"
	}
	return event.Event{
		ID:            r.EventID,
		Title:         title,
		Description:   nycDescription(r),
		Category:      mapNYCEventType(r.EventType),
		Location:      nycLocation(r.EventBorough),
		Venue:         r.EventLocation,
		Date:          parseDate(r.StartDateTime),
		Time:          clockDisplay(r.StartDateTime),
		Price:         event.FreePrice(),
		Tags:          nycTags(r),
		Accessibility: event.Accessibility{},
		Source:        "NYC Open Data",
	}
}

func nycDescription(r nycRecord) string {
	desc := r.EventName
	if r.EventType != "" {
		desc += " - " + r.EventType
	}
	if r.EventBorough != "" {
		desc += " in " + r.EventBorough
	}
	return desc
}

// mapNYCEventType maps the dataset's free-form event types onto the
// canonical vocabulary. Anything unrecognized is "Other".
func mapNYCEventType(eventType string) string {
	t := strings.ToLower(eventType)
	switch {
	case t == "":
		return "Other"
	case strings.Contains(t, "sport"):
		return "Sports"
	case strings.Contains(t, "special event"):
		return "Entertainment"
	case strings.Contains(t, "yoga"):
		return "Health & Wellness"
	case strings.Contains(t, "celebration"):
		return "Community"
	default:
		return "Other"
	}
}

func nycLocation(borough string) string {
	if borough != "" {
		return borough + ", NY"
	}
	return "New York, NY"
}

func nycTags(r nycRecord) []string {
	tags := []string{}
	if r.EventType != "" {
		tags = append(tags, tagify(r.EventType))
	}
	if r.EventBorough != "" {
		tags = append(tags, strings.ToLower(r.EventBorough))
	}
	if r.EventAgency != "" {
		tags = append(tags, tagify(r.EventAgency))
	}
	return tags
}

// filterByCategories keeps events whose category contains any requested
// category, case-insensitively.
func filterByCategories(events []event.Event, categories []string) []event.Event {
	wanted := make([]string, 0, len(categories))
	for _, c := range categories {
		wanted = append(wanted, strings.ToLower(c))
	}
	kept := make([]event.Event, 0, len(events))
	for _, ev := range events {
		cat := strings.ToLower(ev.Category)
		for _, w := range wanted {
			if strings.Contains(cat, w) {
				kept = append(kept, ev)
				break
			}
		}
	}
	return kept
}

// Categories returns the fixed taxonomy the dataset maps onto.
func (s *NYCOpenData) Categories(ctx context.Context) ([]Category, error) {
	return []Category{
		{ID: "sports", Name: "Sports", ShortName: "sports"},
		{ID: "entertainment", Name: "Entertainment", ShortName: "entertainment"},
		{ID: "health_wellness", Name: "Health & Wellness", ShortName: "health"},
		{ID: "community", Name: "Community", ShortName: "community"},
		{ID: "other", Name: "Other", ShortName: "other"},
	}, nil
}
