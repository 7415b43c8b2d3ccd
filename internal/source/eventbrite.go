package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/explorenyc/eventscout/internal/apperr"
	"github.com/explorenyc/eventscout/internal/event"
)

const (
	eventbriteName           = "eventbrite"
	defaultEventbriteBaseURL = "https://www.eventbriteapi.com/v3"
)

// placeholderTokens are values people leave in config templates; they count
// as missing credentials.
var placeholderTokens = map[string]bool{
	"":                  true,
	"your_api_key_here": true,
	"changeme":          true,
}

// eventbriteCategories maps Eventbrite's numeric category IDs to names.
var eventbriteCategories = map[string]string{
	"103": "Music",
	"105": "Food & Drink",
	"110": "Art",
	"111": "Film & Media",
	"113": "Sports & Fitness",
	"114": "Health",
	"115": "Science & Technology",
	"116": "Travel & Outdoor",
	"117": "Charity & Causes",
	"118": "Religion & Spirituality",
	"119": "Family & Education",
	"120": "Seasonal & Holiday",
	"121": "Government & Politics",
	"122": "Fashion & Beauty",
	"123": "Home & Lifestyle",
	"124": "Auto, Boat & Air",
	"125": "Hobbies & Special Interest",
	"126": "School Activities",
	"127": "Other",
}

// Eventbrite reads the commercial events API. It needs a bearer token, so
// construction fails without one and the aggregator simply runs without this
// source.
type Eventbrite struct {
	token   string
	baseURL string
	client  *http.Client
	gate    *rateGate
}

// NewEventbrite builds the adapter, rejecting missing or placeholder tokens
// with a configuration error.
func NewEventbrite(token, baseURL string) (*Eventbrite, error) {
	if placeholderTokens[strings.TrimSpace(token)] {
		return nil, apperr.NewConfiguration(eventbriteName, "API token is missing or a placeholder")
	}
	if baseURL == "" {
		baseURL = defaultEventbriteBaseURL
	}
	return &Eventbrite{
		token:   strings.TrimSpace(token),
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  newHTTPClient(),
		gate:    newRateGate(),
	}, nil
}

func (s *Eventbrite) Name() string { return eventbriteName }

type ebSearchResponse struct {
	Events []ebEvent `json:"events"`
}

type ebEvent struct {
	ID          string  `json:"id"`
	Name        ebText  `json:"name"`
	Description ebText  `json:"description"`
	CategoryID  string  `json:"category_id"`
	URL         string  `json:"url"`
	Start       ebStart `json:"start"`
	Venue       *struct {
		Name    string `json:"name"`
		Address struct {
			City   string `json:"city"`
			Region string `json:"region"`
		} `json:"address"`
	} `json:"venue"`
	Logo *struct {
		URL string `json:"url"`
	} `json:"logo"`
	Format *struct {
		Name string `json:"name"`
	} `json:"format"`
	TicketAvailability *struct {
		IsFree bool `json:"is_free"`
	} `json:"ticket_availability"`
	TicketClasses []struct {
		Cost *struct {
			MajorValue string `json:"major_value"`
		} `json:"cost"`
	} `json:"ticket_classes"`
}

type ebText struct {
	Text string `json:"text"`
}

type ebStart struct {
	Local string `json:"local"`
}

func (s *Eventbrite) get(ctx context.Context, endpoint string, q url.Values, out any) error {
	if err := s.gate.wait(ctx); err != nil {
		return err
	}
	reqURL := s.baseURL + "/" + endpoint
	if len(q) > 0 {
		reqURL += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return apperr.NewUpstream(eventbriteName, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Error("eventbrite request failed", "endpoint", endpoint, "err", err)
		return apperr.NewUpstream(eventbriteName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		slog.Error("eventbrite request failed", "endpoint", endpoint, "err", err)
		return apperr.NewUpstream(eventbriteName, err)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		slog.Error("eventbrite decode failed", "endpoint", endpoint, "err", err)
		return apperr.NewUpstream(eventbriteName, err)
	}
	return nil
}

// Search queries live events near the requested location, free and paid,
// with venue and organizer expansion.
func (s *Eventbrite) Search(ctx context.Context, c Criteria) ([]event.Event, error) {
	location := c.Location
	if location == "" {
		location = "New York, NY"
	}

	q := url.Values{}
	q.Set("location.address", location)
	q.Set("price", "free,paid")
	q.Set("expand", "venue,organizer")
	q.Set("status", "live")
	if c.StartDate != "" {
		q.Set("start_date.range_start", c.StartDate+"T00:00:00")
	}
	if c.EndDate != "" {
		q.Set("start_date.range_end", c.EndDate+"T23:59:59")
	}
	if len(c.Categories) > 0 {
		q.Set("categories", strings.Join(c.Categories, ","))
	}

	var resp ebSearchResponse
	if err := s.get(ctx, "events/search/", q, &resp); err != nil {
		return nil, err
	}

	raw := resp.Events
	if c.Limit > 0 && len(raw) > c.Limit {
		raw = raw[:c.Limit]
	}
	events := make([]event.Event, 0, len(raw))
	for _, e := range raw {
		events = append(events, s.mapEvent(e))
	}
	return events, nil
}

func (s *Eventbrite) mapEvent(e ebEvent) event.Event {
	category := mapEventbriteCategory(e.CategoryID)
	return event.Event{
		ID:            e.ID,
		Title:         strings.TrimSpace(e.Name.Text),
		Description:   strings.TrimSpace(e.Description.Text),
		Category:      category,
		Location:      ebLocation(e),
		Venue:         ebVenueName(e),
		Date:          parseDate(e.Start.Local),
		Time:          clockDisplay(e.Start.Local),
		Price:         ebPrice(e),
		URL:           e.URL,
		ImageURL:      ebImageURL(e),
		Tags:          ebTags(e, category),
		Accessibility: event.Accessibility{},
		Rating:        0, // not provided by the API
		Source:        "Eventbrite",
	}
}

func mapEventbriteCategory(id string) string {
	if name, ok := eventbriteCategories[id]; ok {
		return name
	}
	return "Other"
}

func ebLocation(e ebEvent) string {
	if e.Venue != nil {
		city := e.Venue.Address.City
		region := e.Venue.Address.Region
		switch {
		case city != "" && region != "":
			return city + ", " + region
		case city != "":
			return city
		}
	}
	return "New York, NY"
}

func ebVenueName(e ebEvent) string {
	if e.Venue != nil {
		return e.Venue.Name
	}
	return ""
}

func ebPrice(e ebEvent) event.Price {
	if e.TicketAvailability != nil && e.TicketAvailability.IsFree {
		return event.FreePrice()
	}
	var min, max float64
	var found bool
	for _, tc := range e.TicketClasses {
		if tc.Cost == nil {
			continue
		}
		var amount float64
		if _, err := fmt.Sscanf(tc.Cost.MajorValue, "%f", &amount); err != nil || amount == 0 {
			continue
		}
		if !found || amount < min {
			min = amount
		}
		if !found || amount > max {
			max = amount
		}
		found = true
	}
	if !found {
		return event.Price{Min: 0, Max: 0, Currency: "USD", Display: "Price varies"}
	}
	display := fmt.Sprintf("$%g", min)
	if min != max {
		display = fmt.Sprintf("$%g - $%g", min, max)
	}
	return event.Price{Min: min, Max: max, Currency: "USD", Display: display}
}

func ebImageURL(e ebEvent) string {
	if e.Logo != nil {
		return e.Logo.URL
	}
	return ""
}

func ebTags(e ebEvent, category string) []string {
	tags := []string{}
	if category != "" {
		tags = append(tags, strings.ToLower(category))
	}
	if e.Format != nil && e.Format.Name != "" {
		tags = append(tags, strings.ToLower(e.Format.Name))
	}
	return tags
}

type ebCategoriesResponse struct {
	Categories []struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		ShortName string `json:"short_name"`
	} `json:"categories"`
}

// Categories fetches the live taxonomy from the API.
func (s *Eventbrite) Categories(ctx context.Context) ([]Category, error) {
	var resp ebCategoriesResponse
	if err := s.get(ctx, "categories/", nil, &resp); err != nil {
		return nil, err
	}
	cats := make([]Category, 0, len(resp.Categories))
	for _, c := range resp.Categories {
		cats = append(cats, Category{ID: c.ID, Name: c.Name, ShortName: c.ShortName})
	}
	return cats, nil
}
