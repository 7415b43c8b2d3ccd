package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/explorenyc/eventscout/internal/apperr"
)

func TestNewEventbriteRejectsMissingToken(t *testing.T) {
	for _, token := range []string{"", "  ", "your_api_key_here", "changeme"} {
		if _, err := NewEventbrite(token, ""); err == nil {
			t.Errorf("NewEventbrite(%q) succeeded, want configuration error", token)
		} else if !apperr.IsConfiguration(err) {
			t.Errorf("NewEventbrite(%q) error %v is not a configuration error", token, err)
		}
	}
}

func TestEventbriteSearch(t *testing.T) {
	var gotAuth string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query()
		w.Write([]byte(`{
			"events": [
				{
					"id": "eb-1",
					"name": {"text": "  Jazz Night at Blue Note  "},
					"description": {"text": "Live jazz performance"},
					"category_id": "103",
					"url": "https://example.com/eb-1",
					"start": {"local": "2024-03-16T20:00:00"},
					"venue": {
						"name": "Blue Note",
						"address": {"city": "New York", "region": "NY"}
					},
					"logo": {"url": "https://img.example.com/eb-1.png"},
					"format": {"name": "Concert"},
					"ticket_availability": {"is_free": false},
					"ticket_classes": [
						{"cost": {"major_value": "25"}},
						{"cost": {"major_value": "40"}}
					]
				},
				{
					"id": "eb-2",
					"name": {"text": "Community Picnic"},
					"category_id": "999",
					"start": {"local": "not-a-date"},
					"ticket_availability": {"is_free": true}
				}
			]
		}`))
	}))
	defer srv.Close()

	s, err := NewEventbrite("secret-token", srv.URL)
	if err != nil {
		t.Fatalf("NewEventbrite: %v", err)
	}
	events, err := s.Search(context.Background(), Criteria{
		Location:   "New York, NY",
		Categories: []string{"103", "110"},
		StartDate:  "2024-03-16",
		EndDate:    "2024-03-17",
		Limit:      25,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if gotAuth != "Bearer secret-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	wantParams := map[string]string{
		"location.address":       "New York, NY",
		"price":                  "free,paid",
		"expand":                 "venue,organizer",
		"status":                 "live",
		"start_date.range_start": "2024-03-16T00:00:00",
		"start_date.range_end":   "2024-03-17T23:59:59",
		"categories":             "103,110",
	}
	for k, want := range wantParams {
		if got := gotQuery[k]; len(got) != 1 || got[0] != want {
			t.Errorf("query %s = %v, want %q", k, got, want)
		}
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	jazz := events[0]
	if jazz.Title != "Jazz Night at Blue Note" {
		t.Errorf("Title = %q, want trimmed title", jazz.Title)
	}
	if jazz.Category != "Music" {
		t.Errorf("Category = %q, want Music", jazz.Category)
	}
	if jazz.Location != "New York, NY" {
		t.Errorf("Location = %q", jazz.Location)
	}
	if jazz.Venue != "Blue Note" {
		t.Errorf("Venue = %q", jazz.Venue)
	}
	if jazz.Time != "8:00 PM" {
		t.Errorf("Time = %q, want 8:00 PM", jazz.Time)
	}
	if jazz.Price.Min != 25 || jazz.Price.Max != 40 {
		t.Errorf("Price = %+v, want 25..40", jazz.Price)
	}
	if jazz.Price.Display != "$25 - $40" {
		t.Errorf("Price.Display = %q", jazz.Price.Display)
	}
	if jazz.ImageURL != "https://img.example.com/eb-1.png" {
		t.Errorf("ImageURL = %q", jazz.ImageURL)
	}
	wantTags := []string{"music", "concert"}
	for i, want := range wantTags {
		if i >= len(jazz.Tags) || jazz.Tags[i] != want {
			t.Fatalf("Tags = %v, want %v", jazz.Tags, wantTags)
		}
	}
	if jazz.Source != "Eventbrite" {
		t.Errorf("Source = %q", jazz.Source)
	}

	picnic := events[1]
	if picnic.Category != "Other" {
		t.Errorf("unmapped category = %q, want Other", picnic.Category)
	}
	if picnic.Date != nil {
		t.Errorf("unparsable date = %v, want nil", picnic.Date)
	}
	if picnic.Time != "" {
		t.Errorf("unparsable time = %q, want empty", picnic.Time)
	}
	if picnic.Price.Min != 0 || picnic.Price.Display != "Free" {
		t.Errorf("free event price = %+v", picnic.Price)
	}
}

func TestEventbritePriceVaries(t *testing.T) {
	p := ebPrice(ebEvent{})
	if p.Display != "Price varies" || p.Min != 0 || p.Max != 0 {
		t.Errorf("ebPrice(empty) = %+v", p)
	}
}

func TestEventbriteCategories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/categories/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"categories": [
			{"id": "103", "name": "Music", "short_name": "music"},
			{"id": "110", "name": "Art", "short_name": "art"}
		]}`))
	}))
	defer srv.Close()

	s, err := NewEventbrite("secret-token", srv.URL)
	if err != nil {
		t.Fatalf("NewEventbrite: %v", err)
	}
	cats, err := s.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(cats) != 2 || cats[0].Name != "Music" || cats[1].ShortName != "art" {
		t.Errorf("Categories = %+v", cats)
	}
}
