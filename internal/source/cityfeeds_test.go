package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const parksFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>NYC Parks Events</title>
    <link>https://www.nycgovparks.org/events</link>
    <item>
      <title>Outdoor Movie Night</title>
      <link>https://www.nycgovparks.org/events/movie-night</link>
      <guid>parks-1001</guid>
      <description>Free screening in Prospect Park</description>
      <category>Entertainment</category>
      <pubDate>Sat, 16 Mar 2024 19:30:00 EST</pubDate>
    </item>
    <item>
      <title>Birding Walk</title>
      <link>https://www.nycgovparks.org/events/birding</link>
      <guid>parks-1002</guid>
      <description>Guided walk with the Urban Park Rangers</description>
      <category>Outdoors</category>
      <pubDate>Sun, 17 Mar 2024 08:00:00 EST</pubDate>
    </item>
    <item>
      <title>Mystery Happening</title>
      <guid>parks-1003</guid>
      <description>No date listed</description>
    </item>
  </channel>
</rss>`

func feedServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(parksFeed))
	}))
}

func TestCityFeedsSearch(t *testing.T) {
	srv := feedServer(t)
	defer srv.Close()

	s := NewCityFeeds([]string{srv.URL})
	events, err := s.Search(context.Background(), Criteria{Limit: 10})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}

	movie := events[0]
	if movie.Title != "Outdoor Movie Night" {
		t.Errorf("Title = %q", movie.Title)
	}
	if movie.Category != "Entertainment" {
		t.Errorf("Category = %q", movie.Category)
	}
	if movie.Venue != "NYC Parks Events" {
		t.Errorf("Venue = %q", movie.Venue)
	}
	if movie.Date == nil || movie.Date.String() != "2024-03-16" {
		t.Errorf("Date = %v", movie.Date)
	}
	if movie.Source != "City Feeds" {
		t.Errorf("Source = %q", movie.Source)
	}
	if len(movie.Tags) != 1 || movie.Tags[0] != "entertainment" {
		t.Errorf("Tags = %v", movie.Tags)
	}

	// Item without a pubDate stays a TBD event.
	if events[2].Date != nil {
		t.Errorf("TBD event date = %v, want nil", events[2].Date)
	}
}

func TestCityFeedsDateWindow(t *testing.T) {
	srv := feedServer(t)
	defer srv.Close()

	s := NewCityFeeds([]string{srv.URL})
	events, err := s.Search(context.Background(), Criteria{
		StartDate: "2024-03-17",
		EndDate:   "2024-03-17",
		Limit:     10,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	// Only the birding walk falls on the 17th; the TBD item is excluded
	// because bounds are set.
	if len(events) != 1 || events[0].Title != "Birding Walk" {
		t.Errorf("windowed events = %+v", events)
	}
}

func TestCityFeedsLimit(t *testing.T) {
	srv := feedServer(t)
	defer srv.Close()

	s := NewCityFeeds([]string{srv.URL})
	events, err := s.Search(context.Background(), Criteria{Limit: 1})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("got %d events, want 1", len(events))
	}
}

func TestCityFeedsAllFeedsFailing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewCityFeeds([]string{srv.URL})
	if _, err := s.Search(context.Background(), Criteria{Limit: 5}); err == nil {
		t.Fatal("expected error when every feed fails")
	}
}

func TestCityFeedsNoFeedsConfigured(t *testing.T) {
	s := NewCityFeeds(nil)
	events, err := s.Search(context.Background(), Criteria{Limit: 5})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events, want 0", len(events))
	}
}

func TestCityFeedsCategoriesStableOrder(t *testing.T) {
	s := NewCityFeeds(nil)
	first, err := s.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(first) == 0 || first[0].Name != "Art" || first[len(first)-1].Name != "Other" {
		t.Fatalf("categories = %+v", first)
	}
	second, _ := s.Categories(context.Background())
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("category order changed between calls: %v vs %v", first, second)
		}
	}
	// Every mapped vocabulary name is listed.
	names := map[string]bool{}
	for _, c := range first {
		names[c.Name] = true
	}
	for _, mapped := range feedCategoryMap {
		if !names[mapped] {
			t.Errorf("vocabulary name %q missing from Categories", mapped)
		}
	}
}
