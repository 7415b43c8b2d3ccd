package source

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/explorenyc/eventscout/internal/event"
)

// upstreamTimeout bounds every outbound call so no search blocks
// indefinitely on a slow feed.
const upstreamTimeout = 30 * time.Second

func newHTTPClient() *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: upstreamTimeout, Transport: tr}
}

// dateLayouts are the timestamp shapes seen across the upstream feeds.
var dateLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"January 2, 2006",
}

// parseDate tries the known layouts in order. An unparsable or empty string
// yields nil (date TBD), never an error.
func parseDate(s string) *event.Date {
	s = strings.TrimSpace(strings.TrimSuffix(s, "Z"))
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return event.NewDate(t)
		}
	}
	return nil
}

// clockLayouts are the ISO shapes clockDisplay understands.
var clockLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// clockDisplay extracts a 12-hour clock display string ("7:00 PM") from a
// source timestamp. Parsing failure yields an empty string.
func clockDisplay(s string) string {
	s = strings.TrimSpace(strings.TrimSuffix(s, "Z"))
	if s == "" {
		return ""
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("3:04 PM")
		}
	}
	return ""
}

// tagify lowercases a label and joins its words with underscores, the shape
// used for the tag vocabulary.
func tagify(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}
