package event

import (
	"fmt"
	"strings"
	"time"
)

// Event is the canonical record every source adapter produces. Adapters fill
// defaults so downstream code never has to branch on missing fields: Title,
// Category, Price, Tags, Accessibility and Source are always present.
type Event struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Category      string        `json:"category"`
	Location      string        `json:"location"`
	Venue         string        `json:"venue"`
	Date          *Date         `json:"date"` // nil = date TBD
	Time          string        `json:"time"` // display only, e.g. "7:00 PM"
	Price         Price         `json:"price"`
	URL           string        `json:"url"`
	ImageURL      string        `json:"image_url"`
	Tags          []string      `json:"tags"`
	Accessibility Accessibility `json:"accessibility"`
	Rating        float64       `json:"rating"`
	Source        string        `json:"source"`
}

// Price is the structured cost of attending. Min == Max == 0 means free.
type Price struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency"`
	Display  string  `json:"display"`
}

// FreePrice is the default price block for sources that only list free events.
func FreePrice() Price {
	return Price{Min: 0, Max: 0, Currency: "USD", Display: "Free"}
}

// Accessibility holds the named accommodation flags an event advertises.
type Accessibility struct {
	WheelchairAccessible       bool `json:"wheelchair_accessible"`
	SignLanguageInterpretation bool `json:"sign_language_interpretation"`
	AudioDescription           bool `json:"audio_description"`
	LargePrintMaterials        bool `json:"large_print_materials"`
}

// Flag resolves a requirement name (as stored in user preferences) to the
// corresponding boolean. Unknown names resolve to false.
func (a Accessibility) Flag(name string) bool {
	switch name {
	case "wheelchair_accessible":
		return a.WheelchairAccessible
	case "sign_language_interpretation":
		return a.SignLanguageInterpretation
	case "audio_description":
		return a.AudioDescription
	case "large_print_materials":
		return a.LargePrintMaterials
	}
	return false
}

// Date is a calendar date without a time component. Events carry *Date so a
// missing date ("TBD") is representable and sorts after all dated events.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date from a time.Time, dropping the clock.
func NewDate(t time.Time) *Date {
	return &Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Time returns the date at midnight UTC, for comparisons.
func (d *Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Before reports whether d falls strictly before other.
func (d *Date) Before(other *Date) bool {
	return d.Time().Before(other.Time())
}

// String formats the date as YYYY-MM-DD.
func (d *Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// DisplayString formats for humans, e.g. "March 01, 2024"; nil renders "Date TBD".
func (d *Date) DisplayString() string {
	if d == nil {
		return "Date TBD"
	}
	return d.Time().Format("January 02, 2006")
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d *Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD" or null.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	d.Year, d.Month, d.Day = t.Year(), t.Month(), t.Day()
	return nil
}

// Budget is an inclusive spend range in the preference profile.
type Budget struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// UserPreferences is the per-conversation preference profile. It is built
// fresh for each request and never persisted.
type UserPreferences struct {
	Categories                []string `json:"categories"`
	Neighborhoods             []string `json:"neighborhoods"`
	Budget                    *Budget  `json:"budget"`
	TimeFrame                 string   `json:"time_frame"`
	DateRange                 []*Date  `json:"date_range"` // [start, end] or empty
	AccessibilityRequirements []string `json:"accessibility_requirements"`
	GroupSize                 string   `json:"group_size"`
}
