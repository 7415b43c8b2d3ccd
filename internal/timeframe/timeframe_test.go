package timeframe

import (
	"strings"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolve(t *testing.T) {
	cases := []struct {
		name      string
		frame     Frame
		ref       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "today",
			frame:     Today,
			ref:       date(2024, time.March, 13),
			wantStart: date(2024, time.March, 13),
			wantEnd:   date(2024, time.March, 13),
		},
		{
			name:      "tonight is today",
			frame:     Tonight,
			ref:       date(2024, time.March, 13),
			wantStart: date(2024, time.March, 13),
			wantEnd:   date(2024, time.March, 13),
		},
		{
			name:      "tomorrow",
			frame:     Tomorrow,
			ref:       date(2024, time.March, 13),
			wantStart: date(2024, time.March, 14),
			wantEnd:   date(2024, time.March, 14),
		},
		{
			// 2024-03-13 is a Wednesday; the coming Saturday is the 16th.
			name:      "this weekend from midweek",
			frame:     ThisWeekend,
			ref:       date(2024, time.March, 13),
			wantStart: date(2024, time.March, 16),
			wantEnd:   date(2024, time.March, 17),
		},
		{
			// A Saturday reference is its own weekend start.
			name:      "this weekend from saturday",
			frame:     ThisWeekend,
			ref:       date(2024, time.March, 16),
			wantStart: date(2024, time.March, 16),
			wantEnd:   date(2024, time.March, 17),
		},
		{
			name:      "next weekend",
			frame:     NextWeekend,
			ref:       date(2024, time.March, 13),
			wantStart: date(2024, time.March, 23),
			wantEnd:   date(2024, time.March, 24),
		},
		{
			// Monday the 11th through Sunday the 17th.
			name:      "this week",
			frame:     ThisWeek,
			ref:       date(2024, time.March, 13),
			wantStart: date(2024, time.March, 11),
			wantEnd:   date(2024, time.March, 17),
		},
		{
			name:      "next week",
			frame:     NextWeek,
			ref:       date(2024, time.March, 13),
			wantStart: date(2024, time.March, 18),
			wantEnd:   date(2024, time.March, 24),
		},
		{
			name:      "this month mid-january",
			frame:     ThisMonth,
			ref:       date(2024, time.January, 15),
			wantStart: date(2024, time.January, 1),
			wantEnd:   date(2024, time.January, 31),
		},
		{
			// December must not roll the end bound into the next year.
			name:      "this month december",
			frame:     ThisMonth,
			ref:       date(2024, time.December, 15),
			wantStart: date(2024, time.December, 1),
			wantEnd:   date(2024, time.December, 31),
		},
		{
			name:      "next month february leap year",
			frame:     NextMonth,
			ref:       date(2024, time.January, 15),
			wantStart: date(2024, time.February, 1),
			wantEnd:   date(2024, time.February, 29),
		},
		{
			name:      "next month from december rolls the year",
			frame:     NextMonth,
			ref:       date(2024, time.December, 15),
			wantStart: date(2025, time.January, 1),
			wantEnd:   date(2025, time.January, 31),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end, err := Resolve(tc.frame, tc.ref)
			if err != nil {
				t.Fatalf("Resolve(%q) error: %v", tc.frame, err)
			}
			if !start.Equal(tc.wantStart) || !end.Equal(tc.wantEnd) {
				t.Errorf("Resolve(%q, %s) = (%s, %s), want (%s, %s)",
					tc.frame, tc.ref.Format("2006-01-02"),
					start.Format("2006-01-02"), end.Format("2006-01-02"),
					tc.wantStart.Format("2006-01-02"), tc.wantEnd.Format("2006-01-02"))
			}
		})
	}
}

func TestResolveInvariants(t *testing.T) {
	frames := []Frame{
		Today, Tonight, ThisEvening, Tomorrow,
		ThisWeekend, NextWeekend, ThisWeek, NextWeek, ThisMonth, NextMonth,
	}
	// Sweep a couple of weeks of reference dates across a year boundary.
	for ref := date(2024, time.December, 20); ref.Before(date(2025, time.January, 10)); ref = ref.AddDate(0, 0, 1) {
		for _, f := range frames {
			s1, e1, err := Resolve(f, ref)
			if err != nil {
				t.Fatalf("Resolve(%q, %s): %v", f, ref.Format("2006-01-02"), err)
			}
			if s1.After(e1) {
				t.Errorf("Resolve(%q, %s): start %s after end %s",
					f, ref.Format("2006-01-02"), s1, e1)
			}
			s2, e2, _ := Resolve(f, ref)
			if !s1.Equal(s2) || !e1.Equal(e2) {
				t.Errorf("Resolve(%q, %s) not deterministic", f, ref.Format("2006-01-02"))
			}
		}
	}
}

func TestResolveUnknownFrame(t *testing.T) {
	if _, _, err := Resolve(Frame("someday"), date(2024, time.March, 13)); err == nil {
		t.Fatal("expected error for unknown frame")
	}
}

func TestAnnotate(t *testing.T) {
	now := date(2024, time.March, 13) // Wednesday

	got := Annotate("Find underground art shows this weekend", now)
	want := "Find underground art shows this weekend (date range: 2024-03-16 to 2024-03-17)"
	if got != want {
		t.Errorf("Annotate = %q, want %q", got, want)
	}
}

func TestAnnotateCaseInsensitive(t *testing.T) {
	now := date(2024, time.March, 13)
	got := Annotate("Anything fun Tomorrow?", now)
	want := "Anything fun Tomorrow (date range: 2024-03-14 to 2024-03-14)?"
	if got != want {
		t.Errorf("Annotate = %q, want %q", got, want)
	}
}

func TestAnnotateMultiplePhrases(t *testing.T) {
	now := date(2024, time.March, 13)
	got := Annotate("concerts this week or next month", now)
	if !strings.Contains(got, "this week (date range: 2024-03-11 to 2024-03-17)") {
		t.Errorf("missing this-week annotation in %q", got)
	}
	if !strings.Contains(got, "next month (date range: 2024-04-01 to 2024-04-30)") {
		t.Errorf("missing next-month annotation in %q", got)
	}
}

func TestAnnotateWordBoundary(t *testing.T) {
	now := date(2024, time.March, 13)
	// "todays" must not trigger the "today" pattern.
	in := "todays best picks"
	if got := Annotate(in, now); got != in {
		t.Errorf("Annotate(%q) = %q, want unchanged", in, got)
	}
}

func TestAnnotateLeavesPlainTextAlone(t *testing.T) {
	now := date(2024, time.March, 13)
	in := "jazz clubs in Brooklyn"
	if got := Annotate(in, now); got != in {
		t.Errorf("Annotate(%q) = %q, want unchanged", in, got)
	}
}

func TestForPreference(t *testing.T) {
	now := date(2024, time.March, 13)
	s, e, ok := ForPreference("This weekend", now)
	if !ok || !s.Equal(date(2024, time.March, 16)) || !e.Equal(date(2024, time.March, 17)) {
		t.Errorf("ForPreference(This weekend) = (%s, %s, %v)", s, e, ok)
	}
	if _, _, ok := ForPreference("Anytime", now); ok {
		t.Error("ForPreference(Anytime) should not resolve")
	}
}
