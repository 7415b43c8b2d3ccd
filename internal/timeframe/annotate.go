package timeframe

import (
	"fmt"
	"regexp"
	"time"
)

// phrasePatterns pairs each recognizable phrase with its frame. Order matters:
// the weekend phrases must come before the week phrases so "this weekend" is
// never half-matched, and every pattern is word-bounded and case-insensitive.
var phrasePatterns = []struct {
	re    *regexp.Regexp
	frame Frame
}{
	{regexp.MustCompile(`(?i)\bthis weekend\b`), ThisWeekend},
	{regexp.MustCompile(`(?i)\bnext weekend\b`), NextWeekend},
	{regexp.MustCompile(`(?i)\bthis week\b`), ThisWeek},
	{regexp.MustCompile(`(?i)\bnext week\b`), NextWeek},
	{regexp.MustCompile(`(?i)\bthis month\b`), ThisMonth},
	{regexp.MustCompile(`(?i)\bnext month\b`), NextMonth},
	{regexp.MustCompile(`(?i)\btoday\b`), Today},
	{regexp.MustCompile(`(?i)\btomorrow\b`), Tomorrow},
	{regexp.MustCompile(`(?i)\btonight\b`), Tonight},
	{regexp.MustCompile(`(?i)\bthis evening\b`), ThisEvening},
}

// Annotate rewrites free text for the conversational agent: every recognized
// time-frame phrase gets an inline "(date range: ...)" note resolved against
// now, and all other text is left untouched.
//
//	"art shows this weekend" ->
//	"art shows this weekend (date range: 2024-03-02 to 2024-03-03)"
func Annotate(text string, now time.Time) string {
	out := text
	for _, p := range phrasePatterns {
		if !p.re.MatchString(out) {
			continue
		}
		start, end, err := Resolve(p.frame, now)
		if err != nil {
			continue
		}
		note := fmt.Sprintf(" (date range: %s to %s)",
			start.Format("2006-01-02"), end.Format("2006-01-02"))
		out = p.re.ReplaceAllString(out, "${0}"+note)
	}
	return out
}
