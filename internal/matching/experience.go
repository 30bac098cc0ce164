package matching

import (
	"strings"
	"time"

	"github.com/worxstance/worxstance/internal/profile"
)

var (
	seniorTitleMarkers = []string{"senior", "sr.", "sr ", "lead", "principal", "architect", "staff"}
	seniorDescMarkers  = []string{"10+ years", "8+ years", "minimum 7 years"}
	juniorTitleMarkers = []string{"junior", "jr.", "jr ", "entry", "intern"}
	juniorDescMarkers  = []string{"0-2 years", "1-3 years", "entry level"}
	midTitleMarkers    = []string{"mid", "intermediate"}
	midDescMarkers     = []string{"3-5 years", "2-7 years", "4-6 years"}
)

// dateLayouts are tried in order when reading experience dates.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01",
	"Jan 2006",
	"January 2006",
	"01/2006",
	"2006",
}

const daysPerYear = 365

// JobLevel infers the seniority a posting asks for. Senior wins over junior, junior over mid.
func JobLevel(title, description string) Level {
	t := strings.ToLower(title)
	d := strings.ToLower(description)

	switch {
	case containsAny(t, seniorTitleMarkers) || containsAny(d, seniorDescMarkers):
		return LevelSenior
	case containsAny(t, juniorTitleMarkers) ||
		(strings.Contains(t, "associate") && !strings.Contains(t, "senior")) ||
		containsAny(d, juniorDescMarkers):
		return LevelJunior
	case containsAny(t, midTitleMarkers) || containsAny(d, midDescMarkers):
		return LevelMid
	default:
		return LevelUnknown
	}
}

// CandidateLevel infers the candidate's seniority from total years of work history.
func CandidateLevel(history []profile.Experience, now time.Time) Level {
	if len(history) == 0 {
		return LevelUnknown
	}

	years := TotalYears(history, now)
	switch {
	case years >= 7:
		return LevelSenior
	case years >= 3:
		return LevelMid
	case years > 0:
		return LevelJunior
	default:
		return LevelUnknown
	}
}

// TotalYears sums the length of every position, ongoing ones up to now.
// A record with an unreadable date, or ending before it starts, counts as zero.
func TotalYears(history []profile.Experience, now time.Time) float64 {
	var total float64
	for _, e := range history {
		start, ok := parseDate(e.StartDate)
		if !ok {
			continue
		}

		end := now
		if !e.IsOngoing() {
			if end, ok = parseDate(e.EndDate); !ok {
				continue
			}
		}

		days := end.Sub(start).Hours() / 24
		if days <= 0 {
			continue
		}
		total += days / daysPerYear
	}
	return total
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
