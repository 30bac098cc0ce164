package matching

import (
	"math"
	"testing"
	"time"

	"github.com/worxstance/worxstance/internal/profile"
)

var referenceNow = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func TestJobLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		title       string
		description string
		expect      Level
	}{
		{name: "senior and staff", title: "Senior Staff Engineer", expect: LevelSenior},
		{name: "lead", title: "Tech Lead, Payments", expect: LevelSenior},
		{name: "abbreviated senior", title: "Sr. Data Analyst", expect: LevelSenior},
		{name: "senior years in description", title: "Software Engineer", description: "You bring 10+ Years of experience", expect: LevelSenior},
		{name: "senior beats junior", title: "Senior Engineer", description: "entry level applicants welcome", expect: LevelSenior},
		{name: "junior", title: "Junior Developer", expect: LevelJunior},
		{name: "intern", title: "Software Intern", expect: LevelJunior},
		{name: "associate", title: "Associate Engineer", expect: LevelJunior},
		{name: "senior associate", title: "Senior Associate", expect: LevelSenior},
		{name: "junior years in description", title: "Software Engineer", description: "1-3 years of Go", expect: LevelJunior},
		{name: "junior beats mid", title: "Junior Engineer", description: "3-5 years preferred", expect: LevelJunior},
		{name: "mid title", title: "Mid-level Backend Engineer", expect: LevelMid},
		{name: "intermediate", title: "Intermediate QA", expect: LevelMid},
		{name: "mid years in description", title: "Backend Engineer", description: "4-6 years building APIs", expect: LevelMid},
		{name: "unknown", title: "Backend Engineer", description: "Build APIs in Go", expect: LevelUnknown},
		{name: "empty", expect: LevelUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := JobLevel(tt.title, tt.description); got != tt.expect {
				t.Fatalf("expected %s, got %s", tt.expect, got)
			}
		})
	}
}

func TestCandidateLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		history []profile.Experience
		expect  Level
	}{
		{name: "no history", expect: LevelUnknown},
		{
			name:    "one year",
			history: []profile.Experience{{StartDate: "2023-01-01", EndDate: "2024-01-01"}},
			expect:  LevelJunior,
		},
		{
			name: "mid across two jobs",
			history: []profile.Experience{
				{StartDate: "2019-01-01", EndDate: "2021-01-01"},
				{StartDate: "2021-02-01", EndDate: "2022-06-01"},
			},
			expect: LevelMid,
		},
		{
			name:    "ongoing senior",
			history: []profile.Experience{{StartDate: "2017-01-01", EndDate: "Present"}},
			expect:  LevelSenior,
		},
		{
			name:    "ongoing without end date",
			history: []profile.Experience{{StartDate: "2020-01-01"}},
			expect:  LevelMid,
		},
		{
			name:    "sentinel is case insensitive",
			history: []profile.Experience{{StartDate: "2023-06-01", EndDate: "present"}},
			expect:  LevelJunior,
		},
		{
			name:    "malformed start date",
			history: []profile.Experience{{StartDate: "last spring", EndDate: "2023-01-01"}},
			expect:  LevelUnknown,
		},
		{
			name:    "malformed end date",
			history: []profile.Experience{{StartDate: "2020-01-01", EndDate: "soon"}},
			expect:  LevelUnknown,
		},
		{
			name:    "end before start",
			history: []profile.Experience{{StartDate: "2022-01-01", EndDate: "2021-01-01"}},
			expect:  LevelUnknown,
		},
		{
			name: "malformed record does not spoil the rest",
			history: []profile.Experience{
				{StartDate: "n/a"},
				{StartDate: "2019-01-01", EndDate: "2023-01-01"},
			},
			expect: LevelMid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CandidateLevel(tt.history, referenceNow); got != tt.expect {
				t.Fatalf("expected %s, got %s", tt.expect, got)
			}
		})
	}
}

func TestTotalYears(t *testing.T) {
	history := []profile.Experience{
		{StartDate: "2023-01-01", EndDate: "2024-01-01"},
		{StartDate: "2022-01-01T00:00:00Z", EndDate: "2023-01-01T00:00:00Z"},
	}

	got := TotalYears(history, referenceNow)
	if math.Abs(got-2) > 1e-9 {
		t.Fatalf("expected 2 years, got %v", got)
	}
}

func TestTotalYearsMonthNames(t *testing.T) {
	cases := []struct {
		start, end string
	}{
		{"Jan 2020", "Jan 2023"},
		{"January 2020", "January 2023"},
		{"01/2020", "01/2023"},
	}

	for _, tc := range cases {
		t.Run(tc.start, func(t *testing.T) {
			got := TotalYears([]profile.Experience{{StartDate: tc.start, EndDate: tc.end}}, referenceNow)
			if math.Abs(got-3) > 0.01 {
				t.Fatalf("expected about 3 years, got %v", got)
			}
		})
	}
}
