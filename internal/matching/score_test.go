package matching

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/worxstance/worxstance/internal/profile"
)

func newTestScorer() *Scorer {
	return &Scorer{Now: func() time.Time { return referenceNow }}
}

func oneYearProfile() *profile.MasterProfile {
	return &profile.MasterProfile{
		FullName: "Ada",
		Skills:   []string{"python", "REACT.js"},
		Experience: []profile.Experience{
			{Company: "Acme", Role: "Developer", StartDate: "2023-01-01", EndDate: "2024-01-01"},
		},
	}
}

func TestScoreSkillsScenario(t *testing.T) {
	job := Job{
		Title:           "Frontend Developer",
		Location:        "Berlin",
		RequiredSkills:  []string{"Python", "React"},
		PreferredSkills: []string{"Docker"},
	}

	b := newTestScorer().Score(job, oneYearProfile(), Criteria{})

	if !reflect.DeepEqual(b.MatchedRequiredSkills, []string{"python", "REACT.js"}) {
		t.Fatalf("unexpected matched required skills: %v", b.MatchedRequiredSkills)
	}
	if len(b.MissingRequiredSkills) != 0 {
		t.Fatalf("expected no missing required skills, got %v", b.MissingRequiredSkills)
	}
	if !reflect.DeepEqual(b.MissingPreferredSkills, []string{"Docker"}) {
		t.Fatalf("unexpected missing preferred skills: %v", b.MissingPreferredSkills)
	}
	if b.SkillsMatch != 70 {
		t.Fatalf("expected skills match 70, got %d", b.SkillsMatch)
	}
}

func TestScoreExperienceGap(t *testing.T) {
	job := Job{Title: "Senior Staff Engineer"}

	b := newTestScorer().Score(job, oneYearProfile(), Criteria{})

	if b.ExperienceLevel != LevelSenior {
		t.Fatalf("expected senior job level, got %s", b.ExperienceLevel)
	}
	if b.ExperienceMatch != 40 {
		t.Fatalf("expected experience match 40, got %d", b.ExperienceMatch)
	}
}

func TestScoreRemoteJobForRemoteSearch(t *testing.T) {
	candidate := oneYearProfile()
	candidate.Location = "Lisbon, Portugal"

	b := newTestScorer().Score(Job{Title: "Engineer", Location: "Remote"}, candidate, Criteria{IsRemote: true})
	if b.LocationMatch != 100 {
		t.Fatalf("expected location match 100, got %d", b.LocationMatch)
	}
}

func TestScoreWithoutTargetRoles(t *testing.T) {
	b := newTestScorer().Score(Job{Title: "Python Developer"}, oneYearProfile(), Criteria{})
	if b.RoleRelevance != 30 {
		t.Fatalf("expected role relevance 30, got %d", b.RoleRelevance)
	}
}

func TestScoreWithoutJobSkills(t *testing.T) {
	b := newTestScorer().Score(Job{Title: "Engineer", RequiredSkills: []string{}, PreferredSkills: []string{}}, oneYearProfile(), Criteria{})
	if b.SkillsMatch != 50 {
		t.Fatalf("expected skills match 50, got %d", b.SkillsMatch)
	}
}

func TestScoreRequiredOnly(t *testing.T) {
	job := Job{RequiredSkills: []string{"Python", "Go"}}

	b := newTestScorer().Score(job, oneYearProfile(), Criteria{})
	// 50% required matched, preferred neutral: 50*0.7 + 50*0.3
	if b.SkillsMatch != 50 {
		t.Fatalf("expected skills match 50, got %d", b.SkillsMatch)
	}
}

func TestScoreWithoutProfile(t *testing.T) {
	job := Job{
		Title:           "Senior Engineer",
		Location:        "Remote",
		RequiredSkills:  []string{"Go"},
		PreferredSkills: []string{"Kafka"},
	}

	b := newTestScorer().Score(job, nil, Criteria{IsRemote: true})

	if b.OverallScore != 50 {
		t.Fatalf("expected overall 50, got %d", b.OverallScore)
	}
	if b.SkillsMatch != 50 || b.ExperienceMatch != 50 || b.RoleRelevance != 50 {
		t.Fatalf("expected neutral sub-scores, got %+v", b)
	}
	if b.LocationMatch != 100 {
		t.Fatalf("expected location computed from job, got %d", b.LocationMatch)
	}
	if !reflect.DeepEqual(b.MissingRequiredSkills, []string{"Go"}) || !reflect.DeepEqual(b.MissingPreferredSkills, []string{"Kafka"}) {
		t.Fatalf("expected every job skill to be missing, got %v / %v", b.MissingRequiredSkills, b.MissingPreferredSkills)
	}
	if len(b.MatchedRequiredSkills) != 0 || len(b.MatchedPreferredSkills) != 0 {
		t.Fatalf("expected nothing matched")
	}
	if b.ExperienceLevel != LevelUnknown {
		t.Fatalf("expected unknown level, got %s", b.ExperienceLevel)
	}

	job.RequiredSkills[0] = "Rust"
	if b.MissingRequiredSkills[0] != "Go" {
		t.Fatalf("breakdown must not alias job skills")
	}
}

func TestScoreToleratesEmptyProfile(t *testing.T) {
	b := newTestScorer().Score(Job{Title: "Engineer", RequiredSkills: []string{"Go"}}, &profile.MasterProfile{}, Criteria{})

	// nothing matched, preferred neutral: 0*0.7 + 50*0.3
	if b.SkillsMatch != 15 {
		t.Fatalf("expected skills match 15, got %d", b.SkillsMatch)
	}
	if b.RoleRelevance != 30 {
		t.Fatalf("expected base role relevance, got %d", b.RoleRelevance)
	}
	if b.ExperienceMatch != 50 {
		t.Fatalf("expected neutral experience match, got %d", b.ExperienceMatch)
	}
}

func TestScoreInvariants(t *testing.T) {
	titles := []string{"Senior Go Engineer", "Junior Frontend Developer", "Data Scientist", "", "Mid Backend Engineer"}
	locations := []string{"Remote", "Berlin, Germany", "Hybrid - Austin, TX", "", "New York, NY"}
	skillSets := [][]string{nil, {"Go"}, {"Go", "Kafka", "C"}, {"React", "Docker"}}
	candidates := []*profile.MasterProfile{
		nil,
		{},
		{
			Skills:      []string{"golang", "Go", "kafka"},
			TargetRoles: []string{"Go Engineer", "Backend"},
			Location:    "Berlin, Germany",
			Experience:  []profile.Experience{{StartDate: "2015-03-01", EndDate: "Present"}},
		},
		{
			Skills:      []string{"react.js", "CSS"},
			TargetRoles: []string{"Frontend Developer"},
			Location:    "Austin, TX",
			Experience:  []profile.Experience{{StartDate: "bad"}, {StartDate: "2021-01-01", EndDate: "2023-01-01"}},
		},
	}

	s := newTestScorer()
	for ti, title := range titles {
		for li, location := range locations {
			for ri, required := range skillSets {
				for pi, preferred := range skillSets {
					for ci, candidate := range candidates {
						for _, remote := range []bool{false, true} {
							name := fmt.Sprintf("%d/%d/%d/%d/%d/%v", ti, li, ri, pi, ci, remote)
							job := Job{Title: title, Location: location, RequiredSkills: required, PreferredSkills: preferred}
							b := s.Score(job, candidate, Criteria{IsRemote: remote})
							assertInvariants(t, name, job, candidate, b)
						}
					}
				}
			}
		}
	}
}

func assertInvariants(t *testing.T, name string, job Job, candidate *profile.MasterProfile, b *Breakdown) {
	t.Helper()

	for _, v := range []int{b.SkillsMatch, b.ExperienceMatch, b.RoleRelevance, b.LocationMatch, b.OverallScore} {
		if v < 0 || v > 100 {
			t.Fatalf("%s: score out of bounds: %+v", name, b)
		}
	}

	if candidate == nil {
		if b.OverallScore != 50 {
			t.Fatalf("%s: expected overall 50 without profile, got %d", name, b.OverallScore)
		}
	} else if want := Overall(b.SkillsMatch, b.ExperienceMatch, b.RoleRelevance, b.LocationMatch); b.OverallScore != want {
		t.Fatalf("%s: overall %d is not the weighted sum %d", name, b.OverallScore, want)
	}

	if len(b.MatchedRequiredSkills)+len(b.MissingRequiredSkills) != len(job.RequiredSkills) {
		t.Fatalf("%s: required skills not partitioned: %+v", name, b)
	}
	if len(b.MatchedPreferredSkills)+len(b.MissingPreferredSkills) != len(job.PreferredSkills) {
		t.Fatalf("%s: preferred skills not partitioned: %+v", name, b)
	}
}

func TestOverall(t *testing.T) {
	if got := Overall(70, 40, 30, 100); got != 56 {
		t.Fatalf("expected 56, got %d", got)
	}
	if got := Overall(100, 100, 100, 100); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
	if got := Overall(0, 0, 0, 0); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := Overall(50, 50, 30, 100); got != 51 {
		t.Fatalf("expected 51, got %d", got)
	}
}

func TestExperienceScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		job, candidate Level
		expect         int
	}{
		{LevelSenior, LevelSenior, 100},
		{LevelSenior, LevelMid, 70},
		{LevelJunior, LevelMid, 70},
		{LevelSenior, LevelJunior, 40},
		{LevelJunior, LevelSenior, 40},
		{LevelUnknown, LevelSenior, 50},
		{LevelMid, LevelUnknown, 50},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s-%s", tt.job, tt.candidate), func(t *testing.T) {
			t.Parallel()
			if got := ExperienceScore(tt.job, tt.candidate); got != tt.expect {
				t.Fatalf("expected %d, got %d", tt.expect, got)
			}
		})
	}
}

func TestRoleRelevance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		title  string
		roles  []string
		expect int
	}{
		{name: "title contains role", title: "Senior Backend Engineer", roles: []string{"backend engineer"}, expect: 90},
		{name: "role contains title", title: "Engineer", roles: []string{"Backend Engineer"}, expect: 90},
		{name: "shared long word", title: "Senior Backend Developer", roles: []string{"Backend Engineer"}, expect: 60},
		{name: "maximum over roles", title: "Data Scientist", roles: []string{"Backend Engineer", "Data Scientist"}, expect: 90},
		{name: "overlap does not lower exact", title: "Data Scientist", roles: []string{"Data Scientist", "Data Engineer"}, expect: 90},
		{name: "short words ignored", title: "QA Dev", roles: []string{"Dev Lead QA"}, expect: 30},
		{name: "no overlap", title: "QA Tester", roles: []string{"Backend Engineer"}, expect: 30},
		{name: "no roles", title: "QA Tester", expect: 30},
		{name: "blank roles", title: "QA Tester", roles: []string{"", "  "}, expect: 30},
		{name: "blank title", title: "", roles: []string{"Backend Engineer"}, expect: 30},
		{name: "shared first word is only overlap", title: "Senior Designer", roles: []string{"Senior Engineer"}, expect: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := RoleRelevance(tt.title, tt.roles); got != tt.expect {
				t.Fatalf("expected %d, got %d", tt.expect, got)
			}
		})
	}
}

func TestLocationScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		job       string
		candidate string
		remote    bool
		expect    int
	}{
		{name: "remote both", job: "Remote (US)", remote: true, expect: 100},
		{name: "work from home", job: "Work From Home", candidate: "Berlin", remote: true, expect: 100},
		{name: "same city on site", job: "Berlin, Germany", candidate: "berlin, DE", expect: 100},
		{name: "hybrid", job: "Hybrid - Austin, TX", candidate: "Austin, TX", expect: 70},
		{name: "nearby", job: "Greater Austin Area", candidate: "Austin, TX", expect: 80},
		{name: "city while preferring remote", job: "Berlin", candidate: "Berlin", remote: true, expect: 80},
		{name: "remote job on site candidate", job: "Anywhere", candidate: "Berlin", expect: 40},
		{name: "on site job remote candidate", job: "New York, NY", candidate: "Austin, TX", remote: true, expect: 30},
		{name: "neutral", job: "New York, NY", expect: 50},
		{name: "empty city token", job: "New York, NY", candidate: " , TX", expect: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := LocationScore(tt.job, tt.candidate, tt.remote); got != tt.expect {
				t.Fatalf("expected %d, got %d", tt.expect, got)
			}
		})
	}
}

func TestScoreAllKeepsOrder(t *testing.T) {
	list := make([]Job, 0, 20)
	for i := 0; i < 20; i++ {
		list = append(list, Job{Title: fmt.Sprintf("Job %d", i), RequiredSkills: make([]string, i%3)})
	}

	s := newTestScorer()
	s.Workers = 3

	got, err := s.ScoreAll(context.Background(), list, nil, Criteria{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(list) {
		t.Fatalf("expected %d breakdowns, got %d", len(list), len(got))
	}
	for i, b := range got {
		if len(b.MissingRequiredSkills) != i%3 {
			t.Fatalf("breakdown %d is out of order", i)
		}
	}
}

func TestScoreAllHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestScorer().ScoreAll(ctx, []Job{{Title: "a"}}, nil, Criteria{}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
