package filtering

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/worxstance/worxstance/internal/jobs"
	"github.com/worxstance/worxstance/internal/matching"
	"github.com/worxstance/worxstance/internal/profile"
)

type stubTracked struct {
	ids []string
	err error
}

func (s stubTracked) IDs(context.Context) ([]string, error) {
	return s.ids, s.err
}

func testPostings() *jobs.Postings {
	return &jobs.Postings{Items: []*jobs.Posting{
		{
			ID:             "go",
			Title:          "Senior Go Engineer",
			Company:        "Acme",
			Location:       "Remote",
			Description:    "Backend services",
			RequiredSkills: []string{"Go", "PostgreSQL"},
		},
		{
			ID:             "ios",
			Title:          "iOS Developer",
			Company:        "Globex",
			Location:       "Tokyo, Japan",
			RequiredSkills: []string{"Swift", "Objective-C"},
		},
		{
			ID:             "tracked",
			Title:          "Go Developer",
			Company:        "Initech",
			Location:       "Berlin, Germany",
			RequiredSkills: []string{"Go"},
		},
	}}
}

func testDeps(logger *zap.Logger, tracked TrackedIDs) Deps {
	scorer := matching.NewScorer()
	scorer.Now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

	return Deps{
		Scorer: scorer,
		Profile: &profile.MasterProfile{
			FullName:    "Ada",
			Location:    "Berlin, Germany",
			Skills:      []string{"Go", "Postgres"},
			TargetRoles: []string{"Go Engineer"},
			Experience: []profile.Experience{
				{Company: "X", Role: "Engineer", StartDate: "2016-01-01", EndDate: "Present"},
			},
		},
		Criteria: matching.Criteria{Location: "Berlin, Germany", IsRemote: true},
		Tracked:  tracked,
		Logger:   logger,
	}
}

func TestRunDefaultPipeline(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	deps := testDeps(zap.New(core), stubTracked{ids: []string{"tracked"}})

	cfg := &Config{MinimumScore: 50}
	left, breakdowns, err := Run(context.Background(), cfg, deps, Default(false), testPostings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(left.IDs(), []string{"go"}) {
		t.Fatalf("unexpected postings left: %v", left.IDs())
	}
	if len(breakdowns) != 3 {
		t.Fatalf("expected breakdowns for every scored posting, got %d", len(breakdowns))
	}

	goMatch := breakdowns["go"]
	if goMatch.SkillsMatch != 85 || goMatch.ExperienceLevel != matching.LevelSenior || goMatch.LocationMatch != 100 {
		t.Fatalf("unexpected breakdown: %+v", goMatch)
	}
	if left.Items[0].Match != goMatch || left.Items[0].MatchScore != goMatch.OverallScore {
		t.Fatalf("expected breakdown to be attached to the posting")
	}
	if breakdowns["ios"].OverallScore >= 50 {
		t.Fatalf("expected ios posting to score below threshold, got %d", breakdowns["ios"].OverallScore)
	}

	steps := observed.FilterMessage("filter step").All()
	if len(steps) != 5 {
		t.Fatalf("expected 5 step entries, got %d", len(steps))
	}
	tracked := steps[3].ContextMap()
	if tracked["name"] != "tracked" || tracked["dropped"] != int64(1) {
		t.Fatalf("unexpected tracked step log: %v", tracked)
	}
}

func TestRunIncludeTracked(t *testing.T) {
	deps := testDeps(zap.NewNop(), nil)

	left, _, err := Run(context.Background(), &Config{}, deps, Default(true), testPostings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if left.Len() != 3 {
		t.Fatalf("expected every posting to be kept, got %v", left.IDs())
	}
}

func TestRunTrackedRequiresStore(t *testing.T) {
	deps := testDeps(nil, nil)

	if _, _, err := Run(context.Background(), &Config{}, deps, []Filter{NewTracked(false)}, testPostings()); err == nil {
		t.Fatal("expected error without tracked store")
	}

	deps.Tracked = stubTracked{err: errors.New("store down")}
	if _, _, err := Run(context.Background(), &Config{}, deps, []Filter{NewTracked(false)}, testPostings()); err == nil {
		t.Fatal("expected store error to propagate")
	}
}

func TestRunValidatesBeforeApplying(t *testing.T) {
	deps := testDeps(nil, stubTracked{})
	postings := testPostings()

	_, _, err := Run(context.Background(), &Config{MinimumScore: 120}, deps, Default(false), postings)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if postings.Items[0].Match != nil {
		t.Fatal("no step should run when validation fails")
	}
}

func TestDisabledStepIsSkipped(t *testing.T) {
	deps := testDeps(nil, stubTracked{})
	steps := Default(false)
	DisableByName(steps, "minimum_score", "manual review")

	left, _, err := Run(context.Background(), &Config{MinimumScore: 99}, deps, steps, testPostings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if left.Len() != 3 {
		t.Fatalf("expected nothing dropped, got %v", left.IDs())
	}

	for _, st := range Describe(steps) {
		if st.Name == "minimum_score" && (st.Enabled || st.Reason != "manual review") {
			t.Fatalf("unexpected status: %+v", st)
		}
	}
}

func TestCompaniesAndExcludeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")
	excluded := &jobs.ExcludedPostings{Items: []*jobs.ExcludedPosting{{ID: "ios"}}}
	if err := excluded.ToFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deps := testDeps(nil, stubTracked{})
	cfg := &Config{ExcludeFile: path, Companies: []string{"Initech"}}

	left, _, err := Run(context.Background(), cfg, deps, []Filter{NewCompanies(), NewExcludeFile()}, testPostings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(left.IDs(), []string{"go"}) {
		t.Fatalf("unexpected postings left: %v", left.IDs())
	}
}

func TestScoreWithoutProfileIsNeutral(t *testing.T) {
	deps := testDeps(nil, nil)
	deps.Profile = nil

	left, breakdowns, err := Run(context.Background(), &Config{}, deps, []Filter{NewScore()}, testPostings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range left.Items {
		if p.MatchScore != 50 || breakdowns[p.ID].OverallScore != 50 {
			t.Fatalf("expected neutral score for %s, got %d", p.ID, p.MatchScore)
		}
	}
}
