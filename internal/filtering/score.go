package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/worxstance/worxstance/internal/jobs"
	"github.com/worxstance/worxstance/internal/logger"
	"github.com/worxstance/worxstance/internal/matching"
)

type scoreFilter struct {
	disabled   bool
	reason     string
	breakdowns map[string]*matching.Breakdown
}

// NewScore creates the step that attaches a match breakdown to every posting. It drops nothing.
func NewScore() Filter {
	return &scoreFilter{}
}

func (f *scoreFilter) Name() string { return "score" }

func (f *scoreFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *scoreFilter) IsEnabled() bool { return !f.disabled }

func (f *scoreFilter) Validate(*Config) error { return nil }

func (f *scoreFilter) Apply(ctx context.Context, deps Deps, p *jobs.Postings) (*jobs.Postings, Step, error) {
	initial := p.Len()

	scorer := deps.Scorer
	if scorer == nil {
		scorer = matching.NewScorer()
	}
	if deps.Profile == nil && deps.Logger != nil {
		deps.Logger.Warn("no profile loaded; every posting gets neutral scores")
	}

	list := make([]matching.Job, 0, initial)
	for _, posting := range p.Items {
		list = append(list, posting.ForMatching())
	}

	results, err := scorer.ScoreAll(ctx, list, deps.Profile, deps.Criteria)
	if err != nil {
		return p, Step{}, fmt.Errorf("scoring postings: %w", err)
	}

	f.breakdowns = make(map[string]*matching.Breakdown, len(results))
	for i, posting := range p.Items {
		posting.ApplyMatch(results[i])
		f.breakdowns[posting.ID] = results[i]

		if deps.Logger != nil {
			deps.Logger.Debug("posting scored", append(logger.PostingFields(posting.ID, posting.Company, posting.Title),
				zap.Int("overall", results[i].OverallScore),
				zap.Int("skills", results[i].SkillsMatch),
				zap.Int("experience", results[i].ExperienceMatch),
				zap.Int("role", results[i].RoleRelevance),
				zap.Int("location", results[i].LocationMatch),
			)...)
		}
	}

	return p, Step{Initial: initial, Dropped: 0, Left: p.Len()}, nil
}

func (f *scoreFilter) Breakdowns() map[string]*matching.Breakdown {
	if f.breakdowns == nil {
		return map[string]*matching.Breakdown{}
	}
	return f.breakdowns
}

func (f *scoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"scored": strconv.Itoa(len(f.breakdowns))},
	}
}
