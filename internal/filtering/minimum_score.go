package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/worxstance/worxstance/internal/jobs"
	"github.com/worxstance/worxstance/internal/logger"
)

type minimumScoreFilter struct {
	disabled bool
	reason   string
	minimum  int
}

// NewMinimumScore creates a filter that drops postings whose match score is below the configured minimum.
func NewMinimumScore() Filter {
	return &minimumScoreFilter{}
}

func (f *minimumScoreFilter) Name() string { return "minimum_score" }

func (f *minimumScoreFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *minimumScoreFilter) IsEnabled() bool { return !f.disabled }

func (f *minimumScoreFilter) Validate(cfg *Config) error {
	f.minimum = 0
	if cfg != nil {
		f.minimum = cfg.MinimumScore
	}
	if f.minimum < 0 || f.minimum > 100 {
		return fmt.Errorf("minimum score must be between 0 and 100, got %d", f.minimum)
	}
	return nil
}

func (f *minimumScoreFilter) Apply(_ context.Context, deps Deps, p *jobs.Postings) (*jobs.Postings, Step, error) {
	initial := p.Len()
	if f.minimum == 0 {
		return p, Step{Initial: initial, Dropped: 0, Left: p.Len()}, nil
	}

	kept := make([]*jobs.Posting, 0, initial)
	for _, posting := range p.Items {
		if posting.MatchScore < f.minimum {
			if deps.Logger != nil {
				deps.Logger.Info("posting rejected by score threshold", append(logger.PostingFields(posting.ID, posting.Company, posting.Title),
					zap.Int("score", posting.MatchScore),
					zap.Int("threshold", f.minimum),
				)...)
			}
			continue
		}
		kept = append(kept, posting)
	}
	p.Items = kept

	return p, Step{Initial: initial, Dropped: initial - p.Len(), Left: p.Len()}, nil
}

func (f *minimumScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum_score": strconv.Itoa(f.minimum)},
	}
}
