package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/worxstance/worxstance/internal/jobs"
)

const includeFlagSetMsg = "include-tracked flag is set"

type trackedFilter struct {
	ignore bool
}

// NewTracked creates a filter that removes postings the candidate already tracks.
func NewTracked(ignore bool) Filter {
	return &trackedFilter{ignore: ignore}
}

func (f *trackedFilter) Name() string { return "tracked" }

func (f *trackedFilter) Disable(string) {}

func (f *trackedFilter) IsEnabled() bool { return true }

func (f *trackedFilter) Validate(*Config) error { return nil }

func (f *trackedFilter) Apply(ctx context.Context, deps Deps, p *jobs.Postings) (*jobs.Postings, Step, error) {
	initial := p.Len()
	if f.ignore {
		if deps.Logger != nil {
			deps.Logger.Info("keeping already tracked postings", zap.String("reason", includeFlagSetMsg))
		}
		return p, Step{Initial: initial, Dropped: 0, Left: p.Len()}, nil
	}

	if deps.Tracked == nil {
		return p, Step{}, fmt.Errorf("tracked jobs store is required")
	}

	ids, err := deps.Tracked.IDs(ctx)
	if err != nil {
		return p, Step{}, fmt.Errorf("list tracked jobs: %w", err)
	}

	excluded := p.Exclude(jobs.PostingIDField, ids)
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding already tracked postings",
			zap.Strings("excluded_postings", excluded),
			zap.Int("postings_left", p.Len()),
		)
	}

	return p, Step{Initial: initial, Dropped: len(excluded), Left: p.Len()}, nil
}

func (f *trackedFilter) Status() Status {
	reason := ""
	if f.ignore {
		reason = "skip requested via flag"
	}
	return Status{
		Name:    f.Name(),
		Enabled: true,
		Reason:  reason,
		Details: map[string]string{"exclude_tracked": strconv.FormatBool(!f.ignore)},
	}
}
