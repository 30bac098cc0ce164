package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/worxstance/worxstance/internal/jobs"
	"github.com/worxstance/worxstance/internal/matching"
	"github.com/worxstance/worxstance/internal/profile"
)

// Filter represents a single filtering step applied to postings.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, p *jobs.Postings) (*jobs.Postings, Step, error)
}

// TrackedIDs lists the postings already tracked by the candidate.
type TrackedIDs interface {
	IDs(ctx context.Context) ([]string, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Scorer   *matching.Scorer
	Profile  *profile.MasterProfile
	Criteria matching.Criteria
	Tracked  TrackedIDs
	Logger   *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	MinimumScore int      `mapstructure:"minimum-score"`
	ExcludeFile  string   `mapstructure:"exclude-file"`
	Companies    []string `mapstructure:"companies"`
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// Default returns the steps in the order they run: scoring first so later steps can use the breakdowns.
func Default(includeTracked bool) []Filter {
	return []Filter{
		NewScore(),
		NewCompanies(),
		NewExcludeFile(),
		NewTracked(includeTracked),
		NewMinimumScore(),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially, returning the remaining postings and
// the breakdowns collected along the way keyed by posting id.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, p *jobs.Postings) (*jobs.Postings, map[string]*matching.Breakdown, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	breakdowns := make(map[string]*matching.Breakdown)
	for _, step := range steps {
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Info("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, p)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		p = next

		if collector, ok := step.(interface {
			Breakdowns() map[string]*matching.Breakdown
		}); ok {
			for id, b := range collector.Breakdowns() {
				breakdowns[id] = b
			}
		}
	}

	return p, breakdowns, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
