package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "embed"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/worxstance/worxstance/internal/ai"
	"github.com/worxstance/worxstance/internal/jobs"
	"github.com/worxstance/worxstance/internal/profile"
)

//go:embed discover_prompt.md
var discoverTemplate string

const defaultDiscoverLimit = 10

// SearchQuery is what the candidate is looking for.
type SearchQuery struct {
	Role            string `mapstructure:"role" validate:"min=2"`
	Location        string `mapstructure:"location" validate:"min=2"`
	Remote          bool   `mapstructure:"remote"`
	ExperienceLevel string `mapstructure:"experience-level" validate:"omitempty,oneof=entry mid senior lead executive"`
	Limit           int    `mapstructure:"limit" validate:"gte=0,lte=50"`
}

var validate = validator.New()

// Validate trims the query and checks it.
func (q *SearchQuery) Validate() error {
	q.Role = strings.TrimSpace(q.Role)
	q.Location = strings.TrimSpace(q.Location)
	q.ExperienceLevel = strings.ToLower(strings.TrimSpace(q.ExperienceLevel))

	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("invalid search: %w", err)
	}
	return nil
}

var discoverySchema = &ai.Schema{
	Type: ai.TypeObject,
	Properties: map[string]*ai.Schema{
		"recommendedJobs": {
			Type: ai.TypeArray,
			Items: &ai.Schema{
				Type: ai.TypeObject,
				Properties: map[string]*ai.Schema{
					"title":           {Type: ai.TypeString, Description: "Job title"},
					"company":         {Type: ai.TypeString, Description: "Company name"},
					"location":        {Type: ai.TypeString, Description: "Location (City, State or Remote)"},
					"salaryRange":     {Type: ai.TypeString, Description: "Estimated salary range if available, else 'Not listed'"},
					"description":     {Type: ai.TypeString, Description: "Brief summary of the job description (approx 200 chars)"},
					"url":             {Type: ai.TypeString, Description: "Direct link to the job posting"},
					"matchScore":      {Type: ai.TypeNumber, Description: "Estimated match score (0-100) based on the candidate"},
					"matchRationale":  {Type: ai.TypeString, Description: "Why this job is a good fit"},
					"requiredSkills":  {Type: ai.TypeArray, Items: &ai.Schema{Type: ai.TypeString}},
					"preferredSkills": {Type: ai.TypeArray, Items: &ai.Schema{Type: ai.TypeString}},
				},
				Required: []string{"title", "company", "location", "description", "matchScore", "matchRationale"},
			},
		},
	},
	Required: []string{"recommendedJobs"},
}

type recommendation struct {
	Title           string   `json:"title"`
	Company         string   `json:"company"`
	Location        string   `json:"location"`
	SalaryRange     string   `json:"salaryRange"`
	Description     string   `json:"description"`
	URL             string   `json:"url"`
	MatchScore      float64  `json:"matchScore"`
	MatchRationale  string   `json:"matchRationale"`
	RequiredSkills  []string `json:"requiredSkills"`
	PreferredSkills []string `json:"preferredSkills"`
}

type discoveryReply struct {
	RecommendedJobs []recommendation `json:"recommendedJobs"`
}

// Discoverer asks a search-grounded model for open postings that fit a candidate.
type Discoverer struct {
	completer ai.Completer
	logger    *zap.Logger
}

func NewDiscoverer(completer ai.Completer, logger *zap.Logger) *Discoverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discoverer{completer: completer, logger: logger}
}

// Discover returns the recommended postings in the order the model ranked them.
// MatchScore holds the model's estimate until the postings are scored locally.
func (d *Discoverer) Discover(ctx context.Context, q SearchQuery, candidate *profile.MasterProfile) (*jobs.Postings, error) {
	if d == nil || d.completer == nil {
		return nil, errors.New("discoverer is not initialized")
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	prompt, err := buildDiscoverPrompt(q, candidate)
	if err != nil {
		return nil, err
	}

	resp, err := d.completer.Complete(ctx, &ai.Request{
		Prompt:    prompt,
		Schema:    discoverySchema,
		WebSearch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("discover jobs: %w", err)
	}

	var reply discoveryReply
	if err := resp.Decode(&reply); err != nil {
		return nil, fmt.Errorf("discover jobs: %w", err)
	}

	postings := &jobs.Postings{}
	for _, rec := range reply.RecommendedJobs {
		p := &jobs.Posting{
			Title:           strings.TrimSpace(rec.Title),
			Company:         strings.TrimSpace(rec.Company),
			Location:        strings.TrimSpace(rec.Location),
			SalaryRange:     strings.TrimSpace(rec.SalaryRange),
			URL:             strings.TrimSpace(rec.URL),
			Description:     rec.Description,
			MatchScore:      clampScore(rec.MatchScore),
			MatchRationale:  strings.TrimSpace(rec.MatchRationale),
			RequiredSkills:  nonNil(rec.RequiredSkills),
			PreferredSkills: nonNil(rec.PreferredSkills),
		}
		if p.SalaryRange == "" {
			p.SalaryRange = jobs.NotListed
		}
		if p.URL != "" && p.AnalyzeURL().Quality == jobs.URLInvalid {
			p.URL = ""
		}
		if err := p.Validate(); err != nil {
			d.logger.Warn("skipping recommended job", zap.String("title", p.Title), zap.Error(err))
			continue
		}
		p.EnsureID()
		postings.Items = append(postings.Items, p)
	}

	d.logger.Info("discovered jobs",
		zap.String("role", q.Role),
		zap.String("location", q.Location),
		zap.Int("count", postings.Len()),
	)

	return postings, nil
}

type candidateSummary struct {
	Location    string   `json:"location,omitempty"`
	Headline    string   `json:"headline,omitempty"`
	TargetRoles []string `json:"targetRoles,omitempty"`
	Skills      []string `json:"skills,omitempty"`
	Roles       []string `json:"roles,omitempty"`
}

func buildDiscoverPrompt(q SearchQuery, candidate *profile.MasterProfile) (string, error) {
	summary := candidateSummary{}
	if candidate != nil {
		summary = candidateSummary{
			Location:    candidate.Location,
			Headline:    candidate.Headline,
			TargetRoles: candidate.TargetRoles,
			Skills:      candidate.Skills,
			Roles:       candidate.Titles(),
		}
	}

	profileJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal candidate summary: %w", err)
	}

	level := q.ExperienceLevel
	if level == "" {
		level = "any"
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultDiscoverLimit
	}

	replacer := strings.NewReplacer(
		"{{ROLE}}", q.Role,
		"{{LOCATION}}", q.Location,
		"{{REMOTE}}", strconv.FormatBool(q.Remote),
		"{{LEVEL}}", level,
		"{{PROFILE_JSON}}", string(profileJSON),
		"{{LIMIT}}", strconv.Itoa(limit),
	)
	return replacer.Replace(discoverTemplate), nil
}

func clampScore(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return int(v + 0.5)
	}
}
