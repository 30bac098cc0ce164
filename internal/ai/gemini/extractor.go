package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	_ "embed"

	"go.uber.org/zap"

	"github.com/worxstance/worxstance/internal/ai"
	"github.com/worxstance/worxstance/internal/jobs"
)

//go:embed extract_prompt.md
var extractInstruction string

const extractTemperature = 0.3

var extractionSchema = &ai.Schema{
	Type: ai.TypeObject,
	Properties: map[string]*ai.Schema{
		"title":       {Type: ai.TypeString, Description: "Job title"},
		"company":     {Type: ai.TypeString, Description: "Company name"},
		"location":    {Type: ai.TypeString, Description: "Location (City, State or Remote)"},
		"salaryRange": {Type: ai.TypeString, Description: "Salary range if available, else 'Not listed'"},
		"description": {Type: ai.TypeString, Description: "Full job description text"},
		"requiredSkills": {
			Type:        ai.TypeArray,
			Items:       &ai.Schema{Type: ai.TypeString},
			Description: "Technical skills, tools or technologies explicitly required",
		},
		"preferredSkills": {
			Type:        ai.TypeArray,
			Items:       &ai.Schema{Type: ai.TypeString},
			Description: "Skills mentioned as preferred, nice to have, bonus or plus",
		},
	},
	Required: []string{"title", "company", "location", "description", "requiredSkills", "preferredSkills"},
}

type extraction struct {
	Title           string   `json:"title"`
	Company         string   `json:"company"`
	Location        string   `json:"location"`
	SalaryRange     string   `json:"salaryRange"`
	Description     string   `json:"description"`
	RequiredSkills  []string `json:"requiredSkills"`
	PreferredSkills []string `json:"preferredSkills"`
}

// Extractor turns a job posting URL into a posting using a search-grounded model.
type Extractor struct {
	completer ai.Completer
	logger    *zap.Logger
}

func NewExtractor(completer ai.Completer, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{completer: completer, logger: logger}
}

// Extract reads the posting behind rawURL. titleHint is used when the model reports no title.
func (e *Extractor) Extract(ctx context.Context, rawURL, titleHint string) (*jobs.Posting, error) {
	if e == nil || e.completer == nil {
		return nil, errors.New("extractor is not initialized")
	}

	rawURL = strings.TrimSpace(rawURL)
	if u, err := url.Parse(rawURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid job url %q", rawURL)
	}
	titleHint = strings.TrimSpace(titleHint)

	hint := titleHint
	if hint == "" {
		hint = "none"
	}
	prompt := fmt.Sprintf("Extract job details from this URL: %s\n\nUser-provided job title: %s", rawURL, hint)

	resp, err := e.completer.Complete(ctx, &ai.Request{
		Prompt:            prompt,
		SystemInstruction: extractInstruction,
		Temperature:       ai.Temperature(extractTemperature),
		Schema:            extractionSchema,
		WebSearch:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("extract job from %s: %w", rawURL, err)
	}

	var data extraction
	if err := resp.Decode(&data); err != nil {
		return nil, fmt.Errorf("extract job from %s: %w", rawURL, err)
	}

	posting := &jobs.Posting{
		Title:           strings.TrimSpace(data.Title),
		Company:         strings.TrimSpace(data.Company),
		Location:        strings.TrimSpace(data.Location),
		SalaryRange:     strings.TrimSpace(data.SalaryRange),
		URL:             rawURL,
		Description:     data.Description,
		RequiredSkills:  nonNil(data.RequiredSkills),
		PreferredSkills: nonNil(data.PreferredSkills),
	}
	if posting.Title == "" {
		posting.Title = titleHint
	}
	if posting.SalaryRange == "" {
		posting.SalaryRange = jobs.NotListed
	}
	if err := posting.Validate(); err != nil {
		return nil, fmt.Errorf("extract job from %s: %w", rawURL, err)
	}
	posting.EnsureID()

	e.logger.Debug("extracted job",
		zap.String("url", rawURL),
		zap.String("title", posting.Title),
		zap.String("company", posting.Company),
		zap.Int("required_skills", len(posting.RequiredSkills)),
	)

	return posting, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
