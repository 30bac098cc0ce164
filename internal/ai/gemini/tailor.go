package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "embed"

	"go.uber.org/zap"

	"github.com/worxstance/worxstance/internal/ai"
	"github.com/worxstance/worxstance/internal/jobs"
	"github.com/worxstance/worxstance/internal/profile"
)

//go:embed tailor_prompt.md
var tailorInstruction string

const tailorTemperature = 0.4

type OptimizedExperience struct {
	ID                    string   `json:"id"`
	Company               string   `json:"company"`
	Role                  string   `json:"role"`
	OptimizedAchievements []string `json:"optimizedAchievements"`
}

// TailoredResume is the master profile rewritten for one posting.
type TailoredResume struct {
	JobID               string                `json:"jobId,omitempty"`
	JobTitle            string                `json:"jobTitle"`
	Company             string                `json:"company"`
	MatchScore          int                   `json:"matchScore"`
	MatchRationale      string                `json:"matchRationale"`
	OptimizedSummary    string                `json:"optimizedSummary"`
	OptimizedExperience []OptimizedExperience `json:"optimizedExperience"`
	OptimizedSkills     []string              `json:"optimizedSkills"`
	MissingKeywords     []string              `json:"missingKeywords"`
}

var tailorSchema = &ai.Schema{
	Type: ai.TypeObject,
	Properties: map[string]*ai.Schema{
		"matchScore":       {Type: ai.TypeNumber, Description: "How well the profile fits the job, 0 to 100"},
		"matchRationale":   {Type: ai.TypeString, Description: "Brief explanation of the match score"},
		"optimizedSummary": {Type: ai.TypeString, Description: "Professional summary rewritten for the job"},
		"optimizedExperience": {
			Type: ai.TypeArray,
			Items: &ai.Schema{
				Type: ai.TypeObject,
				Properties: map[string]*ai.Schema{
					"id":      {Type: ai.TypeString, Description: "The experience id from the input"},
					"company": {Type: ai.TypeString},
					"role":    {Type: ai.TypeString},
					"optimizedAchievements": {
						Type:        ai.TypeArray,
						Items:       &ai.Schema{Type: ai.TypeString},
						Description: "Achievement bullets rewritten with keywords from the job description",
					},
				},
				Required: []string{"id", "company", "role", "optimizedAchievements"},
			},
		},
		"optimizedSkills": {Type: ai.TypeArray, Items: &ai.Schema{Type: ai.TypeString}},
		"missingKeywords": {Type: ai.TypeArray, Items: &ai.Schema{Type: ai.TypeString}},
	},
	Required: []string{"matchScore", "matchRationale", "optimizedSummary", "optimizedExperience", "optimizedSkills", "missingKeywords"},
}

type tailorReply struct {
	MatchScore          float64               `json:"matchScore"`
	MatchRationale      string                `json:"matchRationale"`
	OptimizedSummary    string                `json:"optimizedSummary"`
	OptimizedExperience []OptimizedExperience `json:"optimizedExperience"`
	OptimizedSkills     []string              `json:"optimizedSkills"`
	MissingKeywords     []string              `json:"missingKeywords"`
}

// ResumeTailor rewrites the master profile for a posting.
type ResumeTailor struct {
	completer ai.Completer
	logger    *zap.Logger
}

func NewResumeTailor(completer ai.Completer, logger *zap.Logger) *ResumeTailor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResumeTailor{completer: completer, logger: logger}
}

// Tailor returns the rewritten resume. Experience entries the model did not receive are dropped,
// and company and role always come from the profile.
func (t *ResumeTailor) Tailor(ctx context.Context, job *jobs.Posting, candidate *profile.MasterProfile) (*TailoredResume, error) {
	if t == nil || t.completer == nil {
		return nil, errors.New("tailor is not initialized")
	}
	if job == nil || strings.TrimSpace(job.Description) == "" {
		return nil, errors.New("a job description is required")
	}
	if candidate == nil {
		return nil, errors.New("a profile is required for tailoring")
	}

	withIDs := experienceWithIDs(candidate.Experience)
	input := *candidate
	input.Experience = withIDs

	profileJSON, err := json.MarshalIndent(&input, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	prompt := fmt.Sprintf("TARGET JOB DESCRIPTION:\n%s\n\nUSER MASTER PROFILE:\n%s\n", strings.TrimSpace(job.Description), profileJSON)

	resp, err := t.completer.Complete(ctx, &ai.Request{
		Prompt:            prompt,
		SystemInstruction: tailorInstruction,
		Temperature:       ai.Temperature(tailorTemperature),
		Schema:            tailorSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("tailor resume for %s: %w", job.Title, err)
	}

	var reply tailorReply
	if err := resp.Decode(&reply); err != nil {
		return nil, fmt.Errorf("tailor resume for %s: %w", job.Title, err)
	}

	known := make(map[string]profile.Experience, len(withIDs))
	for _, e := range withIDs {
		known[e.ID] = e
	}

	result := &TailoredResume{
		JobID:               job.ID,
		JobTitle:            job.Title,
		Company:             job.Company,
		MatchScore:          clampScore(reply.MatchScore),
		MatchRationale:      strings.TrimSpace(reply.MatchRationale),
		OptimizedSummary:    strings.TrimSpace(reply.OptimizedSummary),
		OptimizedExperience: make([]OptimizedExperience, 0, len(reply.OptimizedExperience)),
		OptimizedSkills:     nonNil(reply.OptimizedSkills),
		MissingKeywords:     nonNil(reply.MissingKeywords),
	}
	for _, e := range reply.OptimizedExperience {
		src, ok := known[e.ID]
		if !ok {
			t.logger.Warn("dropping experience the profile does not have",
				zap.String("id", e.ID),
				zap.String("company", e.Company),
			)
			continue
		}
		result.OptimizedExperience = append(result.OptimizedExperience, OptimizedExperience{
			ID:                    src.ID,
			Company:               src.Company,
			Role:                  src.Role,
			OptimizedAchievements: nonNil(e.OptimizedAchievements),
		})
	}

	t.logger.Info("resume tailored",
		zap.String("title", job.Title),
		zap.Int("match_score", result.MatchScore),
		zap.Int("experience", len(result.OptimizedExperience)),
		zap.Int("missing_keywords", len(result.MissingKeywords)),
	)

	return result, nil
}

// experienceWithIDs copies history and gives entries without an id a positional one.
func experienceWithIDs(history []profile.Experience) []profile.Experience {
	out := make([]profile.Experience, len(history))
	for i, e := range history {
		if strings.TrimSpace(e.ID) == "" {
			e.ID = "exp-" + strconv.Itoa(i+1)
		}
		out[i] = e
	}
	return out
}
