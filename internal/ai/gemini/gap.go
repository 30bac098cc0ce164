package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "embed"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/worxstance/worxstance/internal/ai"
	"github.com/worxstance/worxstance/internal/jobs"
	"github.com/worxstance/worxstance/internal/matching"
	"github.com/worxstance/worxstance/internal/profile"
)

//go:embed gap_prompt.md
var gapInstruction string

const (
	gapTemperature = 0.4

	// MinGapDescriptionLength is the shortest job description worth analyzing.
	MinGapDescriptionLength = 50

	localGapReason = "Required by the posting and not found in the profile"
)

type GapPriority string

const (
	GapCritical   GapPriority = "critical"
	GapHigh       GapPriority = "high"
	GapMedium     GapPriority = "medium"
	GapLow        GapPriority = "low"
	GapNiceToHave GapPriority = "nice_to_have"
)

type LearningStatus string

const (
	LearningPending    LearningStatus = "pending"
	LearningInProgress LearningStatus = "in_progress"
	LearningCompleted  LearningStatus = "completed"
)

type MissingSkill struct {
	Skill    string      `json:"skill"`
	Priority GapPriority `json:"priority"`
	Reason   string      `json:"reason"`
}

// LearningAction is one step of the roadmap that closes a gap.
type LearningAction struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	EstimatedTime string         `json:"estimatedTime"`
	Priority      GapPriority    `json:"priority"`
	ResourceURL   string         `json:"resourceUrl,omitempty"`
	Status        LearningStatus `json:"status"`
}

// GapReport compares a posting with the candidate and suggests how to close the difference.
type GapReport struct {
	ID              string           `json:"id"`
	JobID           string           `json:"jobId,omitempty"`
	JobTitle        string           `json:"jobTitle"`
	Company         string           `json:"company"`
	MatchScore      int              `json:"matchScore"`
	LocalScore      int              `json:"localScore,omitempty"`
	Summary         string           `json:"summary"`
	MissingSkills   []MissingSkill   `json:"missingSkills"`
	MatchingSkills  []string         `json:"matchingSkills"`
	LearningRoadmap []LearningAction `json:"learningRoadmap"`
	GeneratedAt     string           `json:"generatedAt"`
}

var gapSchema = &ai.Schema{
	Type: ai.TypeObject,
	Properties: map[string]*ai.Schema{
		"matchScore": {Type: ai.TypeNumber, Description: "How well the profile matches the job description, 0 to 100"},
		"summary":    {Type: ai.TypeString, Description: "Key strengths and critical weaknesses"},
		"missingSkills": {
			Type: ai.TypeArray,
			Items: &ai.Schema{
				Type: ai.TypeObject,
				Properties: map[string]*ai.Schema{
					"skill":    {Type: ai.TypeString},
					"priority": {Type: ai.TypeString, Enum: []string{"critical", "high", "medium", "low", "nice_to_have"}},
					"reason":   {Type: ai.TypeString, Description: "Why the skill matters for this role"},
				},
				Required: []string{"skill", "priority", "reason"},
			},
		},
		"matchingSkills": {Type: ai.TypeArray, Items: &ai.Schema{Type: ai.TypeString}},
		"roadmap": {
			Type: ai.TypeArray,
			Items: &ai.Schema{
				Type: ai.TypeObject,
				Properties: map[string]*ai.Schema{
					"title":         {Type: ai.TypeString},
					"description":   {Type: ai.TypeString, Description: "What to learn or build"},
					"estimatedTime": {Type: ai.TypeString, Description: "For example '2 weeks'"},
					"resourceUrl":   {Type: ai.TypeString, Description: "Optional course or documentation link"},
					"priority":      {Type: ai.TypeString, Enum: []string{"high", "medium", "low"}},
				},
				Required: []string{"title", "description", "estimatedTime", "priority"},
			},
		},
	},
	Required: []string{"matchScore", "summary", "missingSkills", "matchingSkills", "roadmap"},
}

type gapReply struct {
	MatchScore     float64        `json:"matchScore"`
	Summary        string         `json:"summary"`
	MissingSkills  []MissingSkill `json:"missingSkills"`
	MatchingSkills []string       `json:"matchingSkills"`
	Roadmap        []struct {
		Title         string      `json:"title"`
		Description   string      `json:"description"`
		EstimatedTime string      `json:"estimatedTime"`
		ResourceURL   string      `json:"resourceUrl"`
		Priority      GapPriority `json:"priority"`
	} `json:"roadmap"`
}

// GapAnalyzer asks a model for a skill gap report and reconciles it with the local breakdown.
type GapAnalyzer struct {
	completer ai.Completer
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

func NewGapAnalyzer(completer ai.Completer, logger *zap.Logger) *GapAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GapAnalyzer{completer: completer, logger: logger, now: time.Now, newID: uuid.NewString}
}

// Analyze builds a gap report for job. When job carries a breakdown, every missing required
// skill it lists ends up in the report as a critical gap.
func (a *GapAnalyzer) Analyze(ctx context.Context, job *jobs.Posting, candidate *profile.MasterProfile, targetRole string) (*GapReport, error) {
	if a == nil || a.completer == nil {
		return nil, errors.New("gap analyzer is not initialized")
	}
	if job == nil {
		return nil, errors.New("job is required")
	}
	if candidate == nil {
		return nil, errors.New("a profile is required for gap analysis")
	}
	if n := len([]rune(strings.TrimSpace(job.Description))); n < MinGapDescriptionLength {
		return nil, fmt.Errorf("job description is too short for gap analysis (%d of %d characters)", n, MinGapDescriptionLength)
	}

	prompt, err := buildGapPrompt(job, candidate, targetRole)
	if err != nil {
		return nil, err
	}

	resp, err := a.completer.Complete(ctx, &ai.Request{
		Prompt:            prompt,
		SystemInstruction: gapInstruction,
		Temperature:       ai.Temperature(gapTemperature),
		Schema:            gapSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("analyze gap for %s: %w", job.Title, err)
	}

	var reply gapReply
	if err := resp.Decode(&reply); err != nil {
		return nil, fmt.Errorf("analyze gap for %s: %w", job.Title, err)
	}

	report := &GapReport{
		ID:              a.newID(),
		JobID:           job.ID,
		JobTitle:        job.Title,
		Company:         job.Company,
		MatchScore:      clampScore(reply.MatchScore),
		Summary:         strings.TrimSpace(reply.Summary),
		MissingSkills:   make([]MissingSkill, 0, len(reply.MissingSkills)),
		MatchingSkills:  nonNil(reply.MatchingSkills),
		LearningRoadmap: make([]LearningAction, 0, len(reply.Roadmap)),
		GeneratedAt:     a.now().UTC().Format(time.RFC3339),
	}
	if job.Match != nil {
		report.LocalScore = job.Match.OverallScore
	}

	for _, m := range reply.MissingSkills {
		m.Skill = strings.TrimSpace(m.Skill)
		if m.Skill == "" {
			continue
		}
		m.Priority = gapPriority(m.Priority, GapMedium)
		report.MissingSkills = append(report.MissingSkills, m)
	}
	if job.Match != nil {
		for _, skill := range job.Match.MissingRequiredSkills {
			if hasMissingSkill(report.MissingSkills, skill) {
				continue
			}
			report.MissingSkills = append(report.MissingSkills, MissingSkill{
				Skill:    skill,
				Priority: GapCritical,
				Reason:   localGapReason,
			})
		}
	}

	for _, step := range reply.Roadmap {
		action := LearningAction{
			ID:            a.newID(),
			Title:         strings.TrimSpace(step.Title),
			Description:   strings.TrimSpace(step.Description),
			EstimatedTime: strings.TrimSpace(step.EstimatedTime),
			Priority:      learningPriority(step.Priority),
			ResourceURL:   resourceURL(step.ResourceURL),
			Status:        LearningPending,
		}
		if action.Title == "" {
			continue
		}
		report.LearningRoadmap = append(report.LearningRoadmap, action)
	}

	a.logger.Info("gap analyzed",
		zap.String("title", job.Title),
		zap.Int("match_score", report.MatchScore),
		zap.Int("missing_skills", len(report.MissingSkills)),
		zap.Int("roadmap_steps", len(report.LearningRoadmap)),
	)

	return report, nil
}

func hasMissingSkill(list []MissingSkill, skill string) bool {
	for _, m := range list {
		if matching.SkillsMatch(m.Skill, skill) {
			return true
		}
	}
	return false
}

func gapPriority(p GapPriority, fallback GapPriority) GapPriority {
	switch p := GapPriority(strings.ToLower(strings.TrimSpace(string(p)))); p {
	case GapCritical, GapHigh, GapMedium, GapLow, GapNiceToHave:
		return p
	default:
		return fallback
	}
}

// learningPriority maps a gap priority onto the high, medium and low a roadmap step uses.
func learningPriority(p GapPriority) GapPriority {
	switch p := gapPriority(p, GapMedium); p {
	case GapCritical:
		return GapHigh
	case GapNiceToHave:
		return GapLow
	default:
		return p
	}
}

// resourceURL drops links that are not absolute http(s) URLs.
func resourceURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	return raw
}

type gapExperience struct {
	Role         string   `json:"role"`
	Company      string   `json:"company"`
	Description  string   `json:"description,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
}

type gapEducation struct {
	Degree string `json:"degree,omitempty"`
	Field  string `json:"field,omitempty"`
}

type gapCandidate struct {
	Skills         []string        `json:"skills"`
	TargetRoles    []string        `json:"targetRoles"`
	Experience     []gapExperience `json:"experience"`
	Education      []gapEducation  `json:"education"`
	Certifications []string        `json:"certifications"`
}

func buildGapPrompt(job *jobs.Posting, candidate *profile.MasterProfile, targetRole string) (string, error) {
	summary := gapCandidate{
		Skills:         nonNil(candidate.Skills),
		TargetRoles:    nonNil(candidate.TargetRoles),
		Experience:     make([]gapExperience, 0, len(candidate.Experience)),
		Education:      make([]gapEducation, 0, len(candidate.Education)),
		Certifications: make([]string, 0, len(candidate.Certifications)),
	}
	for _, e := range candidate.Experience {
		summary.Experience = append(summary.Experience, gapExperience{
			Role:         e.Role,
			Company:      e.Company,
			Description:  e.Description,
			Achievements: e.Achievements,
		})
	}
	for _, e := range candidate.Education {
		summary.Education = append(summary.Education, gapEducation{Degree: e.Degree, Field: e.FieldOfStudy})
	}
	for _, c := range candidate.Certifications {
		summary.Certifications = append(summary.Certifications, c.Name)
	}

	profileJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal candidate summary: %w", err)
	}

	targetRole = strings.TrimSpace(targetRole)
	if targetRole == "" {
		targetRole = job.Title
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Target role: %s\n", targetRole)
	fmt.Fprintf(&b, "Job: %s at %s\n\n", job.Title, orUnknown(job.Company))
	fmt.Fprintf(&b, "Job description:\n\"\"\"\n%s\n\"\"\"\n\n", strings.TrimSpace(job.Description))
	fmt.Fprintf(&b, "Candidate profile:\n%s\n", profileJSON)

	if m := job.Match; m != nil {
		b.WriteString("\nLocal skill comparison:\n")
		fmt.Fprintf(&b, "- matched required: %s\n", joinOrNone(m.MatchedRequiredSkills))
		fmt.Fprintf(&b, "- missing required: %s\n", joinOrNone(m.MissingRequiredSkills))
		fmt.Fprintf(&b, "- missing preferred: %s\n", joinOrNone(m.MissingPreferredSkills))
		fmt.Fprintf(&b, "- experience level asked: %s\n", m.ExperienceLevel)
	}

	return b.String(), nil
}

func joinOrNone(list []string) string {
	if len(list) == 0 {
		return "none"
	}
	return strings.Join(list, ", ")
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "an unknown company"
	}
	return s
}
