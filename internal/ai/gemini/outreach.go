package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "embed"

	"go.uber.org/zap"

	"github.com/worxstance/worxstance/internal/ai"
	"github.com/worxstance/worxstance/internal/networking"
	"github.com/worxstance/worxstance/internal/profile"
)

//go:embed outreach_prompt.md
var outreachInstruction string

const (
	outreachTemperature = 0.7
	defaultOutreachGoal = "Introduce myself and ask for a short conversation about open roles on their team"
)

// OutreachDraft is a networking message ready to review and send.
type OutreachDraft struct {
	Subject              string   `json:"subject" validate:"min=5"`
	Opener               string   `json:"opener" validate:"min=10"`
	Body                 []string `json:"body" validate:"min=1,dive,min=1"`
	CTA                  string   `json:"cta" validate:"min=3"`
	PersonalizationNotes []string `json:"personalizationNotes" validate:"dive,min=2"`
	FollowUpIdeas        []string `json:"followUpIdeas,omitempty" validate:"omitempty,dive,min=2"`
}

// Text renders the message the way it is sent.
func (d *OutreachDraft) Text() string {
	parts := make([]string, 0, len(d.Body)+2)
	parts = append(parts, d.Opener)
	parts = append(parts, d.Body...)
	parts = append(parts, d.CTA)
	return strings.Join(parts, "\n\n")
}

var outreachSchema = &ai.Schema{
	Type: ai.TypeObject,
	Properties: map[string]*ai.Schema{
		"subject":              {Type: ai.TypeString},
		"opener":               {Type: ai.TypeString},
		"body":                 {Type: ai.TypeArray, Items: &ai.Schema{Type: ai.TypeString}},
		"cta":                  {Type: ai.TypeString, Description: "One clear call to action"},
		"personalizationNotes": {Type: ai.TypeArray, Items: &ai.Schema{Type: ai.TypeString}},
		"followUpIdeas":        {Type: ai.TypeArray, Items: &ai.Schema{Type: ai.TypeString}},
	},
	Required: []string{"subject", "opener", "body", "cta", "personalizationNotes"},
}

// OutreachWriter drafts networking messages for contacts.
type OutreachWriter struct {
	completer ai.Completer
	logger    *zap.Logger
}

func NewOutreachWriter(completer ai.Completer, logger *zap.Logger) *OutreachWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutreachWriter{completer: completer, logger: logger}
}

type outreachContact struct {
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
	Company  string `json:"company,omitempty"`
	Platform string `json:"platform"`
	Status   string `json:"status"`
	Notes    string `json:"notes,omitempty"`
	Messages int    `json:"previousMessages"`
}

// Draft writes a message to contact on behalf of candidate. Placeholders in the reply are
// filled from the contact.
func (w *OutreachWriter) Draft(ctx context.Context, contact *networking.Contact, candidate *profile.MasterProfile, goal string) (*OutreachDraft, error) {
	if w == nil || w.completer == nil {
		return nil, errors.New("outreach writer is not initialized")
	}
	if contact == nil {
		return nil, errors.New("contact is required")
	}

	goal = strings.TrimSpace(goal)
	if goal == "" {
		goal = defaultOutreachGoal
	}

	contactJSON, err := json.MarshalIndent(outreachContact{
		Name:     contact.Name,
		Role:     contact.Role,
		Company:  contact.Company,
		Platform: string(contact.Platform),
		Status:   string(contact.Status),
		Notes:    contact.Notes,
		Messages: len(contact.OutreachHistory),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal contact: %w", err)
	}

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
	candidateJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal candidate summary: %w", err)
	}

	prompt := fmt.Sprintf("Goal: %s\n\nContact:\n%s\n\nCandidate:\n%s\n", goal, contactJSON, candidateJSON)

	resp, err := w.completer.Complete(ctx, &ai.Request{
		Prompt:            prompt,
		SystemInstruction: outreachInstruction,
		Temperature:       ai.Temperature(outreachTemperature),
		Schema:            outreachSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("draft outreach to %s: %w", contact.Name, err)
	}

	var draft OutreachDraft
	if err := resp.Decode(&draft); err != nil {
		return nil, fmt.Errorf("draft outreach to %s: %w", contact.Name, err)
	}

	draft.Subject = networking.Personalize(strings.TrimSpace(draft.Subject), contact)
	draft.Opener = networking.Personalize(strings.TrimSpace(draft.Opener), contact)
	draft.CTA = networking.Personalize(strings.TrimSpace(draft.CTA), contact)
	for i, p := range draft.Body {
		draft.Body[i] = networking.Personalize(strings.TrimSpace(p), contact)
	}
	draft.PersonalizationNotes = nonNil(draft.PersonalizationNotes)

	if err := validate.Struct(&draft); err != nil {
		return nil, fmt.Errorf("draft outreach to %s: invalid draft: %w", contact.Name, err)
	}

	w.logger.Debug("outreach drafted",
		zap.String("contact", contact.Name),
		zap.String("subject", draft.Subject),
		zap.Int("paragraphs", len(draft.Body)),
	)

	return &draft, nil
}
