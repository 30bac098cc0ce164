package jobs

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/worxstance/worxstance/internal/matching"
)

const (
	PostingIDField      = "ID"
	PostingCompanyField = "Company"

	// NotListed fills a salary range the source does not state.
	NotListed = "Not listed"
)

type Postings struct {
	Items []*Posting `json:"items"`
}

// Posting is a job found by discovery, extracted from a URL or listed in a jobs file.
type Posting struct {
	ID              string   `json:"id" mapstructure:"id"`
	Title           string   `json:"title" mapstructure:"title" validate:"required"`
	Company         string   `json:"company" mapstructure:"company"`
	Location        string   `json:"location" mapstructure:"location"`
	SalaryRange     string   `json:"salaryRange,omitempty" mapstructure:"salary-range"`
	URL             string   `json:"url,omitempty" mapstructure:"url" validate:"omitempty,url"`
	Description     string   `json:"description" mapstructure:"description"`
	RequiredSkills  []string `json:"requiredSkills" mapstructure:"required-skills"`
	PreferredSkills []string `json:"preferredSkills" mapstructure:"preferred-skills"`
	MatchScore      int      `json:"matchScore" mapstructure:"match-score" validate:"gte=0,lte=100"`
	MatchRationale  string   `json:"matchRationale,omitempty" mapstructure:"match-rationale"`

	Match *matching.Breakdown `json:"match,omitempty" mapstructure:"-"`
}

var validate = validator.New()

func (p *Posting) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid posting %q: %w", p.Title, err)
	}
	return nil
}

// ForMatching returns the fields the scorer reads.
func (p *Posting) ForMatching() matching.Job {
	return matching.Job{
		Title:           p.Title,
		Description:     p.Description,
		Location:        p.Location,
		RequiredSkills:  p.RequiredSkills,
		PreferredSkills: p.PreferredSkills,
	}
}

// ApplyMatch attaches a breakdown and mirrors its overall score.
func (p *Posting) ApplyMatch(b *matching.Breakdown) {
	p.Match = b
	if b != nil {
		p.MatchScore = b.OverallScore
	}
}

// EnsureID derives a stable id from company and title when the posting has none.
func (p *Posting) EnsureID() {
	if strings.TrimSpace(p.ID) != "" {
		return
	}
	if p.URL != "" {
		p.ID = slug(p.URL)
		return
	}
	p.ID = slug(p.Company + " " + p.Title)
}

func (p *Posting) GetStringField(name string) string {
	switch name {
	case PostingIDField:
		return p.ID
	case PostingCompanyField:
		return p.Company
	default:
		return ""
	}
}

// LoadPostings reads the `jobs` list of a YAML, JSON or TOML file.
func LoadPostings(path string) (*Postings, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading jobs file %q: %w", path, err)
	}

	var items []*Posting
	if err := v.UnmarshalKey("jobs", &items); err != nil {
		return nil, fmt.Errorf("decoding jobs file %q: %w", path, err)
	}

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
		item.EnsureID()
	}

	return &Postings{Items: items}, nil
}

func (v *Postings) Len() int {
	return len(v.Items)
}

func (v *Postings) FindByID(id string) *Posting {
	for _, p := range v.Items {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (v *Postings) IDs() []string {
	ids := make([]string, 0, len(v.Items))
	for _, p := range v.Items {
		ids = append(ids, p.ID)
	}
	return ids
}

// Exclude removes postings whose field equals one of targets and returns their ids.
// Order of the remaining postings is kept.
func (v *Postings) Exclude(name string, targets []string) []string {
	drop := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		drop[t] = struct{}{}
	}

	var excluded []string
	kept := v.Items[:0]
	for _, p := range v.Items {
		if _, ok := drop[p.GetStringField(name)]; ok {
			excluded = append(excluded, p.ID)
			continue
		}
		kept = append(kept, p)
	}
	v.Items = kept

	return excluded
}

// SortByScore orders postings by descending match score, keeping input order for ties.
func (v *Postings) SortByScore() {
	sort.SliceStable(v.Items, func(i, j int) bool {
		return v.Items[i].MatchScore > v.Items[j].MatchScore
	})
}

// ReportByCompany groups a short summary of every posting by company.
func (v *Postings) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, p := range v.Items {
		key := p.Company
		if key == "" {
			key = "unknown company"
		}

		entry := map[string]string{
			"title":       p.Title,
			"location":    p.Location,
			"url":         p.URL,
			"salary":      p.SalaryRange,
			"match_score": fmt.Sprintf("%d", p.MatchScore),
		}
		if p.Match != nil {
			entry["experience_level"] = string(p.Match.ExperienceLevel)
			entry["missing_required"] = strings.Join(p.Match.MissingRequiredSkills, ", ")
		}

		report[key] = append(report[key], entry)
	}
	return report
}

func (v *Postings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func (v *Postings) ToExcluded() *ExcludedPostings {
	excluded := &ExcludedPostings{}
	for _, p := range v.Items {
		excluded.Items = append(excluded.Items, &ExcludedPosting{
			ID:         p.ID,
			URL:        p.URL,
			Company:    p.Company,
			ExcludedAt: time.Now().UTC(),
		})
	}
	return excluded
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	dash := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
