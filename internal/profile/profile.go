package profile

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// PresentSentinel marks an ongoing position in Experience.EndDate.
const PresentSentinel = "Present"

// MasterProfile is the candidate profile every tool of the assistant works from.
type MasterProfile struct {
	ID           string `json:"id,omitempty" mapstructure:"id"`
	FullName     string `json:"fullName" mapstructure:"full-name" validate:"required"`
	Email        string `json:"email,omitempty" mapstructure:"email" validate:"omitempty,email"`
	Headline     string `json:"headline,omitempty" mapstructure:"headline"`
	Location     string `json:"location,omitempty" mapstructure:"location"`
	Phone        string `json:"phone,omitempty" mapstructure:"phone"`
	Website      string `json:"website,omitempty" mapstructure:"website" validate:"omitempty,url"`
	LinkedinURL  string `json:"linkedinUrl,omitempty" mapstructure:"linkedin-url" validate:"omitempty,url"`
	GithubURL    string `json:"githubUrl,omitempty" mapstructure:"github-url" validate:"omitempty,url"`
	PortfolioURL string `json:"portfolioUrl,omitempty" mapstructure:"portfolio-url" validate:"omitempty,url"`
	Summary      string `json:"summary,omitempty" mapstructure:"summary"`

	TargetRoles []string `json:"targetRoles" mapstructure:"target-roles"`
	Skills      []string `json:"skills" mapstructure:"skills"`

	Experience     []Experience    `json:"experience" mapstructure:"experience" validate:"dive"`
	Education      []Education     `json:"education" mapstructure:"education" validate:"dive"`
	Certifications []Certification `json:"certifications" mapstructure:"certifications" validate:"dive"`

	LastUpdated string `json:"lastUpdated,omitempty" mapstructure:"last-updated"`
}

// Experience is one work-history entry. Dates are YYYY-MM-DD; EndDate is empty or
// PresentSentinel for an ongoing position.
type Experience struct {
	ID           string   `json:"id,omitempty" mapstructure:"id"`
	Company      string   `json:"company" mapstructure:"company" validate:"required"`
	Role         string   `json:"role" mapstructure:"role" validate:"required"`
	StartDate    string   `json:"startDate" mapstructure:"start-date" validate:"required"`
	EndDate      string   `json:"endDate,omitempty" mapstructure:"end-date"`
	Location     string   `json:"location,omitempty" mapstructure:"location"`
	Description  string   `json:"description,omitempty" mapstructure:"description"`
	Achievements []string `json:"achievements,omitempty" mapstructure:"achievements"`
}

type Education struct {
	ID             string `json:"id,omitempty" mapstructure:"id"`
	Institution    string `json:"institution" mapstructure:"institution" validate:"required"`
	Degree         string `json:"degree" mapstructure:"degree"`
	FieldOfStudy   string `json:"fieldOfStudy,omitempty" mapstructure:"field-of-study"`
	GraduationDate string `json:"graduationDate,omitempty" mapstructure:"graduation-date"`
	Description    string `json:"description,omitempty" mapstructure:"description"`
}

type Certification struct {
	ID         string `json:"id,omitempty" mapstructure:"id"`
	Name       string `json:"name" mapstructure:"name" validate:"required"`
	Issuer     string `json:"issuer" mapstructure:"issuer"`
	Date       string `json:"date,omitempty" mapstructure:"date"`
	ExpiryDate string `json:"expiryDate,omitempty" mapstructure:"expiry-date"`
	URL        string `json:"url,omitempty" mapstructure:"url" validate:"omitempty,url"`
}

// IsOngoing reports whether the position has no end date yet.
func (e Experience) IsOngoing() bool {
	end := strings.TrimSpace(e.EndDate)
	return end == "" || strings.EqualFold(end, PresentSentinel)
}

var validate = validator.New()

// Validate checks the structural constraints of the profile. Dates are not checked here:
// the scorer tolerates malformed dates by treating them as zero duration.
func (p *MasterProfile) Validate() error {
	if p == nil {
		return fmt.Errorf("profile is required")
	}
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	return nil
}

// Load reads a profile from a YAML, JSON or TOML file. The format is picked from the extension.
func Load(path string) (*MasterProfile, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("profile path is required")
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading profile %q: %w", path, err)
	}

	var p MasterProfile
	if err := v.Unmarshal(&p, viper.DecodeHook(decodeHook)); err != nil {
		return nil, fmt.Errorf("decoding profile %q: %w", path, err)
	}

	return &p, nil
}

// decodeHook extends viper's default hooks: YAML parses bare dates such as 2015-01-01 into
// time.Time, while profile dates are strings.
var decodeHook = mapstructure.ComposeDecodeHookFunc(
	timeToDateStringHook,
	mapstructure.StringToTimeDurationHookFunc(),
	mapstructure.StringToSliceHookFunc(","),
)

func timeToDateStringHook(from, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}

	var t time.Time
	switch v := data.(type) {
	case time.Time:
		t = v
	case *time.Time:
		if v == nil {
			return "", nil
		}
		t = *v
	default:
		return data, nil
	}

	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format(time.DateOnly), nil
	}
	return t.Format(time.RFC3339), nil
}

// Titles returns the roles of the work history in order.
func (p *MasterProfile) Titles() []string {
	titles := make([]string, 0, len(p.Experience))
	for _, e := range p.Experience {
		titles = append(titles, e.Role)
	}
	return titles
}
