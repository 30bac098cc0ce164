package matching

// Level is a coarse experience bucket.
type Level string

const (
	LevelJunior  Level = "junior"
	LevelMid     Level = "mid"
	LevelSenior  Level = "senior"
	LevelUnknown Level = "unknown"
)

// rank maps known levels onto an ordinal scale. Unknown has no rank.
func (l Level) rank() (int, bool) {
	switch l {
	case LevelJunior:
		return 1, true
	case LevelMid:
		return 2, true
	case LevelSenior:
		return 3, true
	default:
		return 0, false
	}
}

// Job is the part of a posting the scorer reads.
type Job struct {
	Title           string
	Description     string
	Location        string
	RequiredSkills  []string
	PreferredSkills []string
}

// Criteria is the search the posting was found with.
type Criteria struct {
	Location string `json:"location" mapstructure:"location"`
	IsRemote bool   `json:"isRemote" mapstructure:"remote"`
}

// Breakdown is the result of one scoring call. It never aliases the inputs.
type Breakdown struct {
	SkillsMatch     int `json:"skillsMatch"`
	ExperienceMatch int `json:"experienceMatch"`
	RoleRelevance   int `json:"roleRelevance"`
	LocationMatch   int `json:"locationMatch"`
	OverallScore    int `json:"overallScore"`

	MatchedRequiredSkills  []string `json:"matchedRequiredSkills"`
	MatchedPreferredSkills []string `json:"matchedPreferredSkills"`
	MissingRequiredSkills  []string `json:"missingRequiredSkills"`
	MissingPreferredSkills []string `json:"missingPreferredSkills"`

	ExperienceLevel Level `json:"experienceLevel"`
}
