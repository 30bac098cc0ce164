package matching

import (
	"context"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/worxstance/worxstance/internal/profile"
)

const (
	neutralScore     = 50
	roleBaseScore    = 30
	roleExactScore   = 90
	roleOverlapScore = 60
	minRoleWordLen   = 4

	weightSkills     = 0.40
	weightExperience = 0.30
	weightRole       = 0.20
	weightLocation   = 0.10

	weightRequired  = 0.7
	weightPreferred = 0.3

	defaultWorkers = 8
)

var remoteMarkers = []string{"remote", "anywhere", "work from home"}

// Scorer computes match breakdowns. The zero value is usable and reads the wall clock.
type Scorer struct {
	Skills SkillMatcher
	// Now is the reference time for ongoing positions.
	Now func() time.Time
	// Workers bounds ScoreAll concurrency.
	Workers int
}

// NewScorer returns a scorer with the default skill matcher.
func NewScorer() *Scorer {
	return &Scorer{Now: time.Now, Workers: defaultWorkers}
}

func (s *Scorer) now() time.Time {
	if s == nil || s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Score builds the breakdown of job against candidate. A nil candidate yields neutral scores.
func (s *Scorer) Score(job Job, candidate *profile.MasterProfile, criteria Criteria) *Breakdown {
	if candidate == nil {
		return &Breakdown{
			SkillsMatch:            neutralScore,
			ExperienceMatch:        neutralScore,
			RoleRelevance:          neutralScore,
			LocationMatch:          LocationScore(job.Location, "", criteria.IsRemote),
			OverallScore:           neutralScore,
			MatchedRequiredSkills:  []string{},
			MatchedPreferredSkills: []string{},
			MissingRequiredSkills:  cloneStrings(job.RequiredSkills),
			MissingPreferredSkills: cloneStrings(job.PreferredSkills),
			ExperienceLevel:        LevelUnknown,
		}
	}

	var skills SkillMatcher
	if s != nil {
		skills = s.Skills
	}
	matches := skills.MatchSkills(candidate.Skills, job.RequiredSkills, job.PreferredSkills)

	jobLevel := JobLevel(job.Title, job.Description)
	candidateLevel := CandidateLevel(candidate.Experience, s.now())

	b := &Breakdown{
		SkillsMatch:            skillsScore(matches, len(job.RequiredSkills), len(job.PreferredSkills)),
		ExperienceMatch:        ExperienceScore(jobLevel, candidateLevel),
		RoleRelevance:          RoleRelevance(job.Title, candidate.TargetRoles),
		LocationMatch:          LocationScore(job.Location, candidate.Location, criteria.IsRemote),
		MatchedRequiredSkills:  matches.MatchedRequired,
		MatchedPreferredSkills: matches.MatchedPreferred,
		MissingRequiredSkills:  matches.MissingRequired,
		MissingPreferredSkills: matches.MissingPreferred,
		ExperienceLevel:        jobLevel,
	}
	b.OverallScore = Overall(b.SkillsMatch, b.ExperienceMatch, b.RoleRelevance, b.LocationMatch)

	return b
}

// ScoreAll scores every job concurrently. The result is in input order.
func (s *Scorer) ScoreAll(ctx context.Context, list []Job, candidate *profile.MasterProfile, criteria Criteria) ([]*Breakdown, error) {
	out := make([]*Breakdown, len(list))

	workers := defaultWorkers
	if s != nil && s.Workers > 0 {
		workers = s.Workers
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range list {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = s.Score(list[i], candidate, criteria)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Overall is the weighted sum of the four sub-scores.
func Overall(skills, experience, role, location int) int {
	return int(math.Round(
		float64(skills)*weightSkills +
			float64(experience)*weightExperience +
			float64(role)*weightRole +
			float64(location)*weightLocation,
	))
}

func skillsScore(m SkillMatches, required, preferred int) int {
	if required == 0 && preferred == 0 {
		return neutralScore
	}

	requiredRatio := float64(neutralScore)
	if required > 0 {
		requiredRatio = float64(len(m.MatchedRequired)) / float64(required) * 100
	}

	preferredRatio := float64(neutralScore)
	if preferred > 0 {
		preferredRatio = float64(len(m.MatchedPreferred)) / float64(preferred) * 100
	}

	return int(math.Round(requiredRatio*weightRequired + preferredRatio*weightPreferred))
}

// ExperienceScore rates the distance between the level a job asks for and the candidate's level.
func ExperienceScore(job, candidate Level) int {
	j, ok := job.rank()
	if !ok {
		return neutralScore
	}
	c, ok := candidate.rank()
	if !ok {
		return neutralScore
	}

	switch d := j - c; {
	case d == 0:
		return 100
	case d == 1 || d == -1:
		return 70
	default:
		return 40
	}
}

// RoleRelevance is the best match between the job title and any target role, never below the base.
func RoleRelevance(title string, targetRoles []string) int {
	best := roleBaseScore
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" {
		return best
	}
	words := strings.Fields(t)

	for _, role := range targetRoles {
		r := strings.ToLower(strings.TrimSpace(role))
		if r == "" {
			continue
		}

		if strings.Contains(t, r) || strings.Contains(r, t) {
			best = max(best, roleExactScore)
			continue
		}

		for _, w := range words {
			if len([]rune(w)) >= minRoleWordLen && strings.Contains(r, w) {
				best = max(best, roleOverlapScore)
				break
			}
		}
	}

	return best
}

// IsRemoteLocation reports whether a job location describes remote work.
func IsRemoteLocation(location string) bool {
	return containsAny(strings.ToLower(location), remoteMarkers)
}

// LocationScore rates a job location against the candidate's location and remote preference.
func LocationScore(jobLocation, candidateLocation string, prefersRemote bool) int {
	lowerJob := strings.ToLower(jobLocation)
	jobRemote := IsRemoteLocation(jobLocation)
	candidateCity := cityToken(candidateLocation)

	switch {
	case jobRemote && prefersRemote:
		return 100
	case !jobRemote && !prefersRemote && candidateCity != "" && candidateCity == cityToken(jobLocation):
		return 100
	case strings.Contains(lowerJob, "hybrid"):
		return 70
	case candidateCity != "" && strings.Contains(lowerJob, candidateCity):
		return 80
	case jobRemote && !prefersRemote:
		return 40
	case !jobRemote && prefersRemote:
		return 30
	default:
		return neutralScore
	}
}

// cityToken is the lower-cased first comma-delimited part of a location.
func cityToken(location string) string {
	city, _, _ := strings.Cut(location, ",")
	return strings.ToLower(strings.TrimSpace(city))
}

func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
