package matching

import (
	"slices"
	"strings"
	"unicode"
)

// synonymGroups lists known spellings of the same skill. The first entry is the canonical name.
var synonymGroups = [][]string{
	{"javascript", "js", "ecmascript"},
	{"typescript", "ts"},
	{"react", "react.js", "reactjs"},
	{"node.js", "nodejs", "node"},
	{"c++", "cpp", "c plus plus"},
	{"c#", "csharp", "c sharp"},
	{"postgresql", "postgres"},
	{"machine learning", "ml", "machine-learning"},
	{"deep learning", "dl", "deep-learning"},
	{"natural language processing", "nlp"},
	{"rest api", "rest", "restful api"},
}

// synonyms maps a normalized spelling to the groups it belongs to. A spelling may sit in
// more than one group once punctuation is stripped ("c++" and "c#" both become "c").
// Built once and read-only afterwards.
var synonyms = buildSynonyms(synonymGroups)

func buildSynonyms(groups [][]string) map[string][]int {
	index := make(map[string][]int)
	for id, group := range groups {
		for _, spelling := range group {
			key := NormalizeSkill(spelling)
			if key == "" || slices.Contains(index[key], id) {
				continue
			}
			index[key] = append(index[key], id)
		}
	}
	return index
}

// NormalizeSkill lower-cases s, drops every rune that is not a letter, digit or whitespace
// and collapses whitespace runs to a single space with no leading or trailing space.
// Punctuation goes before the whitespace pass so the result is stable under a second call.
func NormalizeSkill(s string) string {
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// SkillMatcher decides whether two skill spellings denote the same skill.
// The zero value matches the way job postings have always been scored.
type SkillMatcher struct {
	// MinSubstringLength is the shortest normalized spelling allowed to match by containment.
	// Zero keeps containment for any non-empty spelling, so "c" matches "crystal".
	MinSubstringLength int
}

// SkillsMatch reports whether a and b denote the same skill using the default matcher.
func SkillsMatch(a, b string) bool {
	return SkillMatcher{}.Match(a, b)
}

// Match is symmetric. Empty spellings never match.
func (m SkillMatcher) Match(a, b string) bool {
	return m.matchNormalized(NormalizeSkill(a), NormalizeSkill(b))
}

func (m SkillMatcher) matchNormalized(a, b string) bool {
	if a == "" || b == "" {
		return false
	}

	if a == b {
		return true
	}

	shorter := len([]rune(a))
	if n := len([]rune(b)); n < shorter {
		shorter = n
	}
	if shorter >= m.MinSubstringLength && (strings.Contains(a, b) || strings.Contains(b, a)) {
		return true
	}

	for _, id := range synonyms[a] {
		if slices.Contains(synonyms[b], id) {
			return true
		}
	}

	return false
}

// SkillMatches splits job skills into matched and missing.
type SkillMatches struct {
	MatchedRequired  []string
	MatchedPreferred []string
	MissingRequired  []string
	MissingPreferred []string
}

// MatchSkills compares the candidate's skills against the required and preferred lists of a job.
// For each job skill the first matching candidate skill is recorded in the candidate's spelling;
// a job skill with no match is recorded as missing in the job's spelling.
func (m SkillMatcher) MatchSkills(candidate, required, preferred []string) SkillMatches {
	normalized := make([]string, len(candidate))
	for i, s := range candidate {
		normalized[i] = NormalizeSkill(s)
	}

	split := func(jobSkills []string) (matched, missing []string) {
		matched = make([]string, 0, len(jobSkills))
		missing = make([]string, 0, len(jobSkills))
		for _, jobSkill := range jobSkills {
			norm := NormalizeSkill(jobSkill)
			found := -1
			for i, c := range normalized {
				if m.matchNormalized(c, norm) {
					found = i
					break
				}
			}
			if found < 0 {
				missing = append(missing, jobSkill)
				continue
			}
			matched = append(matched, candidate[found])
		}
		return matched, missing
	}

	var res SkillMatches
	res.MatchedRequired, res.MissingRequired = split(required)
	res.MatchedPreferred, res.MissingPreferred = split(preferred)
	return res
}
