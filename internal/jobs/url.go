package jobs

import (
	"net/url"
	"strings"
)

type URLQuality string

const (
	URLGood       URLQuality = "good"
	URLRedirect   URLQuality = "redirect"
	URLSearchPage URLQuality = "search_page"
	URLInvalid    URLQuality = "invalid"
)

// URLAnalysis tells whether a posting link leads to the posting itself.
type URLAnalysis struct {
	Quality URLQuality
	Reason  string
	// SearchURL is a web search for the posting, set when the link is problematic.
	SearchURL string
}

func (a URLAnalysis) IsProblematic() bool {
	return a.Quality != URLGood
}

// AnalyzeURL classifies the posting URL. Links from search grounding often point at
// redirects or search result pages rather than the posting.
func (p *Posting) AnalyzeURL() URLAnalysis {
	raw := strings.TrimSpace(p.URL)
	if raw == "" {
		return p.problem(URLInvalid, "no URL provided")
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return p.problem(URLInvalid, "invalid URL format")
	}

	host := strings.ToLower(u.Hostname())
	path := strings.ToLower(u.Path)

	if strings.Contains(host, "vertexaisearch.cloud.google.com") && strings.Contains(path, "/grounding-api-redirect/") {
		return p.problem(URLRedirect, "search redirect URL (may not work)")
	}
	if isSearchPage(host, path, u.Query()) {
		return p.problem(URLSearchPage, "points to search results, not a specific job")
	}
	return URLAnalysis{Quality: URLGood}
}

// SearchURL returns a web search for the posting.
func (p *Posting) SearchURL() string {
	q := strings.Join(strings.Fields(p.Title+" "+p.Company+" "+p.Location+" jobs"), " ")
	return "https://www.google.com/search?q=" + url.QueryEscape(q)
}

func (p *Posting) problem(q URLQuality, reason string) URLAnalysis {
	return URLAnalysis{Quality: q, Reason: reason, SearchURL: p.SearchURL()}
}

func isSearchPage(host, path string, query url.Values) bool {
	switch {
	case strings.Contains(host, "ziprecruiter.com"):
		return path == "/jobs/" || strings.Contains(path, "/jobs/search") || query.Has("q") || query.Has("keywords")
	case strings.Contains(host, "linkedin.com"):
		return strings.Contains(path, "/jobs/search") || path == "/jobs/" ||
			(strings.Contains(path, "/jobs/") && query.Has("keywords"))
	case strings.Contains(host, "indeed.com"):
		return strings.Contains(path, "/jobs") && !strings.Contains(path, "/viewjob")
	case strings.Contains(host, "glassdoor.com"):
		return strings.Contains(path, "/job/") && query.Has("keyword")
	}
	return false
}
