package analyzer

import (
	"net"
	"net/url"
	"sort"

	"golang.org/x/net/publicsuffix"

	"github.com/amosWeiskopf/linksieve/internal/models"
)

// DefaultTopSites is how many registrable domains a summary lists.
const DefaultTopSites = 10

// Analyzer turns a finished crawl into an operator summary.
type Analyzer struct {
	topSites int
}

// New creates a new Analyzer instance
func New() *Analyzer {
	return &Analyzer{topSites: DefaultTopSites}
}

// NewWithTopSites creates an Analyzer listing at most n sites. n <= 0 lists all.
func NewWithTopSites(n int) *Analyzer {
	return &Analyzer{topSites: n}
}

// Summarize counts outcomes per domain and groups the matched URLs by the
// registrable domain (eTLD+1) they point at.
func (a *Analyzer) Summarize(result *models.CrawlResult) *models.Summary {
	s := &models.Summary{
		RunID:        result.RunID,
		TotalDomains: len(result.Domains),
		Duration:     result.Duration,
		Domains:      result.Domains,
		TopSites:     []models.SiteCount{},
		Failures:     []models.Failure{},
	}

	for _, d := range result.Domains {
		s.Duplicates += d.Duplicates
		switch d.State {
		case models.StateCompleted:
			s.Completed++
			if len(d.URLs) == 0 {
				s.Empty++
			}
		case models.StateParseFailed:
			s.ParseFailed++
		default:
			s.FetchFailed++
		}
		if d.State != models.StateCompleted {
			s.Failures = append(s.Failures, models.Failure{
				Domain: d.Domain,
				State:  d.State.String(),
				Error:  d.Error,
			})
		}
	}

	counts := make(map[string]int)
	for _, urls := range result.Results {
		s.MatchedURLs += len(urls)
		for _, u := range urls {
			counts[siteOf(u)]++
		}
	}
	for site, n := range counts {
		s.TopSites = append(s.TopSites, models.SiteCount{Site: site, Count: n})
	}
	sort.Slice(s.TopSites, func(i, j int) bool {
		if s.TopSites[i].Count == s.TopSites[j].Count {
			return s.TopSites[i].Site < s.TopSites[j].Site
		}
		return s.TopSites[i].Count > s.TopSites[j].Count
	})
	if a.topSites > 0 && len(s.TopSites) > a.topSites {
		s.TopSites = s.TopSites[:a.topSites]
	}
	return s
}

// siteOf returns the registrable domain of rawURL, falling back to the bare
// host (IP addresses, localhost) or the raw string when there is no host.
func siteOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	host := u.Hostname()
	if net.ParseIP(host) != nil {
		return host
	}
	site, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return site
}
