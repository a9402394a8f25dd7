package models

import "time"

// State is the lifecycle position of a single domain worker.
type State int

const (
	StatePending State = iota
	StateFetching
	StateFetchFailed
	StateFetched
	StateParsing
	StateParseFailed
	StateCompleted
)

var stateNames = map[State]string{
	StatePending:     "pending",
	StateFetching:    "fetching",
	StateFetchFailed: "fetch_failed",
	StateFetched:     "fetched",
	StateParsing:     "parsing",
	StateParseFailed: "parse_failed",
	StateCompleted:   "completed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transition can happen from s.
func (s State) Terminal() bool {
	return s == StateFetchFailed || s == StateParseFailed || s == StateCompleted
}

// ResultMap maps a domain to the matched URLs discovered on its landing page,
// in discovery order. A missing key means the domain could not be fetched.
type ResultMap map[string][]string

// DomainResult is the terminal outcome of one domain worker
type DomainResult struct {
	Domain     string        `json:"domain"`
	State      State         `json:"-"`
	StateName  string        `json:"state"`
	StatusCode int           `json:"status_code,omitempty"`
	URLs       []string      `json:"urls"`
	LinksSeen  int           `json:"links_seen"`
	Matched    int           `json:"matched"`
	Duplicates int           `json:"duplicates"`
	Err        error         `json:"-"`
	Error      string        `json:"error,omitempty"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Present reports whether the domain gets a key in the ResultMap. Only a
// failed fetch leaves it out; a parse failure keeps whatever was collected.
func (r *DomainResult) Present() bool {
	return r.State == StateParseFailed || r.State == StateCompleted
}

// Finish records the terminal state and error in their serialisable form too.
func (r *DomainResult) Finish(state State, err error) {
	r.State = state
	r.StateName = state.String()
	r.Err = err
	if err != nil {
		r.Error = err.Error()
	}
}

// CrawlResult contains the results of a crawl run
type CrawlResult struct {
	RunID     string         `json:"run_id"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration"`
	Domains   []DomainResult `json:"domains"`
	Results   ResultMap      `json:"results"`
}

// Summary aggregates a crawl run for operators.
type Summary struct {
	RunID        string         `json:"run_id"`
	TotalDomains int            `json:"total_domains"`
	Completed    int            `json:"completed"`
	FetchFailed  int            `json:"fetch_failed"`
	ParseFailed  int            `json:"parse_failed"`
	Empty        int            `json:"empty"`
	MatchedURLs  int            `json:"matched_urls"`
	Duplicates   int            `json:"duplicates"`
	Duration     time.Duration  `json:"duration"`
	TopSites     []SiteCount    `json:"top_sites"`
	Failures     []Failure      `json:"failures"`
	Domains      []DomainResult `json:"-"`
}

// SiteCount is the number of matched URLs pointing at one registrable domain.
type SiteCount struct {
	Site  string `json:"site"`
	Count int    `json:"count"`
}

// Failure identifies one domain that did not complete.
type Failure struct {
	Domain string `json:"domain"`
	State  string `json:"state"`
	Error  string `json:"error"`
}
