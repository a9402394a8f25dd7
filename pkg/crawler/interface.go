package crawler

import "iter"

// Matcher decides whether a discovered URL is wanted.
type Matcher interface {
	Matches(url string) bool
}

// Claimer records URLs as seen for the whole run. Claim returns true only to
// the first caller for a given URL.
type Claimer interface {
	Claim(url string) bool
}

// LinkSource yields the absolute links found in markup, in document order.
type LinkSource interface {
	Links(markup, baseURL string) iter.Seq2[string, error]
}
