package crawler

import (
	"sync"
	"sync/atomic"
)

// Registry is the run-wide set of claimed URLs. A claim is permanent.
type Registry struct {
	seen      sync.Map
	claimed   atomic.Int64
	contested atomic.Int64
}

// NewRegistry creates an empty Registry for one run.
func NewRegistry() *Registry {
	return &Registry{}
}

// Claim atomically registers url and reports whether this call was the first.
func (r *Registry) Claim(url string) bool {
	if _, loaded := r.seen.LoadOrStore(url, struct{}{}); loaded {
		r.contested.Add(1)
		return false
	}
	r.claimed.Add(1)
	return true
}

// Len returns the number of distinct URLs claimed so far.
func (r *Registry) Len() int {
	return int(r.claimed.Load())
}

// Contested returns how many claims were refused because the URL was taken.
func (r *Registry) Contested() int {
	return int(r.contested.Load())
}
