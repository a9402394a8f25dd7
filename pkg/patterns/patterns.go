// Package patterns compiles the caller's URL filters once per run.
package patterns

import (
	"errors"
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
)

// MatchTimeout bounds a single pattern evaluation. The engine backtracks, so a
// pathological pattern could otherwise stall a worker.
const MatchTimeout = time.Second

// ErrNoPatterns is returned when Compile is given nothing to match with.
var ErrNoPatterns = errors.New("at least one pattern is required")

// InvalidPatternError reports a pattern string that is not a valid regular
// expression. It aborts the whole run.
type InvalidPatternError struct {
	Index   int
	Pattern string
	Err     error
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid pattern #%d %q: %v", e.Index, e.Pattern, e.Err)
}

func (e *InvalidPatternError) Unwrap() error {
	return e.Err
}

// Set is an immutable, ordered group of compiled patterns. It is safe for
// concurrent use. Patterns use Perl/Python syntax, including lookaround and
// backreferences.
type Set struct {
	raw      []string
	compiled []*regexp2.Regexp
}

// Compile compiles every raw pattern in order, failing on the first invalid one.
func Compile(raw []string) (*Set, error) {
	if len(raw) == 0 {
		return nil, ErrNoPatterns
	}
	s := &Set{
		raw:      make([]string, len(raw)),
		compiled: make([]*regexp2.Regexp, 0, len(raw)),
	}
	copy(s.raw, raw)
	for i, p := range raw {
		re, err := regexp2.Compile(p, regexp2.None)
		if err != nil {
			return nil, &InvalidPatternError{Index: i, Pattern: p, Err: err}
		}
		re.MatchTimeout = MatchTimeout
		s.compiled = append(s.compiled, re)
	}
	return s, nil
}

// Matches reports whether any pattern matches anywhere in url. A pattern that
// exceeds MatchTimeout counts as not matching.
func (s *Set) Matches(url string) bool {
	for _, re := range s.compiled {
		if ok, err := re.MatchString(url); err == nil && ok {
			return true
		}
	}
	return false
}

func (s *Set) Len() int {
	return len(s.compiled)
}

// Strings returns a copy of the source patterns.
func (s *Set) Strings() []string {
	out := make([]string, len(s.raw))
	copy(out, s.raw)
	return out
}
