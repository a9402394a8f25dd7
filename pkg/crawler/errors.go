package crawler

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// FetchError means the landing page could not be retrieved: a transport
// failure, a timeout, or a non-200 status. The domain gets no result entry.
type FetchError struct {
	Domain     string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch %s: HTTP %d", e.Domain, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.Domain, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the fetch ran out of time.
func (e *FetchError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// ParseError means the page was fetched but its body could not be read or
// tokenized to the end. The domain keeps whatever links were collected.
type ParseError struct {
	Domain string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Domain, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
