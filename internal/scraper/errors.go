package scraper

import (
	"errors"
	"fmt"
)

// ErrUnsupportedSite is returned when no registered scraper handles the
// URL's host. This is permanent until the user submits a different URL.
var ErrUnsupportedSite = errors.New("no scraper supports this site")

// FetchError is a transient network-level failure: transport error,
// timeout, or a non-2xx status. The monitor retries on the next cycle.
type FetchError struct {
	URL        string
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError means the page was fetched but the expected node was missing
// or unusable. Missing is "title" or "price". Repeated occurrences signal
// a site layout change rather than a network problem.
type ParseError struct {
	URL     string
	Missing string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s not found", e.URL, e.Missing)
}
