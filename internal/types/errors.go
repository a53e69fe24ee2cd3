package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrEmptyQuery = errors.New("search query must not be empty")
	ErrEmptySlug  = errors.New("slug must not be empty")
	ErrEmptyBase  = errors.New("base URL must not be empty")
)

// FetchError wraps network-level errors that occur during fetching.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// HTTPStatusError reports an unexpected HTTP status code.
type HTTPStatusError struct {
	StatusCode int
	URL        string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d for URL: %s", e.StatusCode, e.URL)
}

// PageNotFoundError reports a 404 for a page URL.
type PageNotFoundError struct {
	URL string
}

func (e *PageNotFoundError) Error() string {
	return fmt.Sprintf("page not found: %s", e.URL)
}

// RobotsDisallowedError reports a URL blocked by robots.txt.
type RobotsDisallowedError struct {
	URL string
}

func (e *RobotsDisallowedError) Error() string {
	return fmt.Sprintf("URL disallowed by robots.txt: %s", e.URL)
}

// RobotsUnavailableError reports that robots.txt could not be fetched
// or parsed, so the policy check cannot be performed.
type RobotsUnavailableError struct {
	RobotsURL string
	Err       error
}

func (e *RobotsUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not validate robots.txt %s: %v", e.RobotsURL, e.Err)
	}
	return fmt.Sprintf("could not validate robots.txt: %s", e.RobotsURL)
}

func (e *RobotsUnavailableError) Unwrap() error { return e.Err }

// ParseError wraps errors that occur while parsing page HTML or
// sitemap XML. A ParseError is fatal to the current call: no partial
// Page or manifest is ever returned alongside one.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("parse error for %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports a malformed value encountered while
// reconstructing a Page from its plain-object representation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}
