package types

import "net/http"

// FetchResponse is the decoded result of fetching a text resource.
type FetchResponse struct {
	// URL is the final URL after any redirects.
	URL string

	// StatusCode is the HTTP status code.
	StatusCode int

	// Headers are the response HTTP headers.
	Headers http.Header

	// Text is the decoded response body.
	Text string
}

// IsSuccess returns true if the response status is 2xx.
func (r *FetchResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
