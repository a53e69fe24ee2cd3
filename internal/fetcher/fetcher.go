// Package fetcher retrieves text resources over HTTP. It is the only
// place in this module that touches the network; everything above it
// receives decoded text plus a status code.
package fetcher

import (
	"context"
	"time"

	"github.com/caentzminger/grokipedia-go/internal/types"
)

// DefaultAccept is sent on every request unless overridden.
const DefaultAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

// RequestOptions carries per-request settings.
type RequestOptions struct {
	// Timeout bounds the whole request. Zero means no per-request
	// bound beyond the context's.
	Timeout time.Duration

	// Headers are additional request headers (User-Agent included).
	Headers map[string]string
}

// Fetcher fetches a URL's body as decoded text. Non-2xx responses are
// returned as responses with their status surfaced, not as errors;
// only network-level failures produce an error.
type Fetcher interface {
	FetchText(ctx context.Context, url string, opts RequestOptions) (*types.FetchResponse, error)
}
