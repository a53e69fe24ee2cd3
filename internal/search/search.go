// Package search runs full-text queries against the source's search
// API, falling back to scraping the HTML results page when the API is
// unavailable.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/caentzminger/grokipedia-go/internal/types"
	"github.com/caentzminger/grokipedia-go/internal/urlutil"
)

// APIPath is the full-text search endpoint path.
const APIPath = "/api/full-text-search"

// FetchTextFunc fetches a URL and returns its decoded text body.
// Policy checks and status mapping happen inside the capability.
type FetchTextFunc func(ctx context.Context, url string) (*types.FetchResponse, error)

// Searcher resolves search queries to page URLs.
type Searcher struct {
	baseURL   string
	fetchText FetchTextFunc
	logger    *slog.Logger
}

// New creates a Searcher rooted at a base URL.
func New(baseURL string, fetchText FetchTextFunc, logger *slog.Logger) (*Searcher, error) {
	base, err := urlutil.ResolveBase(baseURL)
	if err != nil {
		return nil, err
	}
	return &Searcher{
		baseURL:   base,
		fetchText: fetchText,
		logger:    logger.With("component", "search"),
	}, nil
}

// Run executes a search and returns matching page URLs in result
// order. The JSON API is tried first; HTTP, parse, and robots
// failures fall back to the HTML results page. Network failures
// propagate.
func (s *Searcher) Run(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, types.ErrEmptyQuery
	}

	apiURL := fmt.Sprintf("%s%s?query=%s&limit=25&offset=0", s.baseURL, APIPath, url.QueryEscape(query))
	s.logger.Debug("search start", "query", query, "url", apiURL)

	response, err := s.fetchText(ctx, apiURL)
	if err == nil {
		pageURLs, parseErr := s.apiPageURLs(response.Text)
		if parseErr == nil {
			s.logger.Debug("search api results", "query", query, "count", len(pageURLs))
			return pageURLs, nil
		}
		err = parseErr
	}
	if !shouldFallback(err) {
		return nil, err
	}
	s.logger.Debug("search api failed; falling back to HTML results", "query", query, "error", err)

	htmlURL := fmt.Sprintf("%s/search?q=%s", s.baseURL, url.QueryEscape(query))
	response, err = s.fetchText(ctx, htmlURL)
	if err != nil {
		return nil, err
	}
	pageURLs, err := s.htmlPageURLs(response.Text)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("search html fallback results", "query", query, "count", len(pageURLs))
	return pageURLs, nil
}

// apiPageURLs extracts page URLs from the search API JSON payload.
func (s *Searcher) apiPageURLs(payload string) ([]string, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, &types.ParseError{Err: fmt.Errorf("unable to parse search API JSON: %w", err)}
	}

	rawResults, ok := data["results"].([]any)
	if !ok {
		return nil, &types.ParseError{Err: errors.New("search API JSON missing 'results' list")}
	}

	seen := map[string]bool{}
	pageURLs := []string{}
	for _, entry := range rawResults {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		slug, ok := m["slug"].(string)
		if !ok || strings.TrimSpace(slug) == "" {
			continue
		}

		pageURL, err := urlutil.PageURLFromSlug(slug, s.baseURL)
		if err != nil {
			continue
		}
		key := urlutil.Canonicalize(pageURL)
		if seen[key] {
			continue
		}
		seen[key] = true
		pageURLs = append(pageURLs, pageURL)
	}
	return pageURLs, nil
}

// htmlPageURLs extracts same-host /page/ links from the HTML results
// page, de-duplicated preserving order.
func (s *Searcher) htmlPageURLs(rawHTML string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, &types.ParseError{Err: fmt.Errorf("unable to parse search results HTML: %w", err)}
	}

	base, err := url.Parse(s.baseURL + "/")
	if err != nil {
		return nil, &types.ParseError{Err: err}
	}
	expectedHost := strings.ToLower(base.Host)

	seen := map[string]bool{}
	pageURLs := []string{}
	doc.Find("a[href]").Each(func(i int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if href == "" {
			return
		}
		parsedHref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(parsedHref)
		if strings.ToLower(resolved.Host) != expectedHost {
			return
		}
		if !strings.HasPrefix(resolved.Path, "/page/") {
			return
		}

		normalized := resolved.Scheme + "://" + resolved.Host + resolved.EscapedPath()
		if seen[normalized] {
			return
		}
		seen[normalized] = true
		pageURLs = append(pageURLs, normalized)
	})

	return pageURLs, nil
}

// shouldFallback reports whether an API failure should trigger the
// HTML fallback instead of propagating.
func shouldFallback(err error) bool {
	var statusErr *types.HTTPStatusError
	if errors.As(err, &statusErr) {
		return true
	}
	var notFound *types.PageNotFoundError
	if errors.As(err, &notFound) {
		return true
	}
	var parseErr *types.ParseError
	if errors.As(err, &parseErr) {
		return true
	}
	var disallowed *types.RobotsDisallowedError
	if errors.As(err, &disallowed) {
		return true
	}
	var unavailable *types.RobotsUnavailableError
	return errors.As(err, &unavailable)
}
