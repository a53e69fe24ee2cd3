// Package grokipedia is the public client for fetching and parsing
// pages from the content source.
//
// Example usage:
//
//	client := grokipedia.New(
//	    grokipedia.WithTimeout(15 * time.Second),
//	    grokipedia.WithUserAgent("my-app/1.0"),
//	)
//
//	page, err := client.Page(ctx, "Go_(programming_language)")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(page.Title)
package grokipedia

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caentzminger/grokipedia-go/internal/config"
	"github.com/caentzminger/grokipedia-go/internal/fetcher"
	"github.com/caentzminger/grokipedia-go/internal/parser"
	"github.com/caentzminger/grokipedia-go/internal/robots"
	"github.com/caentzminger/grokipedia-go/internal/search"
	"github.com/caentzminger/grokipedia-go/internal/sitemap"
	"github.com/caentzminger/grokipedia-go/internal/types"
	"github.com/caentzminger/grokipedia-go/internal/urlutil"
)

// Client is the high-level API for the content source.
type Client struct {
	cfg      *config.Config
	logger   *slog.Logger
	fetcher  fetcher.Fetcher
	robots   *robots.Checker
	parser   *parser.Parser
	manifest *sitemap.Manifest
}

// Option customizes a Client.
type Option func(*Client)

// WithConfig replaces the whole configuration.
func WithConfig(cfg *config.Config) Option {
	return func(c *Client) { c.cfg = cfg }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.cfg.Client.Timeout = timeout }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) { c.cfg.Client.UserAgent = userAgent }
}

// WithBaseURL points the client at a different base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.cfg.Client.BaseURL = baseURL }
}

// WithSitemapIndexURL points the manifest at a different sitemap
// index.
func WithSitemapIndexURL(indexURL string) Option {
	return func(c *Client) { c.cfg.Sitemap.IndexURL = indexURL }
}

// WithRespectRobots toggles the robots.txt gate.
func WithRespectRobots(respect bool) Option {
	return func(c *Client) { c.cfg.Client.RespectRobots = respect }
}

// WithRobotsOverride skips the robots.txt gate even when robots are
// respected generally.
func WithRobotsOverride(override bool) Option {
	return func(c *Client) { c.cfg.Client.AllowRobotsOverride = override }
}

// WithFetcher injects a custom fetcher (used heavily by tests).
func WithFetcher(f fetcher.Fetcher) Option {
	return func(c *Client) { c.fetcher = f }
}

// WithLogger injects a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a Client with the given options applied over defaults.
func New(opts ...Option) *Client {
	c := &Client{cfg: config.DefaultConfig()}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	if c.fetcher == nil {
		c.fetcher = fetcher.NewHTTPFetcher(&c.cfg.Fetcher, c.logger)
	}
	c.robots = robots.NewChecker(c.fetcher, c.logger)
	c.parser = parser.New(c.logger)
	c.manifest = sitemap.NewManifest(c.cfg.Sitemap.IndexURL, c.fetchText(true), c.logger)
	return c
}

// FromURL fetches a page URL and parses it into a Page. The robots
// gate runs first unless disabled; a 404 maps to PageNotFoundError
// and any other 4xx/5xx to HTTPStatusError.
func (c *Client) FromURL(ctx context.Context, pageURL string) (*types.Page, error) {
	response, err := c.fetchText(false)(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return c.parser.Parse(response.Text, parser.Options{
		SourceURL:  response.URL,
		StatusCode: response.StatusCode,
		FetchedAt:  time.Now().UTC(),
	})
}

// FromHTML parses already-fetched HTML without touching the network.
func (c *Client) FromHTML(rawHTML, sourceURL string) (*types.Page, error) {
	return c.parser.Parse(rawHTML, parser.Options{SourceURL: sourceURL})
}

// Page fetches a page by slug.
func (c *Client) Page(ctx context.Context, slug string) (*types.Page, error) {
	pageURL, err := urlutil.PageURLFromSlug(slug, c.cfg.Client.BaseURL)
	if err != nil {
		return nil, err
	}
	return c.FromURL(ctx, pageURL)
}

// Search runs a full-text search and returns matching page URLs.
func (c *Client) Search(ctx context.Context, query string) ([]string, error) {
	searcher, err := search.New(c.cfg.Client.BaseURL, search.FetchTextFunc(c.fetchText(false)), c.logger)
	if err != nil {
		return nil, err
	}
	return searcher.Run(ctx, query)
}

// FindPageURL resolves a title to its canonical published page URL
// via the sitemap manifest, or "" when the title is not in the
// inventory.
func (c *Client) FindPageURL(ctx context.Context, title string) (string, error) {
	slug := strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
	candidateURL, err := urlutil.PageURLFromSlug(slug, c.cfg.Client.BaseURL)
	if err != nil {
		return "", err
	}
	return c.manifest.FindMatchingURL(ctx, candidateURL)
}

// RefreshManifest drops every cached sitemap and reloads the index,
// returning the fresh child-sitemap snapshot.
func (c *Client) RefreshManifest(ctx context.Context) (map[string][]string, error) {
	return c.manifest.Refresh(ctx)
}

// fetchText builds the policy-checked text-fetching capability shared
// by page fetches, the search module, and the manifest cache.
func (c *Client) fetchText(notFoundIsPage bool) func(ctx context.Context, url string) (*types.FetchResponse, error) {
	return func(ctx context.Context, url string) (*types.FetchResponse, error) {
		clientCfg := c.cfg.Client

		if clientCfg.RespectRobots && !clientCfg.AllowRobotsOverride {
			if err := c.robots.Check(ctx, url, clientCfg.UserAgent, clientCfg.Timeout); err != nil {
				return nil, err
			}
		}

		response, err := c.fetcher.FetchText(ctx, url, fetcher.RequestOptions{
			Timeout: clientCfg.Timeout,
			Headers: map[string]string{"User-Agent": clientCfg.UserAgent},
		})
		if err != nil {
			return nil, err
		}

		if response.StatusCode == 404 && !notFoundIsPage {
			return nil, &types.PageNotFoundError{URL: response.URL}
		}
		if response.StatusCode >= 400 {
			return nil, &types.HTTPStatusError{StatusCode: response.StatusCode, URL: response.URL}
		}
		return response, nil
	}
}
