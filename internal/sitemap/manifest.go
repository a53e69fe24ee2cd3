// Package sitemap maintains a lazily-loaded, cached inventory of the
// source's published page URLs, derived from a two-level sitemap. It
// resolves candidate page URLs against the inventory without
// exhaustive re-fetching.
package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/caentzminger/grokipedia-go/internal/types"
	"github.com/caentzminger/grokipedia-go/internal/urlutil"
)

// FetchTextFunc fetches a URL and returns its decoded text body.
// Policy enforcement, timeouts, and status mapping are the caller's
// concern: non-2xx responses surface as typed errors from the
// capability, never from the cache.
type FetchTextFunc func(ctx context.Context, url string) (*types.FetchResponse, error)

// Manifest is the cached sitemap-derived page inventory. The index
// list is fetched once and cached; child sitemaps load lazily during
// lookups. A reverse canonical-key index with per-sitemap ownership
// makes repeated lookups O(1) and invalidation precise.
//
// A Manifest is not safe for concurrent use; callers requiring
// concurrent resolution must serialize access or use independent
// instances.
type Manifest struct {
	indexURL  string
	fetchText FetchTextFunc
	logger    *slog.Logger

	indexLoaded bool
	index       []string
	entries     map[string]*sitemapEntry
	reverse     map[string]string
}

// sitemapEntry is the cached state of one child sitemap.
type sitemapEntry struct {
	loaded    bool
	pageURLs  []string
	ownedKeys []string
}

// NewManifest creates a manifest rooted at a sitemap index URL.
func NewManifest(indexURL string, fetchText FetchTextFunc, logger *slog.Logger) *Manifest {
	return &Manifest{
		indexURL:  indexURL,
		fetchText: fetchText,
		logger:    logger.With("component", "sitemap_manifest"),
		entries:   map[string]*sitemapEntry{},
		reverse:   map[string]string{},
	}
}

// Refresh drops every cached sitemap, page list, and reverse-index
// contribution, then eagerly reloads the index. Child sitemaps remain
// lazy. It returns the current child-sitemap to page-URL-list
// snapshot.
func (m *Manifest) Refresh(ctx context.Context) (map[string][]string, error) {
	m.indexLoaded = false
	m.index = nil
	m.entries = map[string]*sitemapEntry{}
	m.reverse = map[string]string{}

	if err := m.loadIndex(ctx); err != nil {
		return nil, err
	}
	return m.snapshot(), nil
}

// FindMatchingURL resolves a candidate URL against the inventory. It
// canonicalizes the candidate, short-circuits on a reverse-index hit,
// and otherwise lazily loads child sitemaps in index order until a
// match is found. Returns "" when the inventory is exhausted without a
// match.
func (m *Manifest) FindMatchingURL(ctx context.Context, candidateURL string) (string, error) {
	key := urlutil.Canonicalize(candidateURL)
	if match, ok := m.reverse[key]; ok {
		return match, nil
	}

	if err := m.loadIndex(ctx); err != nil {
		return "", err
	}

	for _, sitemapURL := range m.index {
		entry := m.entries[sitemapURL]
		if entry == nil || entry.loaded {
			continue
		}
		if err := m.loadChild(ctx, sitemapURL, entry); err != nil {
			return "", err
		}
		if match, ok := m.reverse[key]; ok {
			return match, nil
		}
	}
	return "", nil
}

// loadIndex fetches and caches the sitemap index list. Entries for
// sitemaps no longer listed have their reverse-index contributions
// removed; entries still listed keep their cached state.
func (m *Manifest) loadIndex(ctx context.Context) error {
	if m.indexLoaded {
		return nil
	}

	response, err := m.fetchText(ctx, m.indexURL)
	if err != nil {
		return err
	}
	sitemapURLs, err := parseSitemapLocs(response.Text)
	if err != nil {
		return &types.ParseError{URL: m.indexURL, Err: err}
	}

	listed := make(map[string]bool, len(sitemapURLs))
	for _, sitemapURL := range sitemapURLs {
		listed[sitemapURL] = true
		if m.entries[sitemapURL] == nil {
			m.entries[sitemapURL] = &sitemapEntry{}
		}
	}
	for sitemapURL, entry := range m.entries {
		if !listed[sitemapURL] {
			m.removeContributions(entry)
			delete(m.entries, sitemapURL)
		}
	}

	m.index = sitemapURLs
	m.indexLoaded = true
	m.logger.Debug("loaded sitemap index", "count", len(sitemapURLs))
	return nil
}

// loadChild fetches one child sitemap and records its page URLs in
// the reverse index under this sitemap's ownership set.
func (m *Manifest) loadChild(ctx context.Context, sitemapURL string, entry *sitemapEntry) error {
	response, err := m.fetchText(ctx, sitemapURL)
	if err != nil {
		return err
	}
	pageURLs, err := parseSitemapLocs(response.Text)
	if err != nil {
		return &types.ParseError{URL: sitemapURL, Err: err}
	}

	entry.pageURLs = pageURLs
	for _, pageURL := range pageURLs {
		key := urlutil.Canonicalize(pageURL)
		if _, taken := m.reverse[key]; taken {
			continue
		}
		m.reverse[key] = pageURL
		entry.ownedKeys = append(entry.ownedKeys, key)
	}
	entry.loaded = true
	m.logger.Debug("loaded child sitemap", "sitemap_url", sitemapURL, "page_count", len(pageURLs))
	return nil
}

// removeContributions drops exactly one sitemap's keys from the
// reverse index.
func (m *Manifest) removeContributions(entry *sitemapEntry) {
	for _, key := range entry.ownedKeys {
		delete(m.reverse, key)
	}
	entry.ownedKeys = nil
}

func (m *Manifest) snapshot() map[string][]string {
	out := make(map[string][]string, len(m.entries))
	for sitemapURL, entry := range m.entries {
		pageURLs := make([]string, len(entry.pageURLs))
		copy(pageURLs, entry.pageURLs)
		out[sitemapURL] = pageURLs
	}
	return out
}

// parseSitemapLocs extracts every <loc> value from sitemap XML in
// document order, regardless of namespace, dropping empties and
// duplicates.
func parseSitemapLocs(xmlText string) ([]string, error) {
	decoder := xml.NewDecoder(strings.NewReader(xmlText))

	var urls []string
	seen := map[string]bool{}
	inLoc := false
	var current strings.Builder

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("unable to parse sitemap XML: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "loc" {
				inLoc = true
				current.Reset()
			}
		case xml.CharData:
			if inLoc {
				current.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "loc" {
				inLoc = false
				value := strings.TrimSpace(current.String())
				if value != "" && !seen[value] {
					seen[value] = true
					urls = append(urls, value)
				}
			}
		}
	}
	return urls, nil
}
