// Package parser converts raw page HTML into the structured document
// model: title, intro, infobox, lead figure, nested sections with
// media, references, outbound links, and head metadata.
package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caentzminger/grokipedia-go/internal/dom"
	"github.com/caentzminger/grokipedia-go/internal/types"
	"github.com/caentzminger/grokipedia-go/internal/urlutil"
)

// Parser turns page HTML into Page values.
type Parser struct {
	logger *slog.Logger
}

// New creates a new page parser.
func New(logger *slog.Logger) *Parser {
	return &Parser{
		logger: logger.With("component", "page_parser"),
	}
}

// Options carries the fetch context injected alongside the raw HTML.
type Options struct {
	// SourceURL is the declared source URL, if known.
	SourceURL string

	// StatusCode is the HTTP status of the fetch. Zero defaults to
	// 200.
	StatusCode int

	// FetchedAt is the fetch timestamp. Zero defaults to the call
	// time.
	FetchedAt time.Time
}

// Parse builds a Page from raw HTML. It never returns a partial page:
// a missing article root or unresolvable title fails the whole call
// with a ParseError.
func (p *Parser) Parse(rawHTML string, opts Options) (*types.Page, error) {
	statusCode := opts.StatusCode
	if statusCode == 0 {
		statusCode = 200
	}
	fetchedAt := opts.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}

	p.logger.Debug("parsing HTML", "source_url", opts.SourceURL, "status_code", statusCode)

	root, err := dom.Parse(rawHTML)
	if err != nil {
		return nil, &types.ParseError{URL: opts.SourceURL, Err: fmt.Errorf("unable to parse HTML: %w", err)}
	}

	article := selectArticle(root)
	if article == nil {
		return nil, &types.ParseError{URL: opts.SourceURL, Err: errors.New("could not identify main content article")}
	}

	canonicalURL := extractCanonicalURL(root)
	pageURL := opts.SourceURL
	if pageURL == "" && canonicalURL != nil {
		pageURL = *canonicalURL
	}

	blocks := extractBlocks(article, pageURL)

	title := extractTitle(blocks)
	if title == "" {
		title = extractMetaTitle(root)
	}
	if title == "" {
		return nil, &types.ParseError{URL: opts.SourceURL, Err: errors.New("could not extract page title")}
	}

	sections, references := buildSections(blocks)
	attachPayloadMedia(rawHTML, sections, pageURL)

	keywords := extractKeywords(root)
	page := &types.Page{
		URL:        pageURL,
		Slug:       urlutil.SlugFromURL(pageURL),
		Title:      title,
		IntroText:  extractIntro(blocks),
		Infobox:    extractInfobox(article),
		LeadFigure: extractLeadFigure(article, pageURL),
		Sections:   sections,
		References: references,
		Links:      extractLinks(article, pageURL),
		Metadata: types.PageMetadata{
			StatusCode:   statusCode,
			FetchedAtUTC: types.NewUTCTime(fetchedAt),
			CanonicalURL: canonicalURL,
			Description:  extractDescription(root),
			Keywords:     keywords,
		},
	}

	mediaCount := 0
	for _, section := range sections {
		mediaCount += len(section.Media)
		for _, subsection := range section.Subsections {
			mediaCount += len(subsection.Media)
		}
	}
	p.logger.Debug("parsed page",
		"title", title,
		"sections", len(sections),
		"references", len(references),
		"media", mediaCount,
		"keywords", len(keywords),
	)

	return page, nil
}
