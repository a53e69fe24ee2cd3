package parser

import (
	"strings"

	"github.com/caentzminger/grokipedia-go/internal/dom"
	"github.com/caentzminger/grokipedia-go/internal/types"
	"github.com/caentzminger/grokipedia-go/internal/urlutil"
)

// extractMetaTitle falls back to og:title/twitter:title meta content,
// then a title element's text.
func extractMetaTitle(root *dom.Node) string {
	for _, node := range root.Descendants() {
		switch node.Tag {
		case "meta":
			if node.Attr("property") == "og:title" || node.Attr("name") == "twitter:title" {
				if content := normalizeWS(node.Attr("content")); content != "" {
					return content
				}
			}
		case "title":
			if title := normalizeWS(textContent(node, false)); title != "" {
				return title
			}
		}
	}
	return ""
}

// extractCanonicalURL prefers link[rel=canonical], then og:url or
// twitter:url meta content.
func extractCanonicalURL(root *dom.Node) *string {
	for _, node := range root.Descendants() {
		if node.Tag != "link" {
			continue
		}
		if !strings.EqualFold(node.Attr("rel"), "canonical") {
			continue
		}
		if href := strings.TrimSpace(node.Attr("href")); href != "" {
			return &href
		}
	}

	for _, node := range root.Descendants() {
		if node.Tag != "meta" {
			continue
		}
		prop := node.Attr("property")
		if prop != "og:url" && prop != "twitter:url" {
			continue
		}
		if content := strings.TrimSpace(node.Attr("content")); content != "" {
			return &content
		}
	}
	return nil
}

// extractDescription reads meta[name=description] or
// meta[property=og:description].
func extractDescription(root *dom.Node) *string {
	for _, node := range root.Descendants() {
		if node.Tag != "meta" {
			continue
		}
		if node.Attr("name") != "description" && node.Attr("property") != "og:description" {
			continue
		}
		if content := normalizeWS(node.Attr("content")); content != "" {
			return &content
		}
	}
	return nil
}

// extractKeywords reads meta[name=keywords] or
// meta[itemprop=keywords], splitting on commas and dropping empty
// entries. Absent or entirely empty keywords yield nil, not an empty
// list.
func extractKeywords(root *dom.Node) []string {
	for _, node := range root.Descendants() {
		if node.Tag != "meta" {
			continue
		}
		name := strings.ToLower(node.Attr("name"))
		itemProp := strings.ToLower(node.Attr("itemprop"))
		if name != "keywords" && itemProp != "keywords" {
			continue
		}
		content := node.Attr("content")
		if content == "" {
			continue
		}

		var values []string
		for _, part := range strings.Split(content, ",") {
			if keyword := normalizeWS(part); keyword != "" {
				values = append(values, keyword)
			}
		}
		if len(values) > 0 {
			return values
		}
	}
	return nil
}

// extractLinks collects every absolute outbound link inside the
// article, de-duplicated preserving first-seen order.
func extractLinks(article *dom.Node, baseURL string) []string {
	links := []string{}
	seen := map[string]bool{}

	for _, node := range article.Descendants() {
		if node.Tag != "a" {
			continue
		}
		href := strings.TrimSpace(node.Attr("href"))
		if href == "" {
			continue
		}
		resolved := urlutil.Resolve(baseURL, href)
		if seen[resolved] {
			continue
		}
		seen[resolved] = true
		links = append(links, resolved)
	}
	return links
}

// extractInfobox pairs dt labels with the immediately following dd
// among a container's direct children. A label with no following
// value is dropped.
func extractInfobox(article *dom.Node) []types.InfoboxField {
	fields := []types.InfoboxField{}

	for _, container := range article.Descendants() {
		var direct []*dom.Node
		hasLabel := false
		for _, child := range container.Children {
			if child.IsText() {
				continue
			}
			direct = append(direct, child)
			if child.Tag == "dt" {
				hasLabel = true
			}
		}
		if !hasLabel {
			continue
		}

		pendingLabel := ""
		for _, child := range direct {
			switch child.Tag {
			case "dt":
				pendingLabel = normalizeWS(renderInline(child))
			case "dd":
				if pendingLabel == "" {
					continue
				}
				if value := normalizeWS(renderInline(child)); value != "" {
					fields = append(fields, types.InfoboxField{Label: pendingLabel, Value: value})
				}
				pendingLabel = ""
			}
		}
	}
	return fields
}

// extractLeadFigure returns the first figure inside the article that
// yields a resolvable image URL.
func extractLeadFigure(article *dom.Node, baseURL string) *types.LeadFigure {
	for _, node := range article.Descendants() {
		if node.Tag != "figure" {
			continue
		}
		figure := extractFigureData(node, baseURL)
		if figure == nil {
			continue
		}
		return &types.LeadFigure{
			ImageURL: figure.imageURL,
			Caption:  figure.caption,
			AltText:  figure.altText,
		}
	}
	return nil
}
