package parser

import (
	"strconv"
	"strings"

	"github.com/caentzminger/grokipedia-go/internal/dom"
)

// skipInlineTags are excluded from inline text rendering.
var skipInlineTags = map[string]bool{
	"button":   true,
	"script":   true,
	"style":    true,
	"svg":      true,
	"path":     true,
	"noscript": true,
}

// skipSubtreeTags are never descended into during block extraction.
var skipSubtreeTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
}

// normalizeWS collapses all runs of whitespace to single spaces and
// trims the ends.
func normalizeWS(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// textContent concatenates every text fragment under node, skipping
// non-content inline subtrees. With preserveWhitespace false the
// result is whitespace-normalized.
func textContent(node *dom.Node, preserveWhitespace bool) string {
	var b strings.Builder
	var visit func(*dom.Node)
	visit = func(current *dom.Node) {
		if current.IsText() {
			b.WriteString(current.Text)
			return
		}
		if skipInlineTags[current.Tag] {
			return
		}
		for _, child := range current.Children {
			visit(child)
		}
	}
	visit(node)
	if preserveWhitespace {
		return b.String()
	}
	return normalizeWS(b.String())
}

// renderInline renders a node's visible inline text. Anchors render as
// their text content, falling back to the href only when the text is
// empty. <br> renders as a newline and <code> spans are normalized.
func renderInline(node *dom.Node) string {
	return renderInlineNode(node, false)
}

func renderInlineNode(node *dom.Node, inCode bool) string {
	if node.IsText() {
		return node.Text
	}
	if skipInlineTags[node.Tag] {
		return ""
	}
	if node.Tag == "br" {
		return "\n"
	}

	var b strings.Builder
	for _, child := range node.Children {
		b.WriteString(renderInlineNode(child, inCode))
	}
	children := b.String()

	switch node.Tag {
	case "a":
		text := normalizeWS(children)
		href := strings.TrimSpace(node.Attr("href"))
		if href != "" && text != "" {
			return text
		}
		if text != "" {
			return text
		}
		return href
	case "code":
		if !inCode {
			return normalizeWS(children)
		}
	}
	return children
}

// renderList renders ul/ol contents as newline-joined bullet or
// numbered lines. Empty items are dropped.
func renderList(node *dom.Node) string {
	ordered := node.Tag == "ol"
	items := listItems(node)

	var lines []string
	for i, item := range items {
		text := normalizeWS(renderInline(item))
		if text == "" {
			continue
		}
		if ordered {
			lines = append(lines, strconv.Itoa(i+1)+". "+text)
		} else {
			lines = append(lines, "- "+text)
		}
	}
	return strings.Join(lines, "\n")
}

// listItems prefers direct li children, falling back to any li
// descendant when the markup wraps items in intermediate containers.
func listItems(node *dom.Node) []*dom.Node {
	var direct []*dom.Node
	for _, child := range node.Children {
		if !child.IsText() && child.Tag == "li" {
			direct = append(direct, child)
		}
	}
	if len(direct) > 0 {
		return direct
	}

	var nested []*dom.Node
	for _, descendant := range node.Descendants() {
		if descendant.Tag == "li" {
			nested = append(nested, descendant)
		}
	}
	return nested
}

// renderPre renders a pre block. A nested code element's
// preserved-whitespace text wins over the pre element's own text.
// Leading and trailing newlines are trimmed.
func renderPre(node *dom.Node) string {
	var codeNode *dom.Node
	for _, child := range node.Children {
		if !child.IsText() && child.Tag == "code" {
			codeNode = child
			break
		}
	}

	var code string
	if codeNode != nil {
		code = textContent(codeNode, true)
	} else {
		code = textContent(node, true)
	}
	return strings.Trim(code, "\n")
}

// firstLink returns the first non-empty anchor href under node,
// depth-first, or nil.
func firstLink(node *dom.Node) *string {
	for _, descendant := range node.Descendants() {
		if descendant.Tag != "a" {
			continue
		}
		href := strings.TrimSpace(descendant.Attr("href"))
		if href != "" {
			return &href
		}
	}
	return nil
}
