package parser

import (
	"strings"

	"github.com/caentzminger/grokipedia-go/internal/types"
	"github.com/caentzminger/grokipedia-go/internal/urlutil"
)

// attachPayloadMedia recovers media embedded in client-hydration
// payloads. The DOM walk cannot see this content, but it appears as
// escaped markdown-shaped text in the raw HTML: heading markers drive
// a match cursor over the already-built section tree and image syntax
// contributes media to the matched section or subsection.
func attachPayloadMedia(rawHTML string, sections []*types.Section, baseURL string) {
	if len(sections) == 0 {
		return
	}

	decoded := strings.ReplaceAll(rawHTML, `\"`, `"`)
	decoded = strings.ReplaceAll(decoded, `\n`, "\n")
	if !strings.Contains(decoded, "## ") || !strings.Contains(decoded, "![") {
		return
	}

	var currentSection *types.Section
	var currentSubsection *types.Section
	sectionCursor := -1
	subsectionCursor := -1

	lines := strings.Split(decoded, "\n")
	for index, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}

		if title, ok := strings.CutPrefix(stripped, "## "); ok {
			currentSection, sectionCursor = matchSectionByTitle(sections, title, sectionCursor+1)
			currentSubsection = nil
			subsectionCursor = -1
			continue
		}

		if title, ok := strings.CutPrefix(stripped, "### "); ok {
			if currentSection == nil {
				continue
			}
			currentSubsection, subsectionCursor = matchSectionByTitle(
				currentSection.Subsections, title, subsectionCursor+1)
			continue
		}

		altValue, linkValue, ok := parseMarkdownImage(stripped)
		if !ok {
			continue
		}

		target := currentSubsection
		if target == nil {
			target = currentSection
		}
		if target == nil {
			continue
		}

		rawURL := markdownImageURL(linkValue)
		if rawURL == "" {
			continue
		}

		figure := &figureData{imageURL: urlutil.NormalizeImageURL(rawURL, baseURL)}
		if alt := normalizeWS(altValue); alt != "" {
			figure.altText = &alt
		}
		figure.caption = markdownCaption(lines, index+1)

		appendSectionMedia(target, figure)
	}
}

// matchSectionByTitle finds a section whose normalized title matches,
// scanning forward from startIndex and falling back to a from-scratch
// scan when advancing fails. Returns the match and its index, or
// (nil, startIndex-1) when nothing matches.
func matchSectionByTitle(sections []*types.Section, title string, startIndex int) (*types.Section, int) {
	normalized := strings.ToLower(normalizeWS(title))
	if normalized == "" {
		return nil, startIndex - 1
	}

	if startIndex < 0 {
		startIndex = 0
	}
	for i := startIndex; i < len(sections); i++ {
		if strings.ToLower(normalizeWS(sections[i].Title)) == normalized {
			return sections[i], i
		}
	}
	for i, section := range sections {
		if strings.ToLower(normalizeWS(section.Title)) == normalized {
			return section, i
		}
	}
	return nil, startIndex - 1
}

// parseMarkdownImage extracts alt text and link value from markdown
// image syntax. The link value is scanned with balanced-parenthesis
// depth tracking so literal parentheses inside the URL are tolerated.
func parseMarkdownImage(line string) (alt, link string, ok bool) {
	start := strings.Index(line, "![")
	for start != -1 {
		altStart := start + 2
		rest := line[altStart:]
		altLen := strings.IndexByte(rest, ']')
		if altLen == -1 {
			return "", "", false
		}
		altEnd := altStart + altLen

		if altEnd+1 >= len(line) || line[altEnd+1] != '(' {
			next := strings.Index(line[altEnd+1:], "![")
			if next == -1 {
				return "", "", false
			}
			start = altEnd + 1 + next
			continue
		}

		linkStart := altEnd + 2
		depth := 1
		for cursor := linkStart; cursor < len(line); cursor++ {
			char := line[cursor]
			escaped := cursor > linkStart && line[cursor-1] == '\\'
			switch {
			case char == '(' && !escaped:
				depth++
			case char == ')' && !escaped:
				depth--
				if depth == 0 {
					return line[altStart:altEnd], line[linkStart:cursor], true
				}
			}
		}
		return "", "", false
	}
	return "", "", false
}

// markdownImageURL extracts the URL from a markdown link value,
// honoring angle-bracket quoting and dropping any trailing title.
func markdownImageURL(linkValue string) string {
	value := normalizeWS(linkValue)
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "<") {
		if end := strings.IndexByte(value, '>'); end != -1 {
			return value[1:end]
		}
	}
	first, _, _ := strings.Cut(value, " ")
	return first
}

// markdownCaption looks at the next few lines for a caption: the first
// non-blank line counts only when wrapped in single asterisks; any
// other non-blank content aborts caption detection for the image.
func markdownCaption(lines []string, startIndex int) *string {
	end := startIndex + 4
	if end > len(lines) {
		end = len(lines)
	}
	for _, line := range lines[startIndex:end] {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		if strings.HasPrefix(stripped, "##") || strings.HasPrefix(stripped, "![") {
			return nil
		}
		if strings.HasPrefix(stripped, "*") && strings.HasSuffix(stripped, "*") && len(stripped) > 2 {
			if caption := normalizeWS(stripped[1 : len(stripped)-1]); caption != "" {
				return &caption
			}
			return nil
		}
		return nil
	}
	return nil
}
