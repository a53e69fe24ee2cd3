package parser

import (
	"github.com/caentzminger/grokipedia-go/internal/types"
)

// extractTitle returns the first level-1 heading's title, or "".
func extractTitle(blocks []Block) string {
	for _, block := range blocks {
		if block.Kind == BlockHeading && block.HeadingLevel == 1 {
			return block.HeadingTitle
		}
	}
	return ""
}

// extractIntro returns the first paragraph block occurring before the
// first level-2 heading (or before the end of the block sequence when
// no level-2 heading exists).
func extractIntro(blocks []Block) *string {
	end := len(blocks)
	for i, block := range blocks {
		if block.Kind == BlockHeading && block.HeadingLevel == 2 {
			end = i
			break
		}
	}
	for _, block := range blocks[:end] {
		if block.Kind == BlockParagraph {
			text := block.Text
			return &text
		}
	}
	return nil
}

// buildSections runs the section state machine over the block
// sequence. Level-2 headings open top-level sections, level-3 headings
// open subsections (synthesizing an implicit "Overview" section when
// none is open), and every other block is routed to the innermost open
// section. Blocks arriving before any section is open are dropped.
// List blocks under a "References" heading additionally contribute
// Reference entries with indices contiguous across all qualifying
// lists.
func buildSections(blocks []Block) ([]*types.Section, []types.Reference) {
	sections := []*types.Section{}
	references := []types.Reference{}

	var currentSection *types.Section
	var currentSubsection *types.Section
	inReferences := false

	for _, block := range blocks {
		if block.Kind == BlockHeading {
			switch block.HeadingLevel {
			case 1:
				// Title is resolved separately.
				continue

			case 2:
				currentSection = &types.Section{
					ID:          block.HeadingID,
					Title:       block.HeadingTitle,
					Level:       2,
					Media:       []types.SectionMedia{},
					Subsections: []*types.Section{},
				}
				sections = append(sections, currentSection)
				currentSubsection = nil
				inReferences = isReferencesTitle(block.HeadingTitle)
				continue

			case 3:
				if currentSection == nil {
					currentSection = &types.Section{
						Title:       "Overview",
						Level:       2,
						Media:       []types.SectionMedia{},
						Subsections: []*types.Section{},
					}
					sections = append(sections, currentSection)
				}
				currentSubsection = &types.Section{
					ID:          block.HeadingID,
					Title:       block.HeadingTitle,
					Level:       3,
					Media:       []types.SectionMedia{},
					Subsections: []*types.Section{},
				}
				currentSection.Subsections = append(currentSection.Subsections, currentSubsection)
				inReferences = isReferencesTitle(block.HeadingTitle)
				continue
			}
		}

		target := currentSubsection
		if target == nil {
			target = currentSection
		}
		if target == nil {
			continue
		}

		if block.Kind == BlockFigure && block.Figure != nil {
			appendSectionMedia(target, block.Figure)
			continue
		}

		target.Text = appendText(target.Text, block.Text)

		if inReferences && block.Kind == BlockList && block.Node != nil {
			references = append(references, referencesFromList(block, len(references)+1)...)
		}
	}

	return sections, references
}

// appendText joins accumulated section text with blank-line
// separation.
func appendText(current, addition string) string {
	if addition == "" {
		return current
	}
	if current == "" {
		return addition
	}
	return current + "\n\n" + addition
}

// appendSectionMedia appends a figure to a section's media, skipping
// image URLs already present and assigning the next 1-based index.
func appendSectionMedia(section *types.Section, figure *figureData) {
	for _, existing := range section.Media {
		if existing.ImageURL == figure.imageURL {
			return
		}
	}
	section.Media = append(section.Media, types.SectionMedia{
		Index:    len(section.Media) + 1,
		ImageURL: figure.imageURL,
		Caption:  figure.caption,
		AltText:  figure.altText,
	})
}

// referencesFromList converts one list block into Reference entries.
// Each non-empty item contributes one entry, using its first anchor
// href as the optional URL.
func referencesFromList(block Block, startIndex int) []types.Reference {
	var references []types.Reference
	for _, item := range listItems(block.Node) {
		text := normalizeWS(renderInline(item))
		if text == "" {
			continue
		}
		references = append(references, types.Reference{
			Index: startIndex + len(references),
			Text:  text,
			URL:   firstLink(item),
		})
	}
	return references
}
