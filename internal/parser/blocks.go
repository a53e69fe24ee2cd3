package parser

import (
	"strings"

	"github.com/caentzminger/grokipedia-go/internal/dom"
	"github.com/caentzminger/grokipedia-go/internal/urlutil"
)

// articleClassMarker identifies the primary article template.
const articleClassMarker = "text-[16px]"

// BlockKind classifies a content block.
type BlockKind int

const (
	BlockHeading BlockKind = iota
	BlockParagraph
	BlockFigure
	BlockList
	BlockCode
	BlockBlockquote
)

// Block is one classified, linearized unit of article content, emitted
// in document order and never mutated afterwards.
type Block struct {
	Kind BlockKind
	Text string
	Node *dom.Node

	// Heading blocks only.
	HeadingLevel int
	HeadingID    *string
	HeadingTitle string

	// Figure blocks only.
	Figure *figureData
}

// figureData is the resolved content of a figure element or a
// recovered markdown image.
type figureData struct {
	imageURL string
	caption  *string
	altText  *string
}

// selectArticle picks the article root. Priority: the article carrying
// the primary template class marker, else the first article containing
// both an h1 and a "References" heading, else the first article at
// all. Returns nil when the document has no article element.
func selectArticle(root *dom.Node) *dom.Node {
	var articles []*dom.Node
	for _, node := range root.Descendants() {
		if node.Tag == "article" {
			articles = append(articles, node)
		}
	}
	if len(articles) == 0 {
		return nil
	}

	for _, article := range articles {
		if strings.Contains(article.Attr("class"), articleClassMarker) {
			return article
		}
	}

	for _, article := range articles {
		hasH1 := false
		hasReferences := false
		for _, node := range article.Descendants() {
			switch node.Tag {
			case "h1":
				hasH1 = true
			case "h2", "h3":
				if isReferencesTitle(renderInline(node)) {
					hasReferences = true
				}
			}
		}
		if hasH1 && hasReferences {
			return article
		}
	}

	return articles[0]
}

// extractBlocks walks the article subtree depth-first and emits typed
// blocks. Descent stops at any node that emits a block; script, style
// and noscript subtrees are skipped entirely.
func extractBlocks(article *dom.Node, baseURL string) []Block {
	var blocks []Block

	var visit func(*dom.Node)
	visit = func(node *dom.Node) {
		if skipSubtreeTags[node.Tag] {
			return
		}

		switch node.Tag {
		case "h1", "h2", "h3":
			title := normalizeWS(renderInline(node))
			if title != "" {
				blocks = append(blocks, Block{
					Kind:         BlockHeading,
					Node:         node,
					HeadingLevel: int(node.Tag[1] - '0'),
					HeadingID:    headingID(node),
					HeadingTitle: title,
				})
			}
			return

		case "p":
			if text := normalizeWS(renderInline(node)); text != "" {
				blocks = append(blocks, Block{Kind: BlockParagraph, Text: text, Node: node})
			}
			return

		case "span":
			if node.Attr("data-tts-block") == "true" {
				if text := normalizeWS(renderInline(node)); text != "" {
					blocks = append(blocks, Block{Kind: BlockParagraph, Text: text, Node: node})
				}
				return
			}

		case "figure":
			if figure := extractFigureData(node, baseURL); figure != nil {
				blocks = append(blocks, Block{Kind: BlockFigure, Node: node, Figure: figure})
			}
			return

		case "ul", "ol":
			if text := renderList(node); text != "" {
				blocks = append(blocks, Block{Kind: BlockList, Text: text, Node: node})
			}
			return

		case "pre":
			if text := renderPre(node); text != "" {
				blocks = append(blocks, Block{Kind: BlockCode, Text: text, Node: node})
			}
			return

		case "blockquote":
			if quote := normalizeWS(renderInline(node)); quote != "" {
				blocks = append(blocks, Block{Kind: BlockBlockquote, Text: quote, Node: node})
			}
			return
		}

		for _, child := range node.Children {
			if !child.IsText() {
				visit(child)
			}
		}
	}

	visit(article)
	return blocks
}

// extractFigureData resolves a figure element to its image URL,
// caption, and alt text. Figures without a resolvable image source
// yield nil.
func extractFigureData(node *dom.Node, baseURL string) *figureData {
	var imageNode *dom.Node
	for _, descendant := range node.Descendants() {
		if descendant.Tag == "img" {
			imageNode = descendant
			break
		}
	}
	if imageNode == nil {
		return nil
	}

	rawSrc := strings.TrimSpace(imageNode.Attr("src"))
	if rawSrc == "" {
		if srcset := strings.TrimSpace(imageNode.Attr("srcset")); srcset != "" {
			first, _, _ := strings.Cut(srcset, ",")
			rawSrc, _, _ = strings.Cut(first, " ")
		}
	}
	if rawSrc == "" {
		return nil
	}

	figure := &figureData{imageURL: urlutil.NormalizeImageURL(rawSrc, baseURL)}

	for _, descendant := range node.Descendants() {
		if descendant.Tag == "figcaption" {
			if caption := normalizeWS(renderInline(descendant)); caption != "" {
				figure.caption = &caption
			}
			break
		}
	}

	if alt := normalizeWS(imageNode.Attr("alt")); alt != "" {
		figure.altText = &alt
	}
	return figure
}

func headingID(node *dom.Node) *string {
	if id := node.Attr("id"); id != "" {
		return &id
	}
	return nil
}

func isReferencesTitle(title string) bool {
	return strings.EqualFold(normalizeWS(title), "references")
}
