// Package dom builds a lightweight, fault-tolerant DOM tree from raw
// HTML. It keeps an explicit open-element stack so that unclosed and
// mismatched tags degrade gracefully instead of failing the parse.
package dom

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// RootTag is the sentinel tag of the synthetic document root node.
const RootTag = "document"

// voidTags never receive children and are not pushed onto the open
// element stack.
var voidTags = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// Node is one element or text fragment in the tree. Text nodes have an
// empty Tag and carry their content in Text. Each node owns its
// children; the tree is built once per Parse call and immutable after.
type Node struct {
	Tag      string
	Attrs    map[string]string
	Text     string
	Children []*Node
}

// IsText reports whether the node is a text fragment.
func (n *Node) IsText() bool { return n.Tag == "" }

// Attr returns the value of a (lowercased) attribute, or "".
func (n *Node) Attr(name string) string {
	if n.Attrs == nil {
		return ""
	}
	return n.Attrs[name]
}

// Descendants returns the node and every element node below it in
// document order. Text fragments are not included.
func (n *Node) Descendants() []*Node {
	var out []*Node
	var visit func(*Node)
	visit = func(current *Node) {
		out = append(out, current)
		for _, child := range current.Children {
			if !child.IsText() {
				visit(child)
			}
		}
	}
	visit(n)
	return out
}

// Parse tokenizes raw HTML into a Node tree rooted at a synthetic
// "document" node. Start tags push onto an open-element stack unless
// the tag is void; end tags pop down to the nearest matching open tag
// and are ignored when no match exists; self-closing syntax appends a
// childless node without pushing.
func Parse(input string) (*Node, error) {
	root := &Node{Tag: RootTag, Attrs: map[string]string{}}
	stack := []*Node{root}

	z := html.NewTokenizer(strings.NewReader(input))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, err
			}
			return root, nil

		case html.StartTagToken:
			node := elementNode(z)
			top := stack[len(stack)-1]
			top.Children = append(top.Children, node)
			if !voidTags[node.Tag] {
				stack = append(stack, node)
			}

		case html.SelfClosingTagToken:
			node := elementNode(z)
			top := stack[len(stack)-1]
			top.Children = append(top.Children, node)

		case html.EndTagToken:
			name, _ := z.TagName()
			target := strings.ToLower(string(name))
			// Pop down to (and including) the nearest matching open
			// tag; never pop the root.
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].Tag == target {
					stack = stack[:i]
					break
				}
			}

		case html.TextToken:
			text := string(z.Text())
			if text != "" {
				top := stack[len(stack)-1]
				top.Children = append(top.Children, &Node{Text: text})
			}

		case html.CommentToken, html.DoctypeToken:
			// Not part of the content model.
		}
	}
}

func elementNode(z *html.Tokenizer) *Node {
	name, hasAttr := z.TagName()
	node := &Node{
		Tag:   strings.ToLower(string(name)),
		Attrs: map[string]string{},
	}
	for hasAttr {
		var key, value []byte
		key, value, hasAttr = z.TagAttr()
		node.Attrs[strings.ToLower(string(key))] = string(value)
	}
	return node
}
