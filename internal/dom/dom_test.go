package dom

import (
	"testing"
)

func findFirst(n *Node, tag string) *Node {
	for _, node := range n.Descendants() {
		if node.Tag == tag {
			return node
		}
	}
	return nil
}

func TestParseSimpleTree(t *testing.T) {
	root, err := Parse(`<div id="a"><p>hello <b>world</b></p></div>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if root.Tag != RootTag {
		t.Errorf("root tag = %q, want %q", root.Tag, RootTag)
	}

	div := findFirst(root, "div")
	if div == nil {
		t.Fatal("div not found")
	}
	if got := div.Attr("id"); got != "a" {
		t.Errorf("div id = %q, want %q", got, "a")
	}

	p := findFirst(div, "p")
	if p == nil {
		t.Fatal("p not found")
	}
	if len(p.Children) != 2 {
		t.Fatalf("p has %d children, want 2", len(p.Children))
	}
	if !p.Children[0].IsText() || p.Children[0].Text != "hello " {
		t.Errorf("first child = %+v, want text %q", p.Children[0], "hello ")
	}
	if p.Children[1].Tag != "b" {
		t.Errorf("second child tag = %q, want b", p.Children[1].Tag)
	}
}

func TestParseVoidTagsTakeNoChildren(t *testing.T) {
	root, err := Parse(`<p>before<br>after<img src="x.png">tail</p>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	p := findFirst(root, "p")
	if p == nil {
		t.Fatal("p not found")
	}
	if len(p.Children) != 5 {
		t.Fatalf("p has %d children, want 5", len(p.Children))
	}

	br := p.Children[1]
	if br.Tag != "br" || len(br.Children) != 0 {
		t.Errorf("br = %+v, want empty void element", br)
	}
	img := p.Children[3]
	if img.Tag != "img" || len(img.Children) != 0 {
		t.Errorf("img = %+v, want empty void element", img)
	}
	if img.Attr("src") != "x.png" {
		t.Errorf("img src = %q, want x.png", img.Attr("src"))
	}
}

func TestParseUnclosedTagsRecover(t *testing.T) {
	root, err := Parse(`<div><p>one<p>two</div><span>after</span>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	// The html tokenizer leaves both p elements open; closing the div
	// pops them so span attaches to the root.
	span := findFirst(root, "span")
	if span == nil {
		t.Fatal("span not found")
	}
	for _, child := range root.Children {
		if child.Tag == "span" {
			return
		}
	}
	t.Error("span is not a direct child of the root")
}

func TestParseStrayEndTagIgnored(t *testing.T) {
	root, err := Parse(`<div>text</span>more</div>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	div := findFirst(root, "div")
	if div == nil {
		t.Fatal("div not found")
	}
	var text string
	for _, child := range div.Children {
		if child.IsText() {
			text += child.Text
		}
	}
	if text != "textmore" {
		t.Errorf("div text = %q, want %q", text, "textmore")
	}
}

func TestParseSkipsCommentsAndDoctype(t *testing.T) {
	root, err := Parse(`<!DOCTYPE html><!-- hidden --><p>visible</p>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(root.Children) != 1 || root.Children[0].Tag != "p" {
		t.Fatalf("root children = %+v, want single p element", root.Children)
	}
}

func TestAttrsLowercased(t *testing.T) {
	root, err := Parse(`<DIV CLASS="Box" Data-X="1"></DIV>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	div := findFirst(root, "div")
	if div == nil {
		t.Fatal("div not found (tag names should be lowercased)")
	}
	if div.Attr("class") != "Box" {
		t.Errorf("class = %q, want Box (values keep their case)", div.Attr("class"))
	}
	if div.Attr("data-x") != "1" {
		t.Errorf("data-x = %q, want 1", div.Attr("data-x"))
	}
}

func TestDescendantsDocumentOrder(t *testing.T) {
	root, err := Parse(`<div><p><em>x</em></p><ul><li>a</li></ul></div>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	var tags []string
	for _, n := range root.Descendants() {
		tags = append(tags, n.Tag)
	}
	want := []string{RootTag, "div", "p", "em", "ul", "li"}
	if len(tags) != len(want) {
		t.Fatalf("tags = %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Fatalf("tags = %v, want %v", tags, want)
		}
	}
}
