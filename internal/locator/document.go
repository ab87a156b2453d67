package locator

import (
	"fmt"
	"indicadores-backend/lib/htmlutil"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a Locator over a page parsed with goquery.
type Document struct {
	doc *goquery.Document
}

// Parse parses `markup` as html, malformed markup is repaired the way browsers do it.
func Parse(markup string) (Document, error) {
	return FromReader(strings.NewReader(markup))
}

// FromReader parses the html read from `r`.
func FromReader(r io.Reader) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Document{}, fmt.Errorf("parse document: %w", err)
	}
	return Document{doc: doc}, nil
}

type element struct {
	node *html.Node
}

func (e element) Tag() string {
	return e.node.Data
}

func (e element) Text() string {
	return htmlutil.Normalize(htmlutil.GetText(e.node))
}

func (e element) OwnText() string {
	return htmlutil.Normalize(htmlutil.GetOwnText(e.node))
}

func (e element) Attr(name string) (string, bool) {
	for _, attr := range e.node.Attr {
		if attr.Key == name {
			return attr.Val, true
		}
	}
	return "", false
}

func wrap(sel *goquery.Selection) []Node {
	out := make([]Node, 0, sel.Length())
	for _, n := range sel.Nodes {
		if n.Type != html.ElementNode {
			continue
		}
		out = append(out, element{node: n})
	}
	return out
}

func (d Document) selection(n Node) *goquery.Selection {
	e, ok := n.(element)
	if !ok || e.node == nil {
		return d.doc.FindNodes()
	}
	return d.doc.FindNodes(e.node)
}

func (d Document) Locate(tag string, pred Predicate) []Node {
	if pred == nil {
		pred = Any
	}
	sel := d.doc.Find(tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return pred(element{node: s.Get(0)})
	})
	return wrap(sel)
}

func (d Document) Relative(n Node, rel Relation) []Node {
	sel := d.selection(n)
	if sel.Length() == 0 {
		return nil
	}

	switch rel.kind {
	case relationEnclosing:
		sel = sel.ParentsFiltered(rel.tag).First()
	case relationFollowingSibling:
		sel = sel.NextAllFiltered(rel.tag)
		if rel.nth > 0 {
			sel = sel.Eq(rel.nth - 1)
		}
	case relationChildren:
		sel = sel.ChildrenFiltered(rel.tag)
	case relationDescendants:
		sel = sel.Find(rel.tag)
	default:
		return nil
	}
	return wrap(sel)
}

func (d Document) ByID(id string) (Node, bool) {
	sel := d.doc.Find(fmt.Sprintf(`[id="%s"]`, id)).First()
	if sel.Length() == 0 {
		return nil, false
	}
	return element{node: sel.Get(0)}, true
}
