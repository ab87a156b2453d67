// Package locator finds anchor nodes in a parsed provider page and navigates from them to the
// cells that hold values.
//
// Extractors are written against the Locator interface only, the goquery backed Document is
// the one implementation used outside of tests.
package locator

import (
	"indicadores-backend/lib/textutil"
	"strings"
)

// Node is an element of a parsed page.
type Node interface {
	// Tag is the lowercase element name.
	Tag() string
	// Text is the normalized text of the node and all of its descendants.
	Text() string
	// OwnText is the normalized text of the direct text children of the node only.
	OwnText() string
	Attr(name string) (string, bool)
}

// Predicate selects nodes.
type Predicate func(n Node) bool

// Any matches every node.
func Any(Node) bool {
	return true
}

// OwnTextContains matches nodes whose own text contains any of `needles`, comparison is case
// sensitive.
func OwnTextContains(needles ...string) Predicate {
	return func(n Node) bool {
		return textutil.ContainsAny(n.OwnText(), needles...)
	}
}

// OwnTextIs matches nodes whose own text equals `text` once normalized.
func OwnTextIs(text string) Predicate {
	return func(n Node) bool {
		return n.OwnText() == text
	}
}

// TextContains matches nodes whose full text contains `needle`.
func TextContains(needle string) Predicate {
	return func(n Node) bool {
		return strings.Contains(n.Text(), needle)
	}
}

// HasChild matches nodes with at least one direct child element named `tag` that matches
// `pred`. It is only usable with a Locator whose nodes can be walked, which is why it takes
// the Locator.
func HasChild(loc Locator, tag string, pred Predicate) Predicate {
	return func(n Node) bool {
		for _, child := range loc.Relative(n, Children(tag)) {
			if pred(child) {
				return true
			}
		}
		return false
	}
}

type relationKind int

const (
	relationEnclosing relationKind = iota
	relationFollowingSibling
	relationChildren
	relationDescendants
)

// Relation describes how to get from one node to others.
type Relation struct {
	kind relationKind
	tag  string
	// 1-based, 0 means every match
	nth int
}

// Enclosing is the nearest ancestor named `tag` (`ancestor::tag[1]`).
func Enclosing(tag string) Relation {
	return Relation{kind: relationEnclosing, tag: tag}
}

// EnclosingTable is the nearest ancestor table.
func EnclosingTable() Relation {
	return Enclosing("table")
}

// EnclosingRow is the row a cell belongs to.
func EnclosingRow() Relation {
	return Enclosing("tr")
}

// FollowingCell is the k-th (1-based) `td` sibling after the node (`following-sibling::td[k]`).
func FollowingCell(k int) Relation {
	return Relation{kind: relationFollowingSibling, tag: "td", nth: k}
}

// Children are the direct child elements matching the selector `tag`, in document order.
func Children(tag string) Relation {
	return Relation{kind: relationChildren, tag: tag}
}

// Cells are the `td` children of a row.
func Cells() Relation {
	return Children("td")
}

// Descendants are every element under the node matching the selector `tag`, in document order.
func Descendants(tag string) Relation {
	return Relation{kind: relationDescendants, tag: tag}
}

// Rows are the body rows of a table.
func Rows() Relation {
	return Descendants("tbody > tr")
}

// Locator finds nodes in a single parsed page. Results are always in document order and never
// contain the same node twice.
type Locator interface {
	// Locate returns every element named `tag` that matches `pred`.
	Locate(tag string, pred Predicate) []Node
	// Relative navigates from `node` following `rel`.
	Relative(node Node, rel Relation) []Node
	// ByID returns the element with the given id attribute.
	ByID(id string) (Node, bool)
}

// First returns the first node of `nodes`.
func First(nodes []Node) (Node, bool) {
	if len(nodes) == 0 {
		return nil, false
	}
	return nodes[0], true
}

// Nth returns the 0-based idx-th node of `nodes`.
func Nth(nodes []Node, idx int) (Node, bool) {
	if idx < 0 || idx >= len(nodes) {
		return nil, false
	}
	return nodes[idx], true
}
