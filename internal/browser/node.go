package browser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type Attribute struct {
	Name  string
	Value string
}

// Node is a detached copy of one DOM element taken from a page snapshot.
// Attributes keep document order.
type Node struct {
	Attrs []Attribute
	text  string
}

func NewNode(text string, attrs ...Attribute) Node {
	return Node{Attrs: attrs, text: text}
}

func (n Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}

	return "", false
}

// AttrAt returns the value of the i-th attribute in document order.
func (n Node) AttrAt(i int) (string, error) {
	if i < 0 || i >= len(n.Attrs) {
		return "", fmt.Errorf("%w: %d of %d", ErrAttrIndex, i, len(n.Attrs))
	}

	return n.Attrs[i].Value, nil
}

func (n Node) Text() string {
	return n.text
}

// ParseDocument parses an HTML snapshot for querying.
func ParseDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}

	return doc, nil
}

// QueryAll returns every element of doc matching selector, in DOM order.
func QueryAll(doc *goquery.Document, selector string) []Node {
	var out []Node
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		out = append(out, nodeFrom(sel))
	})

	return out
}

// QueryOne returns the first element matching selector.
func QueryOne(doc *goquery.Document, selector string) (Node, error) {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return Node{}, fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}

	return nodeFrom(sel), nil
}

func nodeFrom(sel *goquery.Selection) Node {
	n := Node{text: sel.Text()}
	if len(sel.Nodes) == 0 {
		return n
	}

	for _, a := range sel.Nodes[0].Attr {
		n.Attrs = append(n.Attrs, Attribute{Name: a.Key, Value: a.Val})
	}

	return n
}
