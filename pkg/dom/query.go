package dom

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Query returns the first element in the document matching the CSS
// selector, or nil.
func (d *Document) Query(selector string) *html.Node {
	sel := goquery.NewDocumentFromNode(d.root).Find(selector)
	if sel.Length() == 0 {
		return nil
	}
	return sel.Get(0)
}

// QueryAll returns all elements in the document matching the CSS
// selector, in document order.
func (d *Document) QueryAll(selector string) []*html.Node {
	sel := goquery.NewDocumentFromNode(d.root).Find(selector)
	return append([]*html.Node(nil), sel.Nodes...)
}

// QueryWithin returns the first descendant of root matching the CSS
// selector, or nil.
func (d *Document) QueryWithin(root *html.Node, selector string) *html.Node {
	if root == nil {
		return nil
	}
	sel := goquery.NewDocumentFromNode(root).Find(selector)
	if sel.Length() == 0 {
		return nil
	}
	return sel.Get(0)
}

// Matches reports whether n itself matches the CSS selector.
func Matches(n *html.Node, selector string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	return goquery.NewDocumentFromNode(n).Is(selector)
}

// Closest returns the nearest ancestor of n (including n itself)
// matching the CSS selector, or nil.
func Closest(n *html.Node, selector string) *html.Node {
	if n == nil {
		return nil
	}
	sel := goquery.NewDocumentFromNode(n).Closest(selector)
	if sel.Length() == 0 {
		return nil
	}
	return sel.Get(0)
}
