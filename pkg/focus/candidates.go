// Package focus implements focus traps over a headless document:
// candidate resolution, inertness bookkeeping, trap scopes, and the
// per-document registry that owns the global listeners.
package focus

import (
	"golang.org/x/net/html"

	"github.com/odvcencio/tether/pkg/dom"
)

// Candidates returns the elements under root that pass the filter, in
// document order. Traversal descends through open shadow roots and
// skips inert template content.
func Candidates(root *html.Node, filter func(*html.Node) bool) []*html.Node {
	if root == nil {
		return nil
	}
	var out []*html.Node
	dom.Walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && filter(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// FocusCandidates returns the focusable elements under root in
// document order.
func FocusCandidates(root *html.Node) []*html.Node {
	return Candidates(root, dom.Focusable)
}

// TabCandidates returns the elements under root reachable by
// sequential (Tab) navigation. Elements with a positive explicit
// tabindex come first, ordered by that index ascending; the rest
// follow in document order.
func TabCandidates(root *html.Node) []*html.Node {
	return dom.TabOrder(root)
}

// FirstFocusCandidate returns the first focusable element under root,
// or nil.
func FirstFocusCandidate(root *html.Node) *html.Node {
	if root == nil {
		return nil
	}
	var found *html.Node
	dom.Walk(root, func(n *html.Node) bool {
		if dom.Focusable(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// IsFocusable reports whether the element can receive focus: not
// disabled, not hidden, not inert, and not under an inert ancestor.
func IsFocusable(n *html.Node) bool {
	return dom.Focusable(n)
}

// IsTabbable reports whether the element participates in sequential
// navigation: focusable with a non-negative tab index.
func IsTabbable(n *html.Node) bool {
	return dom.Tabbable(n)
}
