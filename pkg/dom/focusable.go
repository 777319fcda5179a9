package dom

import (
	"sort"

	"golang.org/x/net/html"
)

// Focusable reports whether the element can receive focus: a focus
// candidate kind that is not disabled, hidden, inert, or under an
// inert ancestor.
func Focusable(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode || !focusCandidate(n) {
		return false
	}
	if elementDisabled(n) || HasAttr(n, "hidden") || HasAttr(n, "inert") {
		return false
	}
	return !underInert(n)
}

// Tabbable reports whether the element participates in sequential
// navigation: focusable with a non-negative tab index.
func Tabbable(n *html.Node) bool {
	return TabIndexOf(n) >= 0 && Focusable(n)
}

// TabOrder returns the tabbable elements under root in sequential
// navigation order: positive explicit tabindex values ascending first,
// then the rest in document order.
func TabOrder(root *html.Node) []*html.Node {
	if root == nil {
		return nil
	}
	var out []*html.Node
	Walk(root, func(n *html.Node) bool {
		if Tabbable(n) {
			out = append(out, n)
		}
		return true
	})
	sort.SliceStable(out, func(i, j int) bool {
		return tabRank(out[i]) < tabRank(out[j])
	})
	return out
}

// focusCandidate reports whether the element kind can hold focus at
// all: form controls, links with href, media with controls, editable
// content, details/summary, or anything with an explicit tabindex.
func focusCandidate(n *html.Node) bool {
	switch Tag(n) {
	case "input":
		return Attr(n, "type") != "hidden"
	case "slot", "template":
		return false
	}
	return NativelyFocusable(n) || HasAttr(n, "tabindex")
}

func elementDisabled(n *html.Node) bool {
	if !HasAttr(n, "disabled") {
		return false
	}
	// Presence counts; only an explicit "false" opts out.
	return Attr(n, "disabled") != "false"
}

func underInert(n *html.Node) bool {
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if cur.Type == html.ElementNode && HasAttr(cur, "inert") {
			return true
		}
	}
	return false
}

// tabRank orders positive tabindex values before default-order
// elements, which all share the same rank.
func tabRank(n *html.Node) int {
	if ti := TabIndexOf(n); ti > 0 {
		return ti
	}
	return int(^uint(0) >> 1)
}
