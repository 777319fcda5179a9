package focus

import (
	"golang.org/x/net/html"

	"github.com/odvcencio/tether/pkg/dom"
)

// Inerter marks regions of a document inert on behalf of active
// traps. Marks are reference counted per element so that nested traps
// can overlap: an element stays inert until every application that
// covered it has been undone.
type Inerter struct {
	counts map[*html.Node]int
	// authored tracks elements that carried an inert attribute before
	// any trap marked them. Undo never removes those.
	authored map[*html.Node]bool
}

// NewInerter creates an empty inerter.
func NewInerter() *Inerter {
	return &Inerter{
		counts:   make(map[*html.Node]int),
		authored: make(map[*html.Node]bool),
	}
}

// Apply marks every sibling subtree along scopeRoot's ancestor chain
// inert, leaving only scopeRoot and its ancestors interactive. The
// returned undo restores exactly the state that existed before the
// call; marks held by other applications survive.
func (in *Inerter) Apply(d *dom.Document, scopeRoot *html.Node) func() {
	var marked []*html.Node
	for cur := scopeRoot; cur != nil && cur.Parent != nil; cur = cur.Parent {
		for sib := cur.Parent.FirstChild; sib != nil; sib = sib.NextSibling {
			if sib == cur || sib.Type != html.ElementNode {
				continue
			}
			in.counts[sib]++
			if in.counts[sib] == 1 {
				if dom.HasAttr(sib, "inert") {
					in.authored[sib] = true
				} else {
					d.SetAttr(sib, "inert", "")
				}
			}
			marked = append(marked, sib)
		}
	}

	undone := false
	return func() {
		if undone {
			return
		}
		undone = true
		for _, n := range marked {
			in.counts[n]--
			if in.counts[n] <= 0 {
				delete(in.counts, n)
				if in.authored[n] {
					delete(in.authored, n)
				} else {
					d.RemoveAttr(n, "inert")
				}
			}
		}
	}
}

// IsOutside reports whether n falls outside the trap scope rooted at
// scopeRoot. This is a nearest-ancestor check, cheap enough to run on
// every keydown and pointerdown.
func IsOutside(n, scopeRoot *html.Node) bool {
	if n == nil || scopeRoot == nil {
		return true
	}
	return n != scopeRoot && !dom.Contains(scopeRoot, n)
}

// MarkCount reports how many elements currently hold inert marks.
// Exposed for invariant checks.
func (in *Inerter) MarkCount() int {
	return len(in.counts)
}
