package focus

import (
	"log/slog"
	"testing"

	"golang.org/x/net/html"

	"github.com/odvcencio/tether/pkg/dom"
)

// idList projects nodes onto their id attributes for assertions.
func idList(nodes []*html.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, dom.Attr(n, "id"))
	}
	return out
}

// inertIDs captures the set of elements currently carrying the inert
// attribute, as a sorted-free snapshot in document order.
func inertIDs(d *dom.Document) []string {
	var out []string
	dom.Walk(d.Root(), func(n *html.Node) bool {
		if n.Type == html.ElementNode && dom.HasAttr(n, "inert") {
			id := dom.Attr(n, "id")
			if id == "" {
				id = dom.Tag(n)
			}
			out = append(out, id)
		}
		return true
	})
	return out
}

func newTestRegistry(t *testing.T, markup string) (*dom.Document, *Registry) {
	t.Helper()
	d := dom.MustParse(markup)
	return d, NewRegistry(d, slog.Default())
}
