// Package component binds behavior to custom tags, custom-element
// style: a defined component receives synchronous connect and
// disconnect callbacks as its host element enters and leaves the
// document. The focus, toast, and form primitives consume these
// signals rather than inheriting platform lifecycle.
package component

import (
	"fmt"
	"log/slog"

	"golang.org/x/net/html"

	"github.com/odvcencio/tether/pkg/dom"
)

// Component receives lifecycle callbacks for its host element.
type Component interface {
	// Connected is called when the host element is attached to the
	// document, after template injection.
	Connected(doc *dom.Document, host *html.Node)

	// Disconnected is called when the host element leaves the
	// document.
	Disconnected(doc *dom.Document, host *html.Node)
}

// Templated components have their template markup appended under the
// host element before Connected runs.
type Templated interface {
	Template() string
}

// AttributeObserver components are notified when one of their
// observed attributes changes on the host element.
type AttributeObserver interface {
	ObservedAttributes() []string
	AttributeChanged(host *html.Node, name, old, new string)
}

// Registry upgrades elements with defined tags and routes lifecycle
// signals to their component instances.
type Registry struct {
	doc  *dom.Document
	log  *slog.Logger
	defs map[string]func() Component
	live map[*html.Node]Component

	connectH    dom.WatchHandle
	disconnectH dom.WatchHandle
	attrH       dom.WatchHandle
}

// NewRegistry creates a component registry watching the document for
// insertions and removals. A nil logger falls back to slog.Default.
func NewRegistry(doc *dom.Document, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		doc:  doc,
		log:  logger.With(slog.String("component", "registry")),
		defs: make(map[string]func() Component),
		live: make(map[*html.Node]Component),
	}
	r.connectH = doc.OnConnect(r.handleConnect)
	r.disconnectH = doc.OnDisconnect(r.handleDisconnect)
	r.attrH = doc.OnAttrChange(r.handleAttrChange)
	return r
}

// Close detaches the registry from the document. Live components do
// not receive further callbacks.
func (r *Registry) Close() {
	r.doc.Unwatch(r.connectH)
	r.doc.Unwatch(r.disconnectH)
	r.doc.Unwatch(r.attrH)
}

// Define registers a component factory for a tag. Defining the same
// tag twice is an error, matching platform custom-element rules.
func (r *Registry) Define(tag string, factory func() Component) error {
	if _, ok := r.defs[tag]; ok {
		return fmt.Errorf("component: tag %q already defined", tag)
	}
	r.defs[tag] = factory
	return nil
}

// Defined reports whether a tag has a registered component.
func (r *Registry) Defined(tag string) bool {
	_, ok := r.defs[tag]
	return ok
}

// Instance returns the live component for a host element, or nil.
func (r *Registry) Instance(host *html.Node) Component {
	return r.live[host]
}

// Upgrade scans the whole document for defined tags and connects any
// element not yet upgraded. Call once after parsing.
func (r *Registry) Upgrade() {
	r.upgradeSubtree(r.doc.Root())
}

func (r *Registry) handleConnect(inserted *html.Node) {
	r.upgradeSubtree(inserted)
}

func (r *Registry) upgradeSubtree(root *html.Node) {
	var hosts []*html.Node
	dom.Walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && r.Defined(dom.Tag(n)) {
			if _, ok := r.live[n]; !ok {
				hosts = append(hosts, n)
			}
		}
		return true
	})
	for _, host := range hosts {
		r.upgrade(host)
	}
}

func (r *Registry) upgrade(host *html.Node) {
	factory := r.defs[dom.Tag(host)]
	inst := factory()
	r.live[host] = inst

	if tpl, ok := inst.(Templated); ok {
		nodes, err := dom.ParseFragment(tpl.Template())
		if err != nil {
			r.log.Error("component template parse failed",
				slog.String("tag", dom.Tag(host)),
				slog.String("err", err.Error()))
		} else {
			for _, n := range nodes {
				host.AppendChild(n)
			}
		}
	}
	inst.Connected(r.doc, host)
}

func (r *Registry) handleDisconnect(removed *html.Node) {
	var hosts []*html.Node
	dom.Walk(removed, func(n *html.Node) bool {
		if _, ok := r.live[n]; ok {
			hosts = append(hosts, n)
		}
		return true
	})
	for _, host := range hosts {
		inst := r.live[host]
		delete(r.live, host)
		inst.Disconnected(r.doc, host)
	}
}

func (r *Registry) handleAttrChange(n *html.Node, name, old, new string) {
	inst, ok := r.live[n]
	if !ok {
		return
	}
	obs, ok := inst.(AttributeObserver)
	if !ok {
		return
	}
	for _, observed := range obs.ObservedAttributes() {
		if observed == name {
			obs.AttributeChanged(n, name, old, new)
			return
		}
	}
}
