// Package dom provides a headless, mutable HTML document model.
// It wraps golang.org/x/net/html nodes with the pieces of platform
// behavior the primitives need: focus state, document-level event
// dispatch, and synchronous connect/disconnect lifecycle signals.
package dom

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// WatchHandle identifies a registered lifecycle or attribute watcher.
type WatchHandle uint64

type nodeWatcher struct {
	handle WatchHandle
	fn     func(*html.Node)
}

type attrWatcher struct {
	handle WatchHandle
	fn     func(n *html.Node, name, old, new string)
}

// Document owns a parsed HTML tree plus the mutable platform state
// attached to it. All operations are synchronous; a Document is not
// safe for concurrent use.
type Document struct {
	root   *html.Node // the #document node
	active *html.Node // focused element, nil when focus is unset

	listeners  map[EventType][]*listener
	nextHandle uint64

	connectWatchers    []nodeWatcher
	disconnectWatchers []nodeWatcher
	attrWatchers       []attrWatcher
	nextWatch          WatchHandle
}

// Root returns the #document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Body returns the document's body element, or nil.
func (d *Document) Body() *html.Node {
	var body *html.Node
	Walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "body" {
			body = n
			return false
		}
		return true
	})
	return body
}

// ActiveElement returns the currently focused element, or nil.
func (d *Document) ActiveElement() *html.Node {
	return d.active
}

// Focus moves document focus to the given element and dispatches a
// focusin event. Focusing the already-active element is a no-op.
// Passing nil clears focus without dispatching.
func (d *Document) Focus(n *html.Node) {
	if n == d.active {
		return
	}
	if n == nil {
		d.active = nil
		return
	}
	d.active = n
	d.dispatch(&Event{Type: EventFocusIn, Target: n})
}

// Blur clears document focus.
func (d *Document) Blur() {
	d.active = nil
}

// Connected reports whether n is still attached to this document.
func (d *Document) Connected(n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur == d.root {
			return true
		}
	}
	return false
}

// AppendChild attaches child under parent. If the parent is connected,
// connect watchers fire for the inserted subtree root.
func (d *Document) AppendChild(parent, child *html.Node) {
	if parent == nil || child == nil {
		return
	}
	parent.AppendChild(child)
	if d.Connected(parent) {
		for _, w := range append([]nodeWatcher(nil), d.connectWatchers...) {
			w.fn(child)
		}
	}
}

// RemoveChild detaches n from its parent. Focus inside the removed
// subtree is cleared, then disconnect watchers fire synchronously with
// the removed subtree root.
func (d *Document) RemoveChild(n *html.Node) {
	if n == nil || n.Parent == nil {
		return
	}
	wasConnected := d.Connected(n)
	n.Parent.RemoveChild(n)
	if !wasConnected {
		return
	}
	if d.active != nil && (d.active == n || contains(n, d.active)) {
		d.active = nil
	}
	for _, w := range append([]nodeWatcher(nil), d.disconnectWatchers...) {
		w.fn(n)
	}
}

// OnConnect registers a watcher invoked with each subtree root
// inserted into the document.
func (d *Document) OnConnect(fn func(*html.Node)) WatchHandle {
	d.nextWatch++
	d.connectWatchers = append(d.connectWatchers, nodeWatcher{handle: d.nextWatch, fn: fn})
	return d.nextWatch
}

// OnDisconnect registers a watcher invoked with each subtree root
// removed from the document.
func (d *Document) OnDisconnect(fn func(*html.Node)) WatchHandle {
	d.nextWatch++
	d.disconnectWatchers = append(d.disconnectWatchers, nodeWatcher{handle: d.nextWatch, fn: fn})
	return d.nextWatch
}

// OnAttrChange registers a watcher for attribute mutations made
// through SetAttr and RemoveAttr.
func (d *Document) OnAttrChange(fn func(n *html.Node, name, old, new string)) WatchHandle {
	d.nextWatch++
	d.attrWatchers = append(d.attrWatchers, attrWatcher{handle: d.nextWatch, fn: fn})
	return d.nextWatch
}

// Unwatch removes a previously registered watcher. Unknown handles are
// ignored.
func (d *Document) Unwatch(h WatchHandle) {
	d.connectWatchers = removeWatcher(d.connectWatchers, h)
	d.disconnectWatchers = removeWatcher(d.disconnectWatchers, h)
	for i, w := range d.attrWatchers {
		if w.handle == h {
			d.attrWatchers = append(d.attrWatchers[:i], d.attrWatchers[i+1:]...)
			break
		}
	}
}

func removeWatcher(ws []nodeWatcher, h WatchHandle) []nodeWatcher {
	for i, w := range ws {
		if w.handle == h {
			return append(ws[:i], ws[i+1:]...)
		}
	}
	return ws
}

// SetAttr sets an attribute on n and notifies attribute watchers.
func (d *Document) SetAttr(n *html.Node, name, value string) {
	old, had := lookupAttr(n, name)
	setAttr(n, name, value)
	if had && old == value {
		return
	}
	for _, w := range append([]attrWatcher(nil), d.attrWatchers...) {
		w.fn(n, name, old, value)
	}
}

// RemoveAttr removes an attribute from n and notifies attribute
// watchers if it was present.
func (d *Document) RemoveAttr(n *html.Node, name string) {
	old, had := lookupAttr(n, name)
	if !had {
		return
	}
	removeAttr(n, name)
	for _, w := range append([]attrWatcher(nil), d.attrWatchers...) {
		w.fn(n, name, old, "")
	}
}

// Attr returns the value of the named attribute, or "".
func Attr(n *html.Node, name string) string {
	v, _ := lookupAttr(n, name)
	return v
}

// HasAttr reports whether n carries the named attribute.
func HasAttr(n *html.Node, name string) bool {
	_, ok := lookupAttr(n, name)
	return ok
}

func lookupAttr(n *html.Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func removeAttr(n *html.Node, name string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// TabIndexOf returns the effective tab index of n. Elements without a
// tabindex attribute report 0 when natively focusable and -1
// otherwise, matching platform behavior for sequential navigation.
func TabIndexOf(n *html.Node) int {
	if raw, ok := lookupAttr(n, "tabindex"); ok {
		if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			return v
		}
	}
	if NativelyFocusable(n) {
		return 0
	}
	return -1
}

// NativelyFocusable reports whether the element is focusable without
// an explicit tabindex: links with href, form controls, and media
// elements with controls.
func NativelyFocusable(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "input", "select", "textarea", "button", "summary", "details":
		return true
	case "a", "area":
		return HasAttr(n, "href")
	case "audio", "video":
		return HasAttr(n, "controls")
	}
	if v, ok := lookupAttr(n, "contenteditable"); ok && v != "false" {
		return true
	}
	return false
}

// Tag returns the lowercase tag name for element nodes, or "".
func Tag(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	return n.Data
}

// Contains reports whether n is a descendant of ancestor. An element
// does not contain itself.
func Contains(ancestor, n *html.Node) bool {
	return contains(ancestor, n)
}

func contains(ancestor, n *html.Node) bool {
	if ancestor == nil || n == nil {
		return false
	}
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// ShadowRoot returns the open shadow root of n, represented the
// declarative way as a child <template shadowrootmode="open">, or nil.
func ShadowRoot(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "template" && Attr(c, "shadowrootmode") == "open" {
			return c
		}
	}
	return nil
}

// Walk traverses the subtree rooted at n depth-first, descending
// through open shadow roots. Subtrees of inert templates (those
// without shadowrootmode="open") are skipped. Returning false from fn
// stops the walk.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	walk(n, fn)
}

func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	if n.Type == html.ElementNode && n.Data == "template" && Attr(n, "shadowrootmode") != "open" {
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}
