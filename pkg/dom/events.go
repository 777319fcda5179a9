package dom

import "golang.org/x/net/html"

// EventType names a document-level event channel.
type EventType string

const (
	EventKeyDown     EventType = "keydown"
	EventPointerDown EventType = "pointerdown"
	EventClick       EventType = "click"
	EventFocusIn     EventType = "focusin"
)

// Key names used by the primitives.
const (
	KeyTab    = "Tab"
	KeyEscape = "Escape"
	KeyEnter  = "Enter"
)

// Event is a dispatched document event. Handlers may prevent the
// default action and stop later handlers from running.
type Event struct {
	Type   EventType
	Target *html.Node

	// Keyboard fields, set for keydown events.
	Key   string
	Shift bool
	Ctrl  bool
	Alt   bool

	defaultPrevented   bool
	propagationStopped bool
}

// PreventDefault suppresses the event's default action.
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether a handler called PreventDefault.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// StopImmediatePropagation stops remaining handlers from running.
func (e *Event) StopImmediatePropagation() {
	e.propagationStopped = true
}

// ListenerHandle identifies a registered event listener.
type ListenerHandle uint64

type listener struct {
	handle ListenerHandle
	fn     func(*Event)
}

// AddListener registers a document-level handler for the event type.
// Handlers run in registration order.
func (d *Document) AddListener(t EventType, fn func(*Event)) ListenerHandle {
	if d.listeners == nil {
		d.listeners = make(map[EventType][]*listener)
	}
	d.nextHandle++
	h := ListenerHandle(d.nextHandle)
	d.listeners[t] = append(d.listeners[t], &listener{handle: h, fn: fn})
	return h
}

// RemoveListener unregisters a handler. Unknown handles are ignored.
func (d *Document) RemoveListener(h ListenerHandle) {
	for t, ls := range d.listeners {
		for i, l := range ls {
			if l.handle == h {
				d.listeners[t] = append(ls[:i], ls[i+1:]...)
				return
			}
		}
	}
}

// ListenerCount returns the number of handlers bound for the type.
func (d *Document) ListenerCount(t EventType) int {
	return len(d.listeners[t])
}

// TotalListeners returns the number of handlers bound across all
// event types.
func (d *Document) TotalListeners() int {
	total := 0
	for _, ls := range d.listeners {
		total += len(ls)
	}
	return total
}

// KeyPress describes a synthesized keyboard event.
type KeyPress struct {
	Key   string
	Shift bool
	Ctrl  bool
	Alt   bool
}

// DispatchKey synthesizes a keydown targeting the active element (or
// the body when nothing is focused) and returns the dispatched event.
// Unless a handler prevents it, the default action runs afterwards:
// Tab moves focus to the adjacent element in document tab order,
// wrapping at the ends.
func (d *Document) DispatchKey(p KeyPress) *Event {
	target := d.active
	if target == nil {
		target = d.Body()
	}
	ev := &Event{
		Type:   EventKeyDown,
		Target: target,
		Key:    p.Key,
		Shift:  p.Shift,
		Ctrl:   p.Ctrl,
		Alt:    p.Alt,
	}
	d.dispatch(ev)
	if !ev.defaultPrevented && p.Key == KeyTab {
		d.defaultTab(p.Shift)
	}
	return ev
}

// DispatchPointerDown synthesizes a pointerdown on the target. Unless
// a handler prevents it, the default action focuses the nearest
// focusable element at or above the target, or clears focus.
func (d *Document) DispatchPointerDown(target *html.Node) *Event {
	ev := &Event{Type: EventPointerDown, Target: target}
	d.dispatch(ev)
	if !ev.defaultPrevented {
		d.defaultPointerFocus(target)
	}
	return ev
}

// DispatchClick synthesizes a click on the target.
func (d *Document) DispatchClick(target *html.Node) *Event {
	ev := &Event{Type: EventClick, Target: target}
	d.dispatch(ev)
	return ev
}

// defaultTab moves focus to the adjacent tabbable element across the
// whole document, wrapping at the ends. Inert regions fall out of the
// order, so marking everything outside a region inert confines the
// default to that region.
func (d *Document) defaultTab(shift bool) {
	root := d.Body()
	if root == nil {
		root = d.root
	}
	order := TabOrder(root)
	if len(order) == 0 {
		return
	}
	idx := -1
	for i, n := range order {
		if n == d.active {
			idx = i
			break
		}
	}
	var next *html.Node
	if shift {
		if idx <= 0 {
			next = order[len(order)-1]
		} else {
			next = order[idx-1]
		}
	} else {
		if idx == -1 || idx == len(order)-1 {
			next = order[0]
		} else {
			next = order[idx+1]
		}
	}
	d.Focus(next)
}

// defaultPointerFocus focuses the nearest focusable element at or
// above the pointer target. Inert regions never receive pointer
// interaction; with no focusable ancestor the press clears focus, as
// on the platform.
func (d *Document) defaultPointerFocus(target *html.Node) {
	for cur := target; cur != nil; cur = cur.Parent {
		if cur.Type == html.ElementNode && HasAttr(cur, "inert") {
			return
		}
	}
	for cur := target; cur != nil; cur = cur.Parent {
		if Focusable(cur) {
			d.Focus(cur)
			return
		}
	}
	d.Blur()
}

func (d *Document) dispatch(e *Event) {
	ls := d.listeners[e.Type]
	if len(ls) == 0 {
		return
	}
	// Snapshot so handlers can unbind listeners mid-dispatch.
	snapshot := append([]*listener(nil), ls...)
	for _, l := range snapshot {
		if e.propagationStopped {
			return
		}
		l.fn(e)
	}
}
