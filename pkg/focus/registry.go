package focus

import (
	"log/slog"
	"sync"

	"golang.org/x/net/html"

	"github.com/odvcencio/tether/pkg/dom"
	"github.com/odvcencio/tether/pkg/telemetry"
)

// Registry is the per-document stack of active traps. It owns the
// single set of document-level listeners: they bind lazily on the
// first push and unbind the instant the stack empties, so a document
// carries zero trap listeners while no trap is active.
//
// Events route to the topmost trap. Removal is by identity, not LIFO;
// a trap deeper in the stack may deactivate first when its host
// unmounts out of order.
type Registry struct {
	doc     *dom.Document
	log     *slog.Logger
	inerter *Inerter

	stack []stackEntry

	handles     []dom.ListenerHandle
	disconnects dom.WatchHandle
}

type stackEntry struct {
	trap *Trap
	undo func()
}

// NewRegistry creates a registry for the document. A nil logger
// falls back to slog.Default.
func NewRegistry(doc *dom.Document, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		doc:     doc,
		log:     logger.With(slog.String("component", "focus")),
		inerter: NewInerter(),
	}
}

var (
	registriesMu sync.Mutex
	registries   = map[*dom.Document]*Registry{}
)

// For returns the shared registry for a document, creating one with
// the default logger on first use. The document is retained until
// Release is called; hosts that churn through documents should pair
// the two. Hosts that want an injected logger construct with
// NewRegistry instead.
func For(doc *dom.Document) *Registry {
	registriesMu.Lock()
	defer registriesMu.Unlock()
	r, ok := registries[doc]
	if !ok {
		r = NewRegistry(doc, nil)
		registries[doc] = r
	}
	return r
}

// Release drops the shared registry for a document so both can be
// collected. A later For call starts fresh.
func Release(doc *dom.Document) {
	registriesMu.Lock()
	delete(registries, doc)
	registriesMu.Unlock()
}

// Document returns the document this registry serves.
func (r *Registry) Document() *dom.Document { return r.doc }

// Bound reports whether the global listeners are currently attached.
func (r *Registry) Bound() bool { return len(r.handles) > 0 }

// Depth returns the number of active traps on the stack.
func (r *Registry) Depth() int { return len(r.stack) }

// Top returns the topmost active trap, or nil.
func (r *Registry) Top() *Trap {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1].trap
}

// Inerter returns the registry's inertness bookkeeping. Exposed for
// invariant checks.
func (r *Registry) Inerter() *Inerter { return r.inerter }

// push adds the trap to the stack, binding listeners on first push
// and applying inert marks for the trap's scope. It refuses a trap
// whose root already has an active trap.
func (r *Registry) push(t *Trap) bool {
	for _, e := range r.stack {
		if e.trap == t {
			return false
		}
		if e.trap.opts.Root == t.opts.Root {
			r.log.Warn("trap push refused",
				slog.String("err", ErrDuplicateRoot.Error()),
				slog.String("trap_id", t.id))
			return false
		}
	}
	if len(r.stack) == 0 {
		r.bind()
	}
	undo := r.inerter.Apply(r.doc, t.opts.Root)
	r.stack = append(r.stack, stackEntry{trap: t, undo: undo})
	return true
}

// remove takes the trap off the stack by identity and undoes its
// inert marks. Removing an unregistered trap is logged and ignored so
// teardown is safe against double cleanup.
func (r *Registry) remove(t *Trap) {
	idx := -1
	for i, e := range r.stack {
		if e.trap == t {
			idx = i
			break
		}
	}
	if idx == -1 {
		r.log.Warn("trap removal ignored",
			slog.String("err", ErrOrphanedScope.Error()),
			slog.String("trap_id", t.id))
		return
	}
	r.stack[idx].undo()
	r.stack = append(r.stack[:idx], r.stack[idx+1:]...)
	if len(r.stack) == 0 {
		r.unbind()
	}
}

func (r *Registry) bind() {
	r.handles = []dom.ListenerHandle{
		r.doc.AddListener(dom.EventKeyDown, r.guarded(r.onKeyDown)),
		r.doc.AddListener(dom.EventPointerDown, r.guarded(r.onPointer)),
		r.doc.AddListener(dom.EventClick, r.guarded(r.onPointer)),
		r.doc.AddListener(dom.EventFocusIn, r.guarded(r.onFocusIn)),
	}
	r.disconnects = r.doc.OnDisconnect(r.onDisconnect)
}

func (r *Registry) unbind() {
	for _, h := range r.handles {
		r.doc.RemoveListener(h)
	}
	r.handles = nil
	r.doc.Unwatch(r.disconnects)
	r.disconnects = 0
}

// guarded absorbs panics from handlers: a malfunctioning trap must
// never freeze the host's event dispatch.
func (r *Registry) guarded(fn func(*dom.Event)) func(*dom.Event) {
	return func(ev *dom.Event) {
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error("trap handler panic", slog.Any("panic", rec))
			}
		}()
		fn(ev)
	}
}

func (r *Registry) onKeyDown(ev *dom.Event) {
	top := r.Top()
	if top == nil {
		return
	}
	switch ev.Key {
	case dom.KeyTab:
		r.handleTab(top, ev)
	case dom.KeyEscape:
		switch top.opts.Escape {
		case EscapeNotify:
			if top.opts.Hooks.Escape != nil {
				top.opts.Hooks.Escape(top)
			}
		case EscapeDeactivate:
			ev.PreventDefault()
			top.deactivate(telemetry.ReasonEscape)
		}
	}
}

// handleTab enforces containment for sequential navigation. At the
// boundary of the trap's tab order, focus wraps; mid-sequence the
// event falls through to the document default action, which the inert
// marks keep inside the scope. With an empty order the event falls
// through entirely.
func (r *Registry) handleTab(top *Trap, ev *dom.Event) {
	order := TabCandidates(top.opts.Root)
	if len(order) == 0 {
		return
	}

	cur := r.doc.ActiveElement()
	idx := -1
	for i, n := range order {
		if n == cur {
			idx = i
			break
		}
	}

	var next *html.Node
	wrapped := false
	if ev.Shift {
		if idx == 0 || idx == -1 {
			next = order[len(order)-1]
			wrapped = idx == 0
		}
	} else {
		if idx == len(order)-1 || idx == -1 {
			next = order[0]
			wrapped = idx == len(order)-1
		}
	}
	if next == nil {
		// Mid-sequence; the default action moves focus.
		return
	}

	ev.PreventDefault()
	r.doc.Focus(next)
	top.noteFocus(next)
	if wrapped {
		telemetry.FocusWraps.Inc()
	}
}

// onPointer routes pointerdown and click events that land outside the
// topmost trap's root according to the trap's configured policy.
func (r *Registry) onPointer(ev *dom.Event) {
	top := r.Top()
	if top == nil || ev.Target == nil {
		return
	}
	if !IsOutside(ev.Target, top.opts.Root) {
		return
	}
	switch top.opts.OutsidePointer {
	case OutsideBlock:
		ev.PreventDefault()
		ev.StopImmediatePropagation()
	case OutsideNotify:
		if top.opts.Hooks.OutsidePointer != nil {
			top.opts.Hooks.OutsidePointer(top, ev)
		}
	}
}

// onFocusIn pulls focus back inside when it escapes the topmost trap,
// restoring the last known inside position.
func (r *Registry) onFocusIn(ev *dom.Event) {
	top := r.Top()
	if top == nil || ev.Target == nil {
		return
	}
	if !IsOutside(ev.Target, top.opts.Root) {
		top.noteFocus(ev.Target)
		return
	}
	ev.StopImmediatePropagation()
	target := top.lastFocus
	if target == nil || !r.doc.Connected(target) {
		target = FirstFocusCandidate(top.opts.Root)
	}
	if target != nil {
		r.doc.Focus(target)
		top.noteFocus(target)
		telemetry.FocusRedirects.Inc()
	}
}

// onDisconnect deactivates any stacked trap whose root just left the
// document. Observed synchronously from the removal, never polled.
func (r *Registry) onDisconnect(removed *html.Node) {
	// Collect first: deactivation mutates the stack.
	var orphaned []*Trap
	for _, e := range r.stack {
		root := e.trap.opts.Root
		if root == removed || dom.Contains(removed, root) {
			orphaned = append(orphaned, e.trap)
		}
	}
	for _, t := range orphaned {
		t.deactivate(telemetry.ReasonDisconnected)
	}
}
