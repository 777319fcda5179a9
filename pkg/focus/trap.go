package focus

import (
	"log/slog"

	"github.com/oklog/ulid/v2"
	"golang.org/x/net/html"

	"github.com/odvcencio/tether/pkg/dom"
	"github.com/odvcencio/tether/pkg/telemetry"
)

// State is a trap's position in its lifecycle.
type State int

const (
	StateInactive State = iota
	StateActivating
	StateActive
	StateDeactivating
)

func (s State) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateActivating:
		return "activating"
	case StateActive:
		return "active"
	case StateDeactivating:
		return "deactivating"
	}
	return "unknown"
}

// OutsideAction decides what happens when a pointer event lands
// outside the topmost trap's root.
type OutsideAction int

const (
	// OutsideIgnore lets the event through untouched.
	OutsideIgnore OutsideAction = iota
	// OutsideBlock prevents the default action and stops propagation.
	OutsideBlock
	// OutsideNotify invokes the OnOutsidePointer hook and lets the
	// host decide.
	OutsideNotify
)

// EscapeAction decides what happens when Escape is pressed while the
// trap is topmost.
type EscapeAction int

const (
	// EscapeIgnore does nothing.
	EscapeIgnore EscapeAction = iota
	// EscapeNotify invokes the OnEscape hook.
	EscapeNotify
	// EscapeDeactivate deactivates the trap.
	EscapeDeactivate
)

// InitialFocus selects the element focused when a trap activates.
// The zero value focuses the first focusable element in the scope.
type InitialFocus struct {
	kind     initialFocusKind
	selector string
	element  *html.Node
	fn       func() *html.Node
}

type initialFocusKind int

const (
	initialFirst initialFocusKind = iota
	initialNone
	initialRoot
	initialSelector
	initialElement
	initialFunc
)

// InitialFocusFirst focuses the first focusable element in the scope.
func InitialFocusFirst() InitialFocus { return InitialFocus{kind: initialFirst} }

// InitialFocusNone skips the initial focus move.
func InitialFocusNone() InitialFocus { return InitialFocus{kind: initialNone} }

// InitialFocusRoot focuses the scope root itself.
func InitialFocusRoot() InitialFocus { return InitialFocus{kind: initialRoot} }

// InitialFocusSelector focuses the first element inside the scope
// matching the CSS selector.
func InitialFocusSelector(selector string) InitialFocus {
	return InitialFocus{kind: initialSelector, selector: selector}
}

// InitialFocusElement focuses the given element.
func InitialFocusElement(n *html.Node) InitialFocus {
	return InitialFocus{kind: initialElement, element: n}
}

// InitialFocusFunc focuses the element returned by fn at activation
// time.
func InitialFocusFunc(fn func() *html.Node) InitialFocus {
	return InitialFocus{kind: initialFunc, fn: fn}
}

// Hooks are invoked synchronously from within the triggering event
// handler. Nil hooks are skipped.
type Hooks struct {
	Activate       func(*Trap)
	Deactivate     func(*Trap)
	OutsidePointer func(*Trap, *dom.Event)
	Escape         func(*Trap)
}

// Options configure a trap. Root is required and is immutable for the
// lifetime of an active trap.
type Options struct {
	Root           *html.Node
	InitialFocus   InitialFocus
	ReturnFocus    bool
	OutsidePointer OutsideAction
	Escape         EscapeAction
	Hooks          Hooks
}

// DefaultOptions returns trap options with platform defaults: focus
// the first focusable element on activation and return focus on
// deactivation.
func DefaultOptions(root *html.Node) Options {
	return Options{
		Root:        root,
		ReturnFocus: true,
	}
}

// Trap is one focus trap instance. It borrows its root element from
// the host document and owns only its activation state.
type Trap struct {
	id   string
	reg  *Registry
	opts Options

	state State
	// prev is captured exactly once at activation and consumed
	// exactly once at deactivation.
	prev      *html.Node
	lastFocus *html.Node

	log *slog.Logger
}

// NewTrap creates an inactive trap registered against the given
// registry. The trap activates on Activate, not on construction.
func NewTrap(reg *Registry, opts Options) *Trap {
	id := ulid.Make().String()
	return &Trap{
		id:   id,
		reg:  reg,
		opts: opts,
		log:  reg.log.With(slog.String("trap_id", id)),
	}
}

// ID returns the trap's unique identifier.
func (t *Trap) ID() string { return t.id }

// Root returns the trap's scope root.
func (t *Trap) Root() *html.Node { return t.opts.Root }

// State returns the trap's current lifecycle state.
func (t *Trap) State() State { return t.state }

// Active reports whether the trap is currently active.
func (t *Trap) Active() bool { return t.state == StateActive }

// Activate pushes the trap onto the registry stack, marks outside
// regions inert, and moves focus into the scope. Activating an
// already-active trap is a no-op.
func (t *Trap) Activate() {
	if t.state != StateInactive {
		telemetry.TrapActivations.WithLabelValues(telemetry.ResultNoop).Inc()
		return
	}
	if t.opts.Root == nil {
		t.log.Warn("trap activation skipped: nil root")
		return
	}
	t.state = StateActivating

	t.prev = t.reg.doc.ActiveElement()

	if !t.reg.push(t) {
		// Another trap already owns this root.
		t.state = StateInactive
		t.prev = nil
		telemetry.TrapActivations.WithLabelValues(telemetry.ResultDuplicateRoot).Inc()
		return
	}

	if target := t.resolveInitialFocus(); target != nil {
		t.reg.doc.Focus(target)
		t.lastFocus = target
		telemetry.TrapActivations.WithLabelValues(telemetry.ResultActivated).Inc()
	} else {
		telemetry.TrapActivations.WithLabelValues(telemetry.ResultEmptyScope).Inc()
	}

	t.state = StateActive
	if t.opts.Hooks.Activate != nil {
		t.opts.Hooks.Activate(t)
	}
}

// Deactivate removes the trap from the registry stack, undoes its
// inert marks, and restores focus to the element focused before
// activation if it is still attached. Deactivating an inactive trap
// is a no-op.
func (t *Trap) Deactivate() {
	t.deactivate(telemetry.ReasonExplicit)
}

func (t *Trap) deactivate(reason string) {
	if t.state != StateActive {
		return
	}
	t.state = StateDeactivating

	t.reg.remove(t)

	if t.opts.ReturnFocus {
		if t.prev != nil && t.reg.doc.Connected(t.prev) {
			t.reg.doc.Focus(t.prev)
		} else {
			t.reg.doc.Blur()
		}
	}
	t.prev = nil
	t.lastFocus = nil

	t.state = StateInactive
	telemetry.TrapDeactivations.WithLabelValues(reason).Inc()
	if t.opts.Hooks.Deactivate != nil {
		t.opts.Hooks.Deactivate(t)
	}
}

// resolveInitialFocus picks the activation focus target, or nil when
// the move should be skipped. An empty scope is logged and non-fatal.
func (t *Trap) resolveInitialFocus() *html.Node {
	switch t.opts.InitialFocus.kind {
	case initialNone:
		return nil
	case initialRoot:
		return t.opts.Root
	case initialSelector:
		if n := t.reg.doc.QueryWithin(t.opts.Root, t.opts.InitialFocus.selector); n != nil {
			return n
		}
		t.log.Warn("initial focus selector matched nothing",
			slog.String("selector", t.opts.InitialFocus.selector))
		return nil
	case initialElement:
		return t.opts.InitialFocus.element
	case initialFunc:
		if t.opts.InitialFocus.fn != nil {
			return t.opts.InitialFocus.fn()
		}
		return nil
	default:
		if n := FirstFocusCandidate(t.opts.Root); n != nil {
			return n
		}
		if dom.TabIndexOf(t.opts.Root) >= 0 {
			// Scope root explicitly focusable, no descendant qualifies.
			return t.opts.Root
		}
		t.log.Warn("trap activated without focus move", slog.String("err", ErrNoFocusableTarget.Error()))
		return nil
	}
}

// noteFocus records the last known focus position inside the trap,
// used to pull escaped focus back in.
func (t *Trap) noteFocus(n *html.Node) {
	t.lastFocus = n
}
