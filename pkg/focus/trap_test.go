package focus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const dialogMarkup = `<html><body>
	<button id="opener">open</button>
	<div id="dialog">
		<input id="first">
		<a id="middle" href="/x">mid</a>
		<button id="last">close</button>
	</div>
	<button id="other">elsewhere</button>
</body></html>`

func TestTrapActivateMovesFocusInside(t *testing.T) {
	d, reg := newTestRegistry(t, dialogMarkup)
	d.Focus(d.Query("#opener"))

	trap := NewTrap(reg, DefaultOptions(d.Query("#dialog")))
	trap.Activate()

	assert.Equal(t, StateActive, trap.State())
	assert.True(t, trap.Active())
	assert.Equal(t, d.Query("#first"), d.ActiveElement())
	assert.Equal(t, 1, reg.Depth())
	assert.True(t, reg.Bound())
}

func TestTrapRestorationLaw(t *testing.T) {
	d, reg := newTestRegistry(t, dialogMarkup)
	opener := d.Query("#opener")
	d.Focus(opener)

	trap := NewTrap(reg, DefaultOptions(d.Query("#dialog")))
	trap.Activate()
	require.NotEqual(t, opener, d.ActiveElement())

	trap.Deactivate()

	assert.Equal(t, opener, d.ActiveElement(), "focus returns to the element focused before activation")
	assert.Equal(t, StateInactive, trap.State())
	assert.Zero(t, reg.Depth())
}

func TestTrapRestorationSkippedWhenPreviousDetached(t *testing.T) {
	d, reg := newTestRegistry(t, dialogMarkup)
	opener := d.Query("#opener")
	d.Focus(opener)

	trap := NewTrap(reg, DefaultOptions(d.Query("#dialog")))
	trap.Activate()

	d.RemoveChild(opener)
	trap.Deactivate()

	assert.Nil(t, d.ActiveElement(), "focus stays unset when the previous element left the document")
}

func TestTrapReturnFocusDisabled(t *testing.T) {
	d, reg := newTestRegistry(t, dialogMarkup)
	d.Focus(d.Query("#opener"))

	opts := DefaultOptions(d.Query("#dialog"))
	opts.ReturnFocus = false
	trap := NewTrap(reg, opts)
	trap.Activate()
	trap.Deactivate()

	assert.Equal(t, d.Query("#first"), d.ActiveElement(), "focus stays where it was")
}

func TestTrapActivateIdempotent(t *testing.T) {
	d, reg := newTestRegistry(t, dialogMarkup)

	activations := 0
	opts := DefaultOptions(d.Query("#dialog"))
	opts.Hooks.Activate = func(*Trap) { activations++ }
	trap := NewTrap(reg, opts)

	trap.Activate()
	trap.Activate()
	trap.Activate()

	assert.Equal(t, 1, activations, "re-activation must not re-invoke the hook")
	assert.Equal(t, 1, reg.Depth(), "re-activation must leave the stack unchanged")
}

func TestTrapDeactivateIdempotent(t *testing.T) {
	d, reg := newTestRegistry(t, dialogMarkup)

	deactivations := 0
	opts := DefaultOptions(d.Query("#dialog"))
	opts.Hooks.Deactivate = func(*Trap) { deactivations++ }
	trap := NewTrap(reg, opts)

	trap.Activate()
	trap.Deactivate()
	trap.Deactivate()

	assert.Equal(t, 1, deactivations)
	assert.False(t, reg.Bound())
}

func TestTrapEmptyScopeStillActivates(t *testing.T) {
	d, reg := newTestRegistry(t, `<html><body>
		<button id="opener">open</button>
		<div id="empty"><p>nothing focusable</p></div>
	</body></html>`)
	opener := d.Query("#opener")
	d.Focus(opener)

	trap := NewTrap(reg, DefaultOptions(d.Query("#empty")))
	trap.Activate()

	assert.True(t, trap.Active(), "empty scope is non-fatal")
	assert.Equal(t, opener, d.ActiveElement(), "initial focus move is skipped")
	assert.True(t, reg.Bound(), "inert enforcement still applies")

	trap.Deactivate()
	assert.False(t, reg.Bound())
}

func TestTrapInitialFocusVariants(t *testing.T) {
	markup := `<html><body>
		<div id="dialog" tabindex="-1">
			<input id="first">
			<button id="target">pick me</button>
		</div>
	</body></html>`

	t.Run("selector", func(t *testing.T) {
		d, reg := newTestRegistry(t, markup)
		opts := DefaultOptions(d.Query("#dialog"))
		opts.InitialFocus = InitialFocusSelector("#target")
		NewTrapAndActivate(t, reg, opts)
		assert.Equal(t, d.Query("#target"), d.ActiveElement())
	})

	t.Run("root", func(t *testing.T) {
		d, reg := newTestRegistry(t, markup)
		opts := DefaultOptions(d.Query("#dialog"))
		opts.InitialFocus = InitialFocusRoot()
		NewTrapAndActivate(t, reg, opts)
		assert.Equal(t, d.Query("#dialog"), d.ActiveElement())
	})

	t.Run("element", func(t *testing.T) {
		d, reg := newTestRegistry(t, markup)
		opts := DefaultOptions(d.Query("#dialog"))
		opts.InitialFocus = InitialFocusElement(d.Query("#target"))
		NewTrapAndActivate(t, reg, opts)
		assert.Equal(t, d.Query("#target"), d.ActiveElement())
	})

	t.Run("func", func(t *testing.T) {
		d, reg := newTestRegistry(t, markup)
		opts := DefaultOptions(d.Query("#dialog"))
		opts.InitialFocus = InitialFocusFunc(func() *html.Node { return d.Query("#target") })
		NewTrapAndActivate(t, reg, opts)
		assert.Equal(t, d.Query("#target"), d.ActiveElement())
	})

	t.Run("none", func(t *testing.T) {
		d, reg := newTestRegistry(t, markup)
		d.Blur()
		opts := DefaultOptions(d.Query("#dialog"))
		opts.InitialFocus = InitialFocusNone()
		NewTrapAndActivate(t, reg, opts)
		assert.Nil(t, d.ActiveElement())
	})
}

func TestTrapFallsBackToFocusableRoot(t *testing.T) {
	d, reg := newTestRegistry(t, `<html><body>
		<div id="dialog" tabindex="0"><p>no controls</p></div>
	</body></html>`)

	trap := NewTrap(reg, DefaultOptions(d.Query("#dialog")))
	trap.Activate()

	assert.Equal(t, d.Query("#dialog"), d.ActiveElement(),
		"an explicitly focusable root receives focus when no descendant qualifies")
}

// NewTrapAndActivate is a test convenience.
func NewTrapAndActivate(t *testing.T, reg *Registry, opts Options) *Trap {
	t.Helper()
	trap := NewTrap(reg, opts)
	trap.Activate()
	require.True(t, trap.Active())
	return trap
}
