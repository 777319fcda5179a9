package form

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/tether/pkg/dom"
	"github.com/odvcencio/tether/pkg/focus"
)

const formMarkup = `<html><body>
	<form id="signup">
		<div id="stage-0"><input id="email" name="email" value="a@b.c"></div>
		<div id="stage-1">
			<input id="nick" name="nick" value="kit">
			<select name="plan"><option value="free">Free</option><option value="pro" selected>Pro</option></select>
		</div>
		<div id="stage-2"><textarea id="bio" name="bio">hello</textarea><button id="submit">Go</button></div>
	</form>
</body></html>`

func newTestForm(t *testing.T) (*dom.Document, *Form) {
	t.Helper()
	d := dom.MustParse(formMarkup)
	reg := focus.NewRegistry(d, slog.Default())
	f, err := New(reg, Options{
		Container: d.Query("#signup"),
		Stages: []Stage{
			{Container: d.Query("#stage-0")},
			{Container: d.Query("#stage-1")},
			{Container: d.Query("#stage-2")},
		},
	})
	require.NoError(t, err)
	return d, f
}

func TestNewValidation(t *testing.T) {
	d := dom.MustParse(formMarkup)
	reg := focus.NewRegistry(d, slog.Default())

	_, err := New(reg, Options{Stages: []Stage{{Container: d.Query("#stage-0")}}})
	assert.ErrorIs(t, err, ErrMissingContainer)

	_, err = New(reg, Options{Container: d.Query("#signup")})
	assert.ErrorIs(t, err, ErrNoStages)

	_, err = New(reg, Options{
		Container: d.Query("#signup"),
		Stages:    []Stage{{Container: d.Query("#stage-0")}},
		Initial:   5,
	})
	assert.ErrorIs(t, err, ErrStageOutOfRange)
}

func TestActivateFocusesCurrentStage(t *testing.T) {
	d, f := newTestForm(t)

	f.Activate()
	assert.True(t, f.Active())
	assert.Equal(t, d.Query("#email"), d.ActiveElement())
	assert.True(t, dom.HasAttr(d.Query("#signup"), "data-form-active"))
	assert.Equal(t, "0", dom.Attr(d.Query("#stage-0"), "data-stage-relative"))
	assert.Equal(t, "1", dom.Attr(d.Query("#stage-1"), "data-stage-relative"))
	assert.Equal(t, "2", dom.Attr(d.Query("#stage-2"), "data-stage-relative"))

	// Re-activation is a no-op.
	f.Activate()
	assert.Equal(t, 0, f.Current())
}

func TestNextHandsTrapToFollowingStage(t *testing.T) {
	d, f := newTestForm(t)
	f.Activate()

	require.True(t, f.Next())
	assert.Equal(t, 1, f.Current())
	assert.Equal(t, d.Query("#nick"), d.ActiveElement())
	assert.Equal(t, "-1", dom.Attr(d.Query("#stage-0"), "data-stage-relative"))
	assert.Equal(t, "0", dom.Attr(d.Query("#stage-1"), "data-stage-relative"))

	// Containment follows the active stage.
	assert.True(t, dom.HasAttr(d.Query("#stage-0"), "inert"))
	assert.False(t, dom.HasAttr(d.Query("#stage-1"), "inert"))
}

func TestBounds(t *testing.T) {
	_, f := newTestForm(t)
	f.Activate()

	assert.False(t, f.Previous(), "cannot step before the first stage")
	require.True(t, f.Next())
	require.True(t, f.Next())
	assert.False(t, f.Next(), "cannot step past the last stage")
	assert.Equal(t, 2, f.Current())

	assert.True(t, f.Previous())
	assert.Equal(t, 1, f.Current())
}

func TestGoto(t *testing.T) {
	d, f := newTestForm(t)
	f.Activate()

	require.NoError(t, f.Goto(2))
	assert.Equal(t, 2, f.Current())
	assert.Equal(t, d.Query("#bio"), d.ActiveElement())

	assert.ErrorIs(t, f.Goto(7), ErrStageOutOfRange)
	assert.ErrorIs(t, f.Goto(-1), ErrStageOutOfRange)
}

func TestLockFreezesTransitions(t *testing.T) {
	_, f := newTestForm(t)
	f.Activate()

	f.Lock()
	assert.False(t, f.Next())
	assert.Equal(t, 0, f.Current())

	f.Unlock()
	assert.True(t, f.Next())
}

func TestInactiveFormDoesNotTransition(t *testing.T) {
	_, f := newTestForm(t)
	assert.False(t, f.Next(), "transitions require an active form")
}

func TestDeactivateReleasesTrap(t *testing.T) {
	d, f := newTestForm(t)
	f.Activate()
	f.Next()

	f.Deactivate()
	assert.False(t, f.Active())
	assert.False(t, dom.HasAttr(d.Query("#signup"), "data-form-active"))
	assert.Zero(t, d.TotalListeners(), "deactivation releases the stage trap")

	// Idempotent.
	f.Deactivate()
}

func TestValues(t *testing.T) {
	_, f := newTestForm(t)
	f.Activate()

	assert.Equal(t, map[string]string{"email": "a@b.c"}, f.Values())

	f.Next()
	got := f.Values()
	assert.Equal(t, "kit", got["nick"])
	assert.Equal(t, "pro", got["plan"])

	f.Next()
	assert.Equal(t, "hello", f.Values()["bio"])
}
