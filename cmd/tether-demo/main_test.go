package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/odvcencio/tether/pkg/focus"
)

func TestBuiltinWalkthrough(t *testing.T) {
	var sc scenario
	require.NoError(t, yaml.Unmarshal([]byte(defaultScenario), &sc))

	r, err := run(&sc, slog.Default(), true)
	require.NoError(t, err)

	// The walkthrough ends with Escape deactivating the dialog trap
	// and handing focus back to the opener.
	assert.Zero(t, r.reg.Depth())
	assert.Equal(t, r.doc.Query("#open"), r.doc.ActiveElement())
	assert.Len(t, r.toasts.Toasts(), 1)
}

func TestWalkthroughBlocksOutsidePointer(t *testing.T) {
	var sc scenario
	require.NoError(t, yaml.Unmarshal([]byte(defaultScenario), &sc))

	// Stop right after the outside press: the trap must still hold and
	// focus must not have left the dialog.
	require.Equal(t, "#outside", sc.Steps[5].Pointer)
	sc.Steps = sc.Steps[:6]

	r, err := run(&sc, slog.Default(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, r.reg.Depth())
	assert.Equal(t, r.doc.Query("#name"), r.doc.ActiveElement())
}

func TestTrapPolicyParsing(t *testing.T) {
	out, err := parseOutside("block")
	require.NoError(t, err)
	assert.Equal(t, focus.OutsideBlock, out)

	esc, err := parseEscape("deactivate")
	require.NoError(t, err)
	assert.Equal(t, focus.EscapeDeactivate, esc)

	// Unset fields keep the defaults.
	out, err = parseOutside("")
	require.NoError(t, err)
	assert.Equal(t, focus.OutsideIgnore, out)

	_, err = parseOutside("banish")
	assert.Error(t, err)
	_, err = parseEscape("explode")
	assert.Error(t, err)
}
