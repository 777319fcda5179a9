package focus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/tether/pkg/dom"
)

func TestFocusCandidatesFiltering(t *testing.T) {
	d := dom.MustParse(`<html><body><div id="scope">
		<input id="text">
		<input id="hidden-input" type="hidden">
		<button id="btn">ok</button>
		<button id="off" disabled>off</button>
		<a id="link" href="/x">x</a>
		<a id="bare-anchor">no href</a>
		<div id="plain">nothing</div>
		<div id="tabbed" tabindex="0">tabbed</div>
		<textarea id="area" hidden></textarea>
		<span id="inert-span" tabindex="0" inert>blocked</span>
		<div inert><button id="under-inert">no</button></div>
		<video id="vid" controls></video>
	</div></body></html>`)
	scope := d.Query("#scope")
	require.NotNil(t, scope)

	got := idList(FocusCandidates(scope))
	assert.Equal(t, []string{"text", "btn", "link", "tabbed", "vid"}, got)
}

func TestTabCandidatesExcludeNegativeTabindex(t *testing.T) {
	d := dom.MustParse(`<html><body><div id="scope">
		<button id="a">a</button>
		<button id="skip" tabindex="-1">skip</button>
		<button id="b">b</button>
	</div></body></html>`)
	scope := d.Query("#scope")

	assert.Equal(t, []string{"a", "b"}, idList(TabCandidates(scope)))
	// The negative-tabindex element is still focusable, just not tabbable.
	assert.Equal(t, []string{"a", "skip", "b"}, idList(FocusCandidates(scope)))
}

func TestTabCandidatesPositiveTabindexOrdering(t *testing.T) {
	d := dom.MustParse(`<html><body><div id="scope">
		<button id="zero-1">z1</button>
		<button id="two" tabindex="2">2</button>
		<button id="one" tabindex="1">1</button>
		<button id="zero-2">z2</button>
	</div></body></html>`)
	scope := d.Query("#scope")

	// Positive tab indexes ascending first, then document order.
	assert.Equal(t, []string{"one", "two", "zero-1", "zero-2"}, idList(TabCandidates(scope)))
}

func TestCandidatesDescendShadowRoots(t *testing.T) {
	d := dom.MustParse(`<html><body><div id="scope">
		<button id="outer">outer</button>
		<div id="host"><template shadowrootmode="open">
			<input id="shadow-input">
		</template></div>
		<template><button id="never">never</button></template>
	</div></body></html>`)
	scope := d.Query("#scope")

	got := idList(TabCandidates(scope))
	assert.Contains(t, got, "shadow-input")
	assert.NotContains(t, got, "never")
}

func TestFirstFocusCandidate(t *testing.T) {
	d := dom.MustParse(`<html><body><div id="scope">
		<div>deep<button id="first">f</button></div>
		<button id="second">s</button>
	</div></body></html>`)
	scope := d.Query("#scope")

	first := FirstFocusCandidate(scope)
	require.NotNil(t, first)
	assert.Equal(t, "first", dom.Attr(first, "id"))

	assert.Nil(t, FirstFocusCandidate(nil))
}

func TestEmptyScopeYieldsNoCandidates(t *testing.T) {
	d := dom.MustParse(`<html><body><div id="scope"><p>just text</p></div></body></html>`)
	scope := d.Query("#scope")

	assert.Empty(t, FocusCandidates(scope))
	assert.Empty(t, TabCandidates(scope))
	assert.Nil(t, FirstFocusCandidate(scope))
}
