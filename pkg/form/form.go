// Package form implements a headless multi-stage form. Each stage is
// a container element with its own focus trap; advancing the form
// hands the trap from one stage to the next.
package form

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/net/html"

	"github.com/odvcencio/tether/pkg/dom"
	"github.com/odvcencio/tether/pkg/focus"
)

var (
	ErrNoStages         = errors.New("form: at least one stage is required")
	ErrStageOutOfRange  = errors.New("form: stage index out of range")
	ErrMissingContainer = errors.New("form: container element is required")
)

// Stage is one step of a multi-stage form.
type Stage struct {
	Container *html.Node
}

// Options configure a form.
type Options struct {
	Container *html.Node
	Stages    []Stage
	// Initial selects the stage shown on activation. Defaults to 0.
	Initial int
}

// Form owns the stage sequence and the per-stage focus traps. The
// container carries data-form-active while the form is active; each
// stage container carries data-stage-relative with its signed offset
// from the current stage, for the host's visuals to key off.
type Form struct {
	mu sync.Mutex

	doc       *dom.Document
	container *html.Node
	stages    []Stage
	traps     []*focus.Trap

	current int
	active  bool
	locked  bool
}

// New builds a form over the given stages. Traps are created eagerly,
// one per stage, scoped to the stage container without focus return:
// stage hand-off should not bounce focus through the previous stage's
// opener.
func New(reg *focus.Registry, opts Options) (*Form, error) {
	if opts.Container == nil {
		return nil, ErrMissingContainer
	}
	if len(opts.Stages) == 0 {
		return nil, ErrNoStages
	}
	if opts.Initial < 0 || opts.Initial >= len(opts.Stages) {
		return nil, fmt.Errorf("%w: initial %d of %d", ErrStageOutOfRange, opts.Initial, len(opts.Stages))
	}

	traps := make([]*focus.Trap, len(opts.Stages))
	for i, stage := range opts.Stages {
		trapOpts := focus.DefaultOptions(stage.Container)
		trapOpts.ReturnFocus = false
		traps[i] = focus.NewTrap(reg, trapOpts)
	}

	return &Form{
		doc:       reg.Document(),
		container: opts.Container,
		stages:    opts.Stages,
		traps:     traps,
		current:   opts.Initial,
	}, nil
}

// Current returns the index of the current stage.
func (f *Form) Current() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// StageCount returns the number of stages.
func (f *Form) StageCount() int {
	return len(f.stages)
}

// Active reports whether the form is activated.
func (f *Form) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// Activate turns the form on: the current stage's trap activates and
// the stage metadata attributes are written. Idempotent.
func (f *Form) Activate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active {
		return
	}
	f.active = true
	f.traps[f.current].Activate()
	f.doc.SetAttr(f.container, "data-form-active", "")
	f.updateRelatives()
}

// Deactivate turns the form off and releases the current stage's
// trap. Idempotent.
func (f *Form) Deactivate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.active {
		return
	}
	f.active = false
	f.traps[f.current].Deactivate()
	f.doc.RemoveAttr(f.container, "data-form-active")
}

// Lock freezes stage transitions, e.g. while a submission is in
// flight. Activation state is unaffected.
func (f *Form) Lock() {
	f.mu.Lock()
	f.locked = true
	f.mu.Unlock()
}

// Unlock re-enables stage transitions.
func (f *Form) Unlock() {
	f.mu.Lock()
	f.locked = false
	f.mu.Unlock()
}

// Next advances to the following stage. Returns false at the last
// stage, while locked, or while inactive.
func (f *Form) Next() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transition(f.current + 1)
}

// Previous steps back to the preceding stage. Returns false at the
// first stage, while locked, or while inactive.
func (f *Form) Previous() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transition(f.current - 1)
}

// Goto jumps to the given stage index.
func (f *Form) Goto(index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if index < 0 || index >= len(f.stages) {
		return fmt.Errorf("%w: %d of %d", ErrStageOutOfRange, index, len(f.stages))
	}
	f.transition(index)
	return nil
}

func (f *Form) transition(target int) bool {
	if f.locked || !f.active {
		return false
	}
	if target < 0 || target >= len(f.stages) || target == f.current {
		return false
	}
	f.traps[f.current].Deactivate()
	f.traps[target].Activate()
	f.current = target
	f.updateRelatives()
	return true
}

// updateRelatives writes each stage's signed offset from the current
// stage. The active stage reads 0, the previous -1, the next 1.
func (f *Form) updateRelatives() {
	for i, stage := range f.stages {
		f.doc.SetAttr(stage.Container, "data-stage-relative", strconv.Itoa(i-f.current))
	}
}

// Values collects the named control values of the current stage:
// input, select, and textarea elements keyed by their name attribute.
// Validation semantics are the host's concern.
func (f *Form) Values() map[string]string {
	f.mu.Lock()
	container := f.stages[f.current].Container
	f.mu.Unlock()

	out := make(map[string]string)
	dom.Walk(container, func(n *html.Node) bool {
		switch dom.Tag(n) {
		case "input":
			if name := dom.Attr(n, "name"); name != "" {
				out[name] = dom.Attr(n, "value")
			}
		case "select":
			if name := dom.Attr(n, "name"); name != "" {
				out[name] = selectedOption(n)
			}
		case "textarea":
			if name := dom.Attr(n, "name"); name != "" {
				out[name] = textContent(n)
			}
		}
		return true
	})
	return out
}

func selectedOption(sel *html.Node) string {
	var first, selected string
	firstSet := false
	dom.Walk(sel, func(n *html.Node) bool {
		if dom.Tag(n) != "option" {
			return true
		}
		val := dom.Attr(n, "value")
		if val == "" {
			val = textContent(n)
		}
		if !firstSet {
			first = val
			firstSet = true
		}
		if dom.HasAttr(n, "selected") {
			selected = val
			return false
		}
		return true
	})
	if selected != "" {
		return selected
	}
	return first
}

func textContent(n *html.Node) string {
	var out string
	dom.Walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			out += c.Data
		}
		return true
	})
	return out
}
