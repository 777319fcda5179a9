// tether-demo replays a scripted interaction scenario against a parsed
// document and prints what the focus, toast, and form primitives do at
// each step. Scenarios are YAML files; run without arguments to replay
// the built-in dialog walkthrough.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/odvcencio/tether/pkg/component"
	"github.com/odvcencio/tether/pkg/dom"
	"github.com/odvcencio/tether/pkg/focus"
	"github.com/odvcencio/tether/pkg/form"
	"github.com/odvcencio/tether/pkg/toast"
)

var (
	version = "1.0.0-dev"
	commit  = "unknown"
)

var (
	stepStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	stateStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	noteStyle   = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("6"))
	errStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	toastStyles = map[toast.Level]lipgloss.Style{
		toast.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		toast.LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		toast.LevelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		toast.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
)

type toastStep struct {
	Level   string `yaml:"level"`
	Title   string `yaml:"title"`
	Message string `yaml:"message"`
}

// step describes one scripted action. Exactly one action field should
// be set per step; the first non-empty field wins.
type step struct {
	Trap    string     `yaml:"trap,omitempty"`    // activate a trap on this selector
	Outside string     `yaml:"outside,omitempty"` // trap policy: ignore|block|notify
	Escape  string     `yaml:"escape,omitempty"`  // trap policy: ignore|notify|deactivate
	Release string     `yaml:"release,omitempty"` // deactivate the trap on this selector
	Key     string     `yaml:"key,omitempty"`     // dispatch a keydown (Tab, Escape, ...)
	Shift   bool       `yaml:"shift,omitempty"`
	Pointer string     `yaml:"pointer,omitempty"` // pointerdown on this selector
	Focus   string     `yaml:"focus,omitempty"`   // move focus directly to this selector
	Insert  string     `yaml:"insert,omitempty"`  // append this markup under <body>
	Remove  string     `yaml:"remove,omitempty"`  // detach the element at this selector
	Toast   *toastStep `yaml:"toast,omitempty"`
	Dismiss string     `yaml:"dismiss,omitempty"` // toast id, or "oldest"
	Form    string     `yaml:"form,omitempty"`    // activate|next|previous|deactivate|lock|unlock|values
	Note    string     `yaml:"note,omitempty"`
}

type formSpec struct {
	Container string   `yaml:"container"`
	Stages    []string `yaml:"stages"`
}

type scenario struct {
	Name  string    `yaml:"name"`
	HTML  string    `yaml:"html"`
	Form  *formSpec `yaml:"form,omitempty"`
	Steps []step    `yaml:"steps"`
}

const defaultScenario = `name: dialog walkthrough
html: |
  <html><body>
    <button id="open">Open</button>
    <div id="dialog" role="dialog">
      <input id="name" type="text">
      <button id="save">Save</button>
      <button id="cancel">Cancel</button>
    </div>
    <a id="outside" href="/away">elsewhere</a>
  </body></html>
steps:
  - focus: "#open"
  - trap: "#dialog"
    outside: block
    escape: deactivate
    note: focus moves inside, the rest of the page goes inert
  - key: Tab
  - key: Tab
  - key: Tab
    note: wraps from the last control back to the first
  - pointer: "#outside"
    note: blocked while the trap holds
  - toast:
      level: success
      title: Saved
      message: your changes are in
  - key: Escape
    note: deactivates the trap and restores focus to the opener
`

// modalComponent activates a focus trap when its host enters the
// document. Removal is handled by the trap registry's disconnect
// watcher, so Disconnected has nothing to clean up.
type modalComponent struct {
	reg  *focus.Registry
	trap *focus.Trap
}

func (m *modalComponent) Connected(doc *dom.Document, host *html.Node) {
	m.trap = focus.NewTrap(m.reg, focus.DefaultOptions(host))
	m.trap.Activate()
}

func (m *modalComponent) Disconnected(doc *dom.Document, host *html.Node) {}

type runner struct {
	doc    *dom.Document
	reg    *focus.Registry
	comps  *component.Registry
	toasts *toast.Manager
	form   *form.Form
	traps  map[string]*focus.Trap
	quiet  bool
}

func main() {
	var (
		scenarioPath string
		noColor      bool
		quiet        bool
		verbose      bool
		showVersion  bool
	)
	flag.StringVar(&scenarioPath, "scenario", "", "path to a YAML scenario file (default: built-in walkthrough)")
	flag.BoolVar(&noColor, "no-color", false, "disable styled output")
	flag.BoolVar(&quiet, "quiet", false, "only print errors")
	flag.BoolVar(&verbose, "v", false, "enable debug logging")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("tether-demo %s (%s)\n", version, commit)
		return
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	raw := []byte(defaultScenario)
	if scenarioPath != "" {
		b, err := os.ReadFile(scenarioPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, errStyle.Render(fmt.Sprintf("read scenario: %v", err)))
			os.Exit(1)
		}
		raw = b
	}

	var sc scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render(fmt.Sprintf("parse scenario: %v", err)))
		os.Exit(1)
	}

	if _, err := run(&sc, logger, quiet); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render(err.Error()))
		os.Exit(1)
	}
}

func run(sc *scenario, logger *slog.Logger, quiet bool) (*runner, error) {
	doc, err := dom.ParseString(sc.HTML)
	if err != nil {
		return nil, fmt.Errorf("parse scenario html: %w", err)
	}

	r := &runner{
		doc:    doc,
		reg:    focus.NewRegistry(doc, logger),
		toasts: toast.NewManager(),
		traps:  make(map[string]*focus.Trap),
		quiet:  quiet,
	}

	r.comps = component.NewRegistry(doc, logger)
	if err := r.comps.Define("x-modal", func() component.Component {
		return &modalComponent{reg: r.reg}
	}); err != nil {
		return nil, err
	}
	r.comps.Upgrade()

	r.toasts.Subscribe(func(ev toast.Event) {
		if r.quiet {
			return
		}
		style := toastStyles[ev.Toast.Level]
		switch ev.Kind {
		case toast.EventCreated:
			fmt.Println(style.Render(fmt.Sprintf("  toast + [%s] %s: %s", ev.Toast.Level, ev.Toast.Title, ev.Toast.Message)))
		case toast.EventDismissed:
			fmt.Println(style.Render(fmt.Sprintf("  toast - [%s] %s (%s)", ev.Toast.Level, ev.Toast.Title, ev.Reason)))
		}
	})

	if sc.Form != nil {
		f, err := buildForm(r, sc.Form)
		if err != nil {
			return nil, err
		}
		r.form = f
	}

	if !quiet && sc.Name != "" {
		fmt.Println(stepStyle.Render("scenario: " + sc.Name))
	}

	for i, st := range sc.Steps {
		if err := r.apply(i+1, st); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		r.printState()
	}
	return r, nil
}

func buildForm(r *runner, spec *formSpec) (*form.Form, error) {
	container := r.doc.Query(spec.Container)
	if container == nil {
		return nil, fmt.Errorf("form container %q not found", spec.Container)
	}
	stages := make([]form.Stage, 0, len(spec.Stages))
	for _, sel := range spec.Stages {
		n := r.doc.Query(sel)
		if n == nil {
			return nil, fmt.Errorf("form stage %q not found", sel)
		}
		stages = append(stages, form.Stage{Container: n})
	}
	return form.New(r.reg, form.Options{Container: container, Stages: stages})
}

func (r *runner) apply(n int, st step) error {
	switch {
	case st.Trap != "":
		r.announce(n, "trap "+st.Trap, st.Note)
		root := r.doc.Query(st.Trap)
		if root == nil {
			return fmt.Errorf("selector %q matched nothing", st.Trap)
		}
		opts := focus.DefaultOptions(root)
		var err error
		if opts.OutsidePointer, err = parseOutside(st.Outside); err != nil {
			return err
		}
		if opts.Escape, err = parseEscape(st.Escape); err != nil {
			return err
		}
		t := focus.NewTrap(r.reg, opts)
		t.Activate()
		r.traps[st.Trap] = t

	case st.Release != "":
		r.announce(n, "release "+st.Release, st.Note)
		t, ok := r.traps[st.Release]
		if !ok {
			return fmt.Errorf("no trap was activated on %q", st.Release)
		}
		t.Deactivate()
		delete(r.traps, st.Release)

	case st.Key != "":
		label := "key " + st.Key
		if st.Shift {
			label = "key Shift+" + st.Key
		}
		r.announce(n, label, st.Note)
		ev := r.doc.DispatchKey(dom.KeyPress{Key: st.Key, Shift: st.Shift})
		if ev.DefaultPrevented() && !r.quiet {
			fmt.Println(stateStyle.Render("  default prevented"))
		}

	case st.Pointer != "":
		r.announce(n, "pointer "+st.Pointer, st.Note)
		target := r.doc.Query(st.Pointer)
		if target == nil {
			return fmt.Errorf("selector %q matched nothing", st.Pointer)
		}
		ev := r.doc.DispatchPointerDown(target)
		if ev.DefaultPrevented() && !r.quiet {
			fmt.Println(stateStyle.Render("  default prevented"))
		}

	case st.Focus != "":
		r.announce(n, "focus "+st.Focus, st.Note)
		target := r.doc.Query(st.Focus)
		if target == nil {
			return fmt.Errorf("selector %q matched nothing", st.Focus)
		}
		r.doc.Focus(target)

	case st.Insert != "":
		r.announce(n, "insert markup", st.Note)
		nodes, err := dom.ParseFragment(st.Insert)
		if err != nil {
			return fmt.Errorf("parse inserted markup: %w", err)
		}
		for _, node := range nodes {
			r.doc.AppendChild(r.doc.Body(), node)
		}

	case st.Remove != "":
		r.announce(n, "remove "+st.Remove, st.Note)
		target := r.doc.Query(st.Remove)
		if target == nil {
			return fmt.Errorf("selector %q matched nothing", st.Remove)
		}
		r.doc.RemoveChild(target)

	case st.Toast != nil:
		r.announce(n, "toast "+st.Toast.Level, st.Note)
		r.toasts.Show(toast.Level(st.Toast.Level), st.Toast.Title, st.Toast.Message, toast.DefaultDuration)

	case st.Dismiss != "":
		r.announce(n, "dismiss "+st.Dismiss, st.Note)
		id := st.Dismiss
		if id == "oldest" {
			live := r.toasts.Toasts()
			if len(live) == 0 {
				return nil
			}
			id = live[0].ID
		}
		r.toasts.Dismiss(id)

	case st.Form != "":
		return r.applyForm(n, st)

	default:
		return fmt.Errorf("step has no action")
	}
	return nil
}

func (r *runner) applyForm(n int, st step) error {
	if r.form == nil {
		return fmt.Errorf("scenario declares no form")
	}
	r.announce(n, "form "+st.Form, st.Note)
	switch st.Form {
	case "activate":
		r.form.Activate()
	case "deactivate":
		r.form.Deactivate()
	case "next":
		r.form.Next()
	case "previous":
		r.form.Previous()
	case "lock":
		r.form.Lock()
	case "unlock":
		r.form.Unlock()
	case "values":
		vals := r.form.Values()
		keys := make([]string, 0, len(vals))
		for k := range vals {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Println(stateStyle.Render(fmt.Sprintf("  %s = %q", k, vals[k])))
		}
	default:
		return fmt.Errorf("unknown form action %q", st.Form)
	}
	return nil
}

func (r *runner) announce(n int, action, note string) {
	if r.quiet {
		return
	}
	fmt.Println(stepStyle.Render(fmt.Sprintf("[%02d] %s", n, action)))
	if note != "" {
		fmt.Println(noteStyle.Render("     " + note))
	}
}

func (r *runner) printState() {
	if r.quiet {
		return
	}
	active := "(none)"
	if n := r.doc.ActiveElement(); n != nil {
		active = describe(n)
	}
	parts := []string{
		"active=" + active,
		fmt.Sprintf("traps=%d", r.reg.Depth()),
		fmt.Sprintf("inert=%d", r.reg.Inerter().MarkCount()),
	}
	if len(r.toasts.Toasts()) > 0 {
		parts = append(parts, fmt.Sprintf("toasts=%d", len(r.toasts.Toasts())))
	}
	if r.form != nil && r.form.Active() {
		parts = append(parts, fmt.Sprintf("stage=%d/%d", r.form.Current()+1, r.form.StageCount()))
	}
	fmt.Println(stateStyle.Render("  " + strings.Join(parts, "  ")))
}

func parseOutside(s string) (focus.OutsideAction, error) {
	switch s {
	case "", "ignore":
		return focus.OutsideIgnore, nil
	case "block":
		return focus.OutsideBlock, nil
	case "notify":
		return focus.OutsideNotify, nil
	}
	return 0, fmt.Errorf("unknown outside policy %q", s)
}

func parseEscape(s string) (focus.EscapeAction, error) {
	switch s {
	case "", "ignore":
		return focus.EscapeIgnore, nil
	case "notify":
		return focus.EscapeNotify, nil
	case "deactivate":
		return focus.EscapeDeactivate, nil
	}
	return 0, fmt.Errorf("unknown escape policy %q", s)
}

func describe(n *html.Node) string {
	if id := dom.Attr(n, "id"); id != "" {
		return "#" + id
	}
	return "<" + dom.Tag(n) + ">"
}
