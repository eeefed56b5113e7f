package toggle

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/frogmemo/frogmemo/internal/hotkeys"
)

var errQuery = errors.New("query failed")

type fakeWindow struct {
	visible      bool
	minimized    bool
	visibleErr   error
	minimizedErr error

	unminimizeErr error
	showErr       error
	focusErr      error
	minimizeErr   error

	// apply mutates visible/minimized like a real window manager would.
	apply bool
	calls []string
}

func (w *fakeWindow) IsVisible() (bool, error)   { return w.visible, w.visibleErr }
func (w *fakeWindow) IsMinimized() (bool, error) { return w.minimized, w.minimizedErr }

func (w *fakeWindow) Unminimize() error {
	w.calls = append(w.calls, "unminimize")
	if w.apply && w.unminimizeErr == nil {
		w.minimized = false
	}
	return w.unminimizeErr
}

func (w *fakeWindow) Show() error {
	w.calls = append(w.calls, "show")
	if w.apply && w.showErr == nil {
		w.visible = true
	}
	return w.showErr
}

func (w *fakeWindow) SetFocus() error {
	w.calls = append(w.calls, "set_focus")
	return w.focusErr
}

func (w *fakeWindow) Minimize() error {
	w.calls = append(w.calls, "minimize")
	if w.apply && w.minimizeErr == nil {
		// Minimized windows still report visible, matching toolkit semantics.
		w.minimized = true
	}
	return w.minimizeErr
}

type fakeRegistry struct {
	win       *fakeWindow
	createErr error
	created   []WindowSpec
	lookups   []string
}

func (r *fakeRegistry) Window(label string) (Window, bool) {
	r.lookups = append(r.lookups, label)
	if r.win == nil {
		return nil, false
	}
	return r.win, true
}

func (r *fakeRegistry) Create(spec WindowSpec) error {
	r.created = append(r.created, spec)
	return r.createErr
}

var testSpec = WindowSpec{
	Label:    "main",
	Title:    "frog-memo",
	Document: "index.html",
	Width:    800,
	Height:   600,
}

var testShortcut = hotkeys.MustParseShortcut("Alt+Backquote")

func newTestController(reg *fakeRegistry) *Controller {
	return NewController(reg, testSpec, testShortcut, nil)
}

func TestDecide(t *testing.T) {
	ok := func(v bool) Flag { return Flag{Value: v} }
	bad := Flag{Err: errQuery}

	tests := []struct {
		name string
		obs  Observation
		want Action
	}{
		{"missing window", Observation{}, ActionCreate},
		{"missing window ignores flags", Observation{Visible: ok(true), Minimized: ok(false)}, ActionCreate},
		{"visible and minimized", Observation{Exists: true, Visible: ok(true), Minimized: ok(true)}, ActionRestore},
		{"visible not minimized", Observation{Exists: true, Visible: ok(true), Minimized: ok(false)}, ActionMinimize},
		{"hidden", Observation{Exists: true, Visible: ok(false), Minimized: ok(false)}, ActionShow},
		{"hidden and minimized", Observation{Exists: true, Visible: ok(false), Minimized: ok(true)}, ActionShow},
		{"visible query failed", Observation{Exists: true, Visible: bad, Minimized: ok(false)}, ActionShow},
		{"minimized query failed", Observation{Exists: true, Visible: ok(true), Minimized: bad}, ActionShow},
		{"both queries failed", Observation{Exists: true, Visible: bad, Minimized: bad}, ActionShow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.obs); got != tt.want {
				t.Errorf("Decide(%+v) = %v, want %v", tt.obs, got, tt.want)
			}
		})
	}
}

func TestToggle_CommandsPerBranch(t *testing.T) {
	tests := []struct {
		name       string
		win        *fakeWindow
		wantAction Action
		wantCalls  []string
	}{
		{
			name:       "restore",
			win:        &fakeWindow{visible: true, minimized: true},
			wantAction: ActionRestore,
			wantCalls:  []string{"unminimize", "show", "set_focus"},
		},
		{
			name:       "minimize",
			win:        &fakeWindow{visible: true},
			wantAction: ActionMinimize,
			wantCalls:  []string{"minimize"},
		},
		{
			name:       "show hidden",
			win:        &fakeWindow{},
			wantAction: ActionShow,
			wantCalls:  []string{"unminimize", "show", "set_focus"},
		},
		{
			name:       "show on query failure",
			win:        &fakeWindow{visible: true, visibleErr: errQuery},
			wantAction: ActionShow,
			wantCalls:  []string{"unminimize", "show", "set_focus"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &fakeRegistry{win: tt.win}
			res := newTestController(reg).Toggle(context.Background())
			if res.Action != tt.wantAction {
				t.Fatalf("action = %v, want %v", res.Action, tt.wantAction)
			}
			if !reflect.DeepEqual(tt.win.calls, tt.wantCalls) {
				t.Fatalf("calls = %v, want %v", tt.win.calls, tt.wantCalls)
			}
			if len(reg.created) != 0 {
				t.Fatalf("unexpected create calls: %v", reg.created)
			}
		})
	}
}

func TestToggle_MissingWindowCreatesOnce(t *testing.T) {
	reg := &fakeRegistry{}
	res := newTestController(reg).Toggle(context.Background())

	if res.Action != ActionCreate {
		t.Fatalf("action = %v, want create", res.Action)
	}
	if len(reg.created) != 1 {
		t.Fatalf("expected exactly one create, got %d", len(reg.created))
	}
	if reg.created[0] != testSpec {
		t.Fatalf("created %+v, want %+v", reg.created[0], testSpec)
	}
	if len(res.Steps) != 1 || res.Steps[0].Step != StepCreate {
		t.Fatalf("steps = %+v, want single create", res.Steps)
	}
}

func TestToggle_CreateFailureIsRecorded(t *testing.T) {
	reg := &fakeRegistry{createErr: errors.New("no display")}
	res := newTestController(reg).Toggle(context.Background())
	if !res.Failed() {
		t.Fatalf("expected failed result")
	}
	if len(reg.created) != 1 {
		t.Fatalf("create should not be retried, got %d calls", len(reg.created))
	}
}

func TestToggle_UnminimizeFailureStillShowsAndFocuses(t *testing.T) {
	for _, win := range []*fakeWindow{
		{unminimizeErr: errors.New("boom")},
		{visible: true, minimized: true, unminimizeErr: errors.New("boom")},
	} {
		res := newTestController(&fakeRegistry{win: win}).Toggle(context.Background())
		want := []string{"unminimize", "show", "set_focus"}
		if !reflect.DeepEqual(win.calls, want) {
			t.Fatalf("calls = %v, want %v", win.calls, want)
		}
		if !res.Failed() {
			t.Fatalf("expected the unminimize failure to be recorded")
		}
		if res.Steps[0].Err == nil || res.Steps[1].Err != nil || res.Steps[2].Err != nil {
			t.Fatalf("unexpected step errors: %+v", res.Steps)
		}
	}
}

func TestToggle_ShowFailureStillFocuses(t *testing.T) {
	win := &fakeWindow{showErr: errors.New("boom")}
	newTestController(&fakeRegistry{win: win}).Toggle(context.Background())
	want := []string{"unminimize", "show", "set_focus"}
	if !reflect.DeepEqual(win.calls, want) {
		t.Fatalf("calls = %v, want %v", win.calls, want)
	}
}

func TestToggle_IdempotentForFixedObservation(t *testing.T) {
	win := &fakeWindow{visible: true}
	c := newTestController(&fakeRegistry{win: win})

	first := c.Toggle(context.Background())
	second := c.Toggle(context.Background())
	if first.Action != ActionMinimize || second.Action != ActionMinimize {
		t.Fatalf("actions = %v, %v; want minimize twice", first.Action, second.Action)
	}
	if !reflect.DeepEqual(win.calls, []string{"minimize", "minimize"}) {
		t.Fatalf("calls = %v", win.calls)
	}
}

func TestToggle_Alternates(t *testing.T) {
	win := &fakeWindow{visible: true, apply: true}
	c := newTestController(&fakeRegistry{win: win})

	var got []Action
	for i := 0; i < 4; i++ {
		got = append(got, c.Toggle(context.Background()).Action)
	}
	want := []Action{ActionMinimize, ActionRestore, ActionMinimize, ActionRestore}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("actions = %v, want %v", got, want)
	}
}

func TestHandleEvent(t *testing.T) {
	other := hotkeys.MustParseShortcut("Control+N")

	tests := []struct {
		name    string
		ev      hotkeys.Event
		handled bool
		calls   int
	}{
		{"press", hotkeys.Event{Shortcut: testShortcut, State: hotkeys.Pressed}, true, 1},
		{"release", hotkeys.Event{Shortcut: testShortcut, State: hotkeys.Released}, false, 0},
		{"foreign press", hotkeys.Event{Shortcut: other, State: hotkeys.Pressed}, false, 0},
		{"foreign release", hotkeys.Event{Shortcut: other, State: hotkeys.Released}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			win := &fakeWindow{visible: true}
			reg := &fakeRegistry{win: win}
			res, handled := newTestController(reg).HandleEvent(context.Background(), tt.ev)
			if handled != tt.handled {
				t.Fatalf("handled = %v, want %v", handled, tt.handled)
			}
			if len(win.calls) != tt.calls {
				t.Fatalf("calls = %v, want %d", win.calls, tt.calls)
			}
			if !handled {
				if res.Action != ActionNone {
					t.Fatalf("action = %v, want none", res.Action)
				}
				if len(reg.lookups) != 0 || len(reg.created) != 0 {
					t.Fatalf("ignored event touched the registry")
				}
			}
		})
	}
}

func TestNewControllerDefaultsLabel(t *testing.T) {
	reg := &fakeRegistry{}
	c := NewController(reg, WindowSpec{Title: "x"}, testShortcut, nil)
	c.Toggle(context.Background())
	if len(reg.lookups) != 1 || reg.lookups[0] != DefaultLabel {
		t.Fatalf("lookups = %v, want [%q]", reg.lookups, DefaultLabel)
	}
}

func TestActionString(t *testing.T) {
	names := map[Action]string{
		ActionNone:     "none",
		ActionCreate:   "create",
		ActionRestore:  "restore",
		ActionMinimize: "minimize",
		ActionShow:     "show",
	}
	for a, want := range names {
		if a.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(a), a.String(), want)
		}
	}
}
