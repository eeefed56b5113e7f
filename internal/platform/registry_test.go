package platform

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/frogmemo/frogmemo/internal/hotkeys"
	"github.com/frogmemo/frogmemo/internal/toggle"
)

type memState struct {
	Visible   bool
	Minimized bool
}

// memBackend is an in-memory window system that applies commands to its
// own state.
type memBackend struct {
	windows map[string]WindowID
	states  map[WindowID]*memState
	nextID  WindowID
	findErr error
	failOn  map[string]error
	calls   []string
	created []CreateOptions
}

func newMemBackend() *memBackend {
	return &memBackend{
		windows: map[string]WindowID{},
		states:  map[WindowID]*memState{},
		nextID:  100,
		failOn:  map[string]error{},
	}
}

func (b *memBackend) FindWindow(label string) (WindowID, bool, error) {
	if b.findErr != nil {
		return 0, false, b.findErr
	}
	id, ok := b.windows[label]
	return id, ok, nil
}

func (b *memBackend) IsVisible(id WindowID) (bool, error) {
	if err := b.failOn["is_visible"]; err != nil {
		return false, err
	}
	return b.states[id].Visible, nil
}

func (b *memBackend) IsMinimized(id WindowID) (bool, error) {
	if err := b.failOn["is_minimized"]; err != nil {
		return false, err
	}
	return b.states[id].Minimized, nil
}

func (b *memBackend) do(name string, fn func()) error {
	b.calls = append(b.calls, name)
	if err := b.failOn[name]; err != nil {
		return err
	}
	fn()
	return nil
}

func (b *memBackend) Unminimize(id WindowID) error {
	return b.do("unminimize", func() { b.states[id].Minimized = false })
}

func (b *memBackend) Show(id WindowID) error {
	return b.do("show", func() { b.states[id].Visible = true })
}

func (b *memBackend) Focus(id WindowID) error {
	return b.do("focus", func() {})
}

func (b *memBackend) Minimize(id WindowID) error {
	return b.do("minimize", func() { b.states[id].Minimized = true })
}

func (b *memBackend) CreateWindow(opts CreateOptions) (WindowID, error) {
	b.created = append(b.created, opts)
	if err := b.do("create", func() {}); err != nil {
		return 0, err
	}
	b.nextID++
	b.windows[opts.Label] = b.nextID
	b.states[b.nextID] = &memState{Visible: true}
	return b.nextID, nil
}

func newController(b Backend) *toggle.Controller {
	spec := toggle.WindowSpec{Label: "main", Title: "frog-memo", Document: "index.html", Width: 800, Height: 600}
	return toggle.NewController(NewRegistry(b, nil), spec, hotkeys.MustParseShortcut("Alt+Backquote"), nil)
}

func TestRegistry_FullCycle(t *testing.T) {
	b := newMemBackend()
	c := newController(b)
	ctx := context.Background()

	var actions []toggle.Action
	for i := 0; i < 4; i++ {
		actions = append(actions, c.Toggle(ctx).Action)
	}
	want := []toggle.Action{toggle.ActionCreate, toggle.ActionMinimize, toggle.ActionRestore, toggle.ActionMinimize}
	if !reflect.DeepEqual(actions, want) {
		t.Fatalf("actions = %v, want %v", actions, want)
	}

	wantCalls := []string{"create", "minimize", "unminimize", "show", "focus", "minimize"}
	if !reflect.DeepEqual(b.calls, wantCalls) {
		t.Fatalf("calls = %v, want %v", b.calls, wantCalls)
	}

	if len(b.created) != 1 {
		t.Fatalf("expected one window creation, got %d", len(b.created))
	}
	got := b.created[0]
	if got.Label != "main" || got.Title != "frog-memo" || got.Document != "index.html" || got.Width != 800 || got.Height != 600 {
		t.Fatalf("unexpected create options %+v", got)
	}
}

func TestRegistry_LookupErrorTreatedAsMissing(t *testing.T) {
	b := newMemBackend()
	b.findErr = errors.New("client list unavailable")
	reg := NewRegistry(b, nil)
	if _, ok := reg.Window("main"); ok {
		t.Fatalf("expected lookup failure to report a missing window")
	}
}

func TestRegistry_QueryFailureFallsBackToShow(t *testing.T) {
	b := newMemBackend()
	b.windows["main"] = 1
	b.states[1] = &memState{Visible: true}
	b.failOn["is_minimized"] = errors.New("bad atom")

	res := newController(b).Toggle(context.Background())
	if res.Action != toggle.ActionShow {
		t.Fatalf("action = %v, want show", res.Action)
	}
	if !reflect.DeepEqual(b.calls, []string{"unminimize", "show", "focus"}) {
		t.Fatalf("calls = %v", b.calls)
	}
}

func TestHandleID(t *testing.T) {
	b := newMemBackend()
	b.windows["main"] = 42
	b.states[42] = &memState{}
	win, ok := NewRegistry(b, nil).Window("main")
	if !ok {
		t.Fatalf("expected window")
	}
	if win.(*Handle).ID() != 42 {
		t.Fatalf("ID() = %d, want 42", win.(*Handle).ID())
	}
}
