package toggle

import (
	"context"
	"log/slog"

	"github.com/frogmemo/frogmemo/internal/hotkeys"
)

// DefaultLabel is the identifier of the managed window.
const DefaultLabel = "main"

// WindowSpec describes the window built when none exists.
type WindowSpec struct {
	Label    string
	Title    string
	Document string
	Width    int
	Height   int
}

// Window is a live handle to an existing top-level window.
type Window interface {
	IsVisible() (bool, error)
	IsMinimized() (bool, error)
	Unminimize() error
	Show() error
	SetFocus() error
	Minimize() error
}

// Registry resolves window identifiers and creates windows.
type Registry interface {
	Window(label string) (Window, bool)
	Create(spec WindowSpec) error
}

// Step names a single window-manager command.
type Step string

const (
	StepCreate     Step = "create"
	StepUnminimize Step = "unminimize"
	StepShow       Step = "show"
	StepFocus      Step = "set_focus"
	StepMinimize   Step = "minimize"
)

// StepResult records the outcome of one command. Err is informational only.
type StepResult struct {
	Step Step
	Err  error
}

// Result describes what one press did.
type Result struct {
	Observation Observation
	Action      Action
	Steps       []StepResult
}

// Failed reports whether any command in the result failed.
func (r Result) Failed() bool {
	for _, s := range r.Steps {
		if s.Err != nil {
			return true
		}
	}
	return false
}

// Controller applies Decide to a registry. It keeps no toggle state between
// presses; every call re-queries the window.
type Controller struct {
	registry Registry
	spec     WindowSpec
	shortcut hotkeys.Shortcut
	logger   *slog.Logger
}

// NewController creates a controller that reacts to shortcut and manages the
// window described by spec. A nil logger discards output.
func NewController(registry Registry, spec WindowSpec, shortcut hotkeys.Shortcut, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if spec.Label == "" {
		spec.Label = DefaultLabel
	}
	return &Controller{
		registry: registry,
		spec:     spec,
		shortcut: shortcut,
		logger:   logger,
	}
}

// Shortcut returns the hotkey this controller responds to.
func (c *Controller) Shortcut() hotkeys.Shortcut { return c.shortcut }

// Spec returns the window creation parameters.
func (c *Controller) Spec() WindowSpec { return c.spec }

// HandleEvent runs one toggle for a press of the configured shortcut. Release
// events and other shortcuts are ignored and report false.
func (c *Controller) HandleEvent(ctx context.Context, ev hotkeys.Event) (Result, bool) {
	if ev.Shortcut != c.shortcut {
		c.logger.Debug("ignoring foreign hotkey", "shortcut", ev.Shortcut.String())
		return Result{Action: ActionNone}, false
	}
	if ev.State != hotkeys.Pressed {
		return Result{Action: ActionNone}, false
	}
	return c.Toggle(ctx), true
}

// Observe queries the current state of the managed window.
func (c *Controller) Observe() (Observation, Window) {
	win, ok := c.registry.Window(c.spec.Label)
	if !ok || win == nil {
		return Observation{}, nil
	}
	visible, verr := win.IsVisible()
	minimized, merr := win.IsMinimized()
	return Observation{
		Exists:    true,
		Visible:   Flag{Value: visible, Err: verr},
		Minimized: Flag{Value: minimized, Err: merr},
	}, win
}

// Toggle observes the window, picks an action and applies it. Command
// failures never abort the branch; they are logged and recorded.
func (c *Controller) Toggle(ctx context.Context) Result {
	obs, win := c.Observe()
	action := Decide(obs)
	res := Result{Observation: obs, Action: action}

	switch action {
	case ActionCreate:
		res.Steps = append(res.Steps, c.run(ctx, StepCreate, func() error {
			return c.registry.Create(c.spec)
		}))
	case ActionRestore, ActionShow:
		res.Steps = append(res.Steps,
			c.run(ctx, StepUnminimize, win.Unminimize),
			c.run(ctx, StepShow, win.Show),
			c.run(ctx, StepFocus, win.SetFocus),
		)
	case ActionMinimize:
		res.Steps = append(res.Steps, c.run(ctx, StepMinimize, win.Minimize))
	}

	c.logger.Info("window toggled",
		"label", c.spec.Label,
		"action", action.String(),
		"failed", res.Failed(),
	)
	return res
}

func (c *Controller) run(ctx context.Context, step Step, fn func() error) StepResult {
	err := fn()
	if err != nil {
		c.logger.WarnContext(ctx, "window command failed",
			"label", c.spec.Label,
			"step", string(step),
			"error", err,
		)
	}
	return StepResult{Step: step, Err: err}
}
