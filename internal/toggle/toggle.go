// Package toggle decides and applies the window visibility transition that a
// single hotkey press should cause.
package toggle

import "fmt"

// Action is the window-manager transition chosen for one press.
type Action int

const (
	// ActionNone is returned for events that must not touch the window.
	ActionNone Action = iota
	// ActionCreate builds the window because none is registered.
	ActionCreate
	// ActionRestore unminimizes, shows and focuses a minimized window.
	ActionRestore
	// ActionMinimize minimizes a visible, non-minimized window.
	ActionMinimize
	// ActionShow unminimizes (best effort), shows and focuses the window.
	ActionShow
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionCreate:
		return "create"
	case ActionRestore:
		return "restore"
	case ActionMinimize:
		return "minimize"
	case ActionShow:
		return "show"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Flag is the outcome of a fallible boolean window query.
type Flag struct {
	Value bool
	Err   error
}

// Known reports whether the query succeeded.
func (f Flag) Known() bool { return f.Err == nil }

// Is reports whether the query succeeded and returned v.
func (f Flag) Is(v bool) bool { return f.Err == nil && f.Value == v }

// Observation is a live snapshot of the target window taken for one press.
type Observation struct {
	Exists    bool
	Visible   Flag
	Minimized Flag
}

// Decide maps an observation to exactly one action. Rules are evaluated in
// order and the first match wins:
//
//	missing window                    -> create
//	visible and minimized             -> restore
//	visible and not minimized         -> minimize
//	anything else (incl. query error) -> show
func Decide(obs Observation) Action {
	switch {
	case !obs.Exists:
		return ActionCreate
	case obs.Visible.Is(true) && obs.Minimized.Is(true):
		return ActionRestore
	case obs.Visible.Is(true) && obs.Minimized.Is(false):
		return ActionMinimize
	default:
		// A failed query is treated the same as visible=false.
		return ActionShow
	}
}
