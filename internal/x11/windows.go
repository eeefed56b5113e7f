package x11

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// VisibilityState is the observed visibility of a top-level window.
type VisibilityState struct {
	Visible   bool
	Minimized bool
}

// FindWindow returns the window this process created under label. Windows
// tracked by this connection are checked first; the client list is only
// searched for windows carrying our WM_CLASS and _NET_WM_PID.
func (c *Connection) FindWindow(label string) (xproto.Window, bool, error) {
	if win, ok := c.ownedWindow(label); ok {
		if c.windowAlive(win) {
			return win, true, nil
		}
		c.forgetOwned(label, win)
	}

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return 0, false, fmt.Errorf("failed to read client list: %w", err)
	}
	self := uint(os.Getpid())
	for _, win := range clients {
		class, err := icccm.WmClassGet(c.XUtil, win)
		if err != nil || class == nil {
			continue
		}
		pid, err := ewmh.WmPidGet(c.XUtil, win)
		if err != nil {
			continue
		}
		if isOwnClient(class.Instance, class.Class, pid, label, self) {
			return win, true, nil
		}
	}
	return 0, false, nil
}

// isOwnClient reports whether a client-list entry is the window label
// created by process self.
func isOwnClient(instance, class string, pid uint, label string, self uint) bool {
	return strings.TrimSpace(instance) == label && class == WindowClass && pid == self
}

// WindowState queries ICCCM, EWMH and core map state for windowID.
func (c *Connection) WindowState(windowID xproto.Window) (VisibilityState, error) {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	if err != nil {
		return VisibilityState{}, fmt.Errorf("failed to query window 0x%x: %w", uint32(windowID), err)
	}

	wmState := uint(icccm.StateWithdrawn)
	hasWMState := false
	if st, err := icccm.WmStateGet(c.XUtil, windowID); err == nil && st != nil {
		wmState = st.State
		hasWMState = true
	}

	netStates, _ := ewmh.WmStateGet(c.XUtil, windowID)

	return classifyState(attrs.MapState, wmState, hasWMState, netStates), nil
}

// classifyState folds the different X11 state sources into toolkit-style
// flags: an iconified window still counts as visible.
func classifyState(mapState byte, wmState uint, hasWMState bool, netStates []string) VisibilityState {
	hidden := false
	for _, s := range netStates {
		if s == "_NET_WM_STATE_HIDDEN" {
			hidden = true
			break
		}
	}

	minimized := hidden || (hasWMState && wmState == icccm.StateIconic)
	var visible bool
	switch {
	case hasWMState:
		visible = wmState == icccm.StateNormal || wmState == icccm.StateIconic
	default:
		visible = mapState == xproto.MapStateViewable
	}
	if minimized {
		visible = true
	}
	return VisibilityState{Visible: visible, Minimized: minimized}
}

// Show maps the window.
func (c *Connection) Show(windowID xproto.Window) error {
	return xproto.MapWindowChecked(c.XUtil.Conn(), windowID).Check()
}

// Unminimize removes _NET_WM_STATE_HIDDEN and maps an iconic window so the
// window manager moves it back to NormalState.
func (c *Connection) Unminimize(windowID xproto.Window) error {
	st, err := c.WindowState(windowID)
	if err != nil {
		return err
	}
	if !st.Minimized {
		return nil
	}
	// _NET_WM_STATE action 0 = remove.
	if err := c.sendRootMessage(windowID, "_NET_WM_STATE", 0, uint32(c.atom("_NET_WM_STATE_HIDDEN")), 0, 1); err != nil {
		return err
	}
	return c.Show(windowID)
}

// Minimize iconifies a window via WM_CHANGE_STATE.
func (c *Connection) Minimize(windowID xproto.Window) error {
	const iconicState = 3
	return c.sendRootMessage(windowID, "WM_CHANGE_STATE", iconicState)
}

// FocusWindow activates and raises a window using _NET_ACTIVE_WINDOW.
// The message is built manually because the xgbutil ewmh request helpers
// panic on this library version.
func (c *Connection) FocusWindow(windowID xproto.Window) error {
	const sourceIndication = 2 // pager/direct action
	return c.sendRootMessage(windowID, "_NET_ACTIVE_WINDOW", sourceIndication)
}

func (c *Connection) sendRootMessage(windowID xproto.Window, messageType string, data ...uint32) error {
	reply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len(messageType)), messageType).Reply()
	if err != nil {
		return fmt.Errorf("failed to intern %s: %w", messageType, err)
	}

	payload := make([]uint32, 5)
	copy(payload, data)
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   reply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New(payload),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

func (c *Connection) atom(name string) xproto.Atom {
	reply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0
	}
	return reply.Atom
}

func (c *Connection) windowAlive(windowID xproto.Window) bool {
	_, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	return err == nil
}
