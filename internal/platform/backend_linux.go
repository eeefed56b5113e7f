//go:build linux

package platform

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/frogmemo/frogmemo/internal/x11"
)

// LinuxBackend wraps an existing X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// FindWindow returns the top-level window whose WM_CLASS instance is label.
func (b *LinuxBackend) FindWindow(label string) (WindowID, bool, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, false, err
	}
	win, ok, err := conn.FindWindow(label)
	return WindowID(win), ok, err
}

// IsVisible reports whether the window is shown (normal or iconic).
func (b *LinuxBackend) IsVisible(windowID WindowID) (bool, error) {
	st, err := b.state(windowID)
	return st.Visible, err
}

// IsMinimized reports whether the window is iconified.
func (b *LinuxBackend) IsMinimized(windowID WindowID) (bool, error) {
	st, err := b.state(windowID)
	return st.Minimized, err
}

// Unminimize clears the iconic state and maps the window.
func (b *LinuxBackend) Unminimize(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.Unminimize(xproto.Window(windowID))
}

// Show maps the window.
func (b *LinuxBackend) Show(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.Show(xproto.Window(windowID))
}

// Focus activates and raises the window via _NET_ACTIVE_WINDOW.
func (b *LinuxBackend) Focus(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.FocusWindow(xproto.Window(windowID))
}

// Minimize iconifies the window via WM_CHANGE_STATE.
func (b *LinuxBackend) Minimize(windowID WindowID) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.Minimize(xproto.Window(windowID))
}

// CreateWindow builds and maps a new top-level window centered on the
// monitor under the pointer.
func (b *LinuxBackend) CreateWindow(opts CreateOptions) (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}
	if opts.Label == "" {
		return 0, fmt.Errorf("window label is required")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return 0, fmt.Errorf("invalid window size %dx%d", opts.Width, opts.Height)
	}
	win, err := conn.CreateWindow(x11.WindowOptions{
		Label:    opts.Label,
		Title:    opts.Title,
		Document: opts.Document,
		Width:    opts.Width,
		Height:   opts.Height,
	})
	if err != nil {
		return 0, err
	}
	return WindowID(win), nil
}

func (b *LinuxBackend) state(windowID WindowID) (x11.VisibilityState, error) {
	conn, err := b.connection()
	if err != nil {
		return x11.VisibilityState{}, err
	}
	st, err := conn.WindowState(xproto.Window(windowID))
	if err != nil {
		return x11.VisibilityState{}, err
	}
	return x11.VisibilityState{Visible: st.Visible, Minimized: st.Minimized}, nil
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}
