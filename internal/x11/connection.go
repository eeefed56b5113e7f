package x11

import (
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	// owned tracks windows created through this connection by label so they
	// can be found before the window manager lists them.
	mu    sync.Mutex
	owned map[string]xproto.Window
}

// NewConnection establishes a connection to the X11 server and initializes required extensions
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	// Initialize keybind module (required for global hotkeys)
	keybind.Initialize(xu)

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
		owned: make(map[string]xproto.Window),
	}, nil
}

// EventLoop starts the main X11 event loop (blocking)
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}

func (c *Connection) ownedWindow(label string) (xproto.Window, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	win, ok := c.owned[label]
	return win, ok
}

func (c *Connection) setOwned(label string, win xproto.Window) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.owned[label] = win
}

func (c *Connection) forgetOwned(label string, win xproto.Window) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.owned[label] == win {
		delete(c.owned, label)
	}
}
