package x11

import (
	"fmt"
	"log"
	"os"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// WindowClass is the WM_CLASS class of every window this package creates.
const WindowClass = "frogmemo"

// DocumentProperty holds the document a created window points at.
const DocumentProperty = "_FROGMEMO_DOCUMENT"

// WindowOptions describes a top-level window to create.
type WindowOptions struct {
	Label    string
	Title    string
	Document string
	Width    int
	Height   int
}

// CreateWindow creates, titles and maps a top-level window. The label is
// stored as the WM_CLASS instance so FindWindow can resolve it later.
func (c *Connection) CreateWindow(opts WindowOptions) (xproto.Window, error) {
	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate window id: %w", err)
	}

	x, y := c.placement(opts.Width, opts.Height)
	err = win.CreateChecked(c.Root, x, y, opts.Width, opts.Height,
		xproto.CwBackPixel|xproto.CwEventMask,
		0xffffff,
		xproto.EventMaskStructureNotify|xproto.EventMaskPropertyChange)
	if err != nil {
		return 0, fmt.Errorf("failed to create window %q: %w", opts.Label, err)
	}

	if err := c.describeWindow(win.Id, opts); err != nil {
		win.Destroy()
		return 0, err
	}

	label := opts.Label
	win.WMGracefulClose(func(w *xwindow.Window) {
		xevent.Detach(w.X, w.Id)
		c.forgetOwned(label, w.Id)
		w.Destroy()
		log.Printf("Window %q closed", label)
	})

	c.setOwned(label, win.Id)
	win.Map()
	return win.Id, nil
}

func (c *Connection) describeWindow(id xproto.Window, opts WindowOptions) error {
	title := opts.Title
	if title == "" {
		title = opts.Label
	}
	if err := ewmh.WmNameSet(c.XUtil, id, title); err != nil {
		return fmt.Errorf("failed to set _NET_WM_NAME: %w", err)
	}
	if err := icccm.WmNameSet(c.XUtil, id, title); err != nil {
		return fmt.Errorf("failed to set WM_NAME: %w", err)
	}
	if err := icccm.WmClassSet(c.XUtil, id, &icccm.WmClass{
		Instance: opts.Label,
		Class:    WindowClass,
	}); err != nil {
		return fmt.Errorf("failed to set WM_CLASS: %w", err)
	}
	if err := icccm.WmNormalHintsSet(c.XUtil, id, &icccm.NormalHints{
		Flags:  icccm.SizeHintPSize,
		Width:  uint(opts.Width),
		Height: uint(opts.Height),
	}); err != nil {
		return fmt.Errorf("failed to set WM_NORMAL_HINTS: %w", err)
	}
	if err := icccm.WmProtocolsSet(c.XUtil, id, []string{"WM_DELETE_WINDOW"}); err != nil {
		return fmt.Errorf("failed to set WM_PROTOCOLS: %w", err)
	}
	if err := ewmh.WmPidSet(c.XUtil, id, uint(os.Getpid())); err != nil {
		return fmt.Errorf("failed to set _NET_WM_PID: %w", err)
	}
	if opts.Document != "" {
		if err := xprop.ChangeProp(c.XUtil, id, 8, DocumentProperty, "UTF8_STRING", []byte(opts.Document)); err != nil {
			return fmt.Errorf("failed to set %s: %w", DocumentProperty, err)
		}
	}
	return nil
}
