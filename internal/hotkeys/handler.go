package hotkeys

import (
	"fmt"
	"log"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts grabbed on the X11 root window.
type Handler struct {
	xu   *xgbutil.XUtil
	root xproto.Window

	mu         sync.Mutex
	registered []Shortcut
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler. backend must expose its X11
// connection; otherwise Register fails.
func NewHandler(backend any) *Handler {
	var xu *xgbutil.XUtil
	var root xproto.Window
	if accessor, ok := backend.(x11Accessor); ok {
		xu = accessor.XUtil()
		root = accessor.RootWindow()
	}

	if xu != nil {
		ignoreModsOnce.Do(func() {
			configureIgnoreMods(xu)
		})
	}

	return &Handler{
		xu:   xu,
		root: root,
	}
}

// Register grabs shortcut and delivers both press and release notifications
// to callback. Callbacks run on the X event loop goroutine.
func (h *Handler) Register(shortcut Shortcut, callback func(Event)) error {
	if shortcut.IsZero() {
		return fmt.Errorf("shortcut is not set")
	}
	if callback == nil {
		return fmt.Errorf("callback is required")
	}
	if h.xu == nil {
		return fmt.Errorf("global hotkeys require an X11 connection")
	}

	seq := shortcut.KeySequence()
	err := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback(Event{Shortcut: shortcut, State: Pressed})
	}).Connect(h.xu, h.root, seq, true)
	if err != nil {
		return fmt.Errorf("failed to grab %s (%s): %w", shortcut, seq, err)
	}

	// The passive grab above already routes releases to the root window.
	err = keybind.KeyReleaseFun(func(xu *xgbutil.XUtil, ev xevent.KeyReleaseEvent) {
		callback(Event{Shortcut: shortcut, State: Released})
	}).Connect(h.xu, h.root, seq, false)
	if err != nil {
		return fmt.Errorf("failed to watch release of %s: %w", shortcut, err)
	}

	h.mu.Lock()
	h.registered = append(h.registered, shortcut)
	h.mu.Unlock()

	log.Printf("Hotkey registered: %s (%s)", shortcut, seq)
	return nil
}

// Registered returns the shortcuts grabbed so far.
func (h *Handler) Registered() []Shortcut {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Shortcut, len(h.registered))
	copy(out, h.registered)
	return out
}

// Close releases every key grab held on the root window.
func (h *Handler) Close() {
	if h.xu == nil {
		return
	}
	keybind.Detach(h.xu, h.root)
	h.mu.Lock()
	h.registered = nil
	h.mu.Unlock()
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	caps := uint16(xproto.ModMaskLock)
	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	xevent.IgnoreMods = lockMaskCombinations(caps, numLock, scrollLock)
}

// lockMaskCombinations returns every combination of the distinct, non-zero
// lock masks, including the empty mask.
func lockMaskCombinations(masks ...uint16) []uint16 {
	var base []uint16
	for _, m := range masks {
		if m == 0 {
			continue
		}
		dup := false
		for _, b := range base {
			if b == m {
				dup = true
				break
			}
		}
		if !dup {
			base = append(base, m)
		}
	}

	out := make([]uint16, 0, 1<<len(base))
	for subset := 0; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		out = append(out, mask)
	}
	return out
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
