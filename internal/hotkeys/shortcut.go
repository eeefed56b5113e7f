package hotkeys

import (
	"fmt"
	"strings"
)

// Modifier is a bitmask of shortcut modifier keys.
type Modifier uint8

const (
	ModControl Modifier = 1 << iota
	ModAlt
	ModShift
	ModSuper
)

// State is the phase of a hotkey notification.
type State int

const (
	Pressed State = iota
	Released
)

func (s State) String() string {
	switch s {
	case Pressed:
		return "pressed"
	case Released:
		return "released"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Event is delivered to a registered callback whenever the hotkey fires.
type Event struct {
	Shortcut Shortcut
	State    State
}

// Shortcut is a parsed global hotkey. Construct only via ParseShortcut;
// values are comparable with ==.
type Shortcut struct {
	mods       Modifier
	key        string // canonical key code name, e.g. "Backquote"
	keysym     string // X11 keysym name, e.g. "grave"
	normalized string
}

// IsZero reports whether s was never parsed.
func (s Shortcut) IsZero() bool { return s.key == "" }

// String returns the normalized binding, e.g. "Alt+Backquote".
func (s Shortcut) String() string { return s.normalized }

// KeySequence returns the xgbutil keybind form, e.g. "Mod1-grave".
func (s Shortcut) KeySequence() string {
	parts := make([]string, 0, 5)
	if s.mods&ModControl != 0 {
		parts = append(parts, "Control")
	}
	if s.mods&ModAlt != 0 {
		parts = append(parts, "Mod1")
	}
	if s.mods&ModShift != 0 {
		parts = append(parts, "Shift")
	}
	if s.mods&ModSuper != 0 {
		parts = append(parts, "Mod4")
	}
	parts = append(parts, s.keysym)
	return strings.Join(parts, "-")
}

var modifierNames = map[string]Modifier{
	"ctrl":    ModControl,
	"control": ModControl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"mod1":    ModAlt,
	"shift":   ModShift,
	"super":   ModSuper,
	"meta":    ModSuper,
	"cmd":     ModSuper,
	"command": ModSuper,
	"win":     ModSuper,
	"mod4":    ModSuper,
}

type keyDef struct {
	name   string
	keysym string
}

// keyTable maps lowercased aliases to canonical key code names and keysyms.
var keyTable = map[string]keyDef{}

func init() {
	add := func(name, keysym string, aliases ...string) {
		def := keyDef{name: name, keysym: keysym}
		keyTable[strings.ToLower(name)] = def
		for _, a := range aliases {
			keyTable[strings.ToLower(a)] = def
		}
	}

	for c := 'A'; c <= 'Z'; c++ {
		letter := string(c)
		add(letter, strings.ToLower(letter), "Key"+letter)
	}
	for d := '0'; d <= '9'; d++ {
		digit := string(d)
		add("Digit"+digit, digit, digit)
	}
	for i := 1; i <= 24; i++ {
		f := fmt.Sprintf("F%d", i)
		add(f, f)
	}

	add("Backquote", "grave", "`", "grave")
	add("Minus", "minus", "-")
	add("Equal", "equal", "=")
	add("BracketLeft", "bracketleft", "[")
	add("BracketRight", "bracketright", "]")
	add("Backslash", "backslash", "\\")
	add("Semicolon", "semicolon", ";")
	add("Quote", "apostrophe", "'", "apostrophe")
	add("Comma", "comma", ",")
	add("Period", "period", ".")
	add("Slash", "slash", "/")
	add("Space", "space")
	add("Enter", "Return", "Return")
	add("Tab", "Tab")
	add("Escape", "Escape", "Esc")
	add("Backspace", "BackSpace")
	add("Delete", "Delete", "Del")
	add("Insert", "Insert")
	add("Home", "Home")
	add("End", "End")
	add("PageUp", "Prior", "Prior")
	add("PageDown", "Next", "Next")
	add("ArrowUp", "Up", "Up")
	add("ArrowDown", "Down", "Down")
	add("ArrowLeft", "Left", "Left")
	add("ArrowRight", "Right", "Right")
}

// ParseShortcut parses a binding such as "Alt+Backquote", "Control+N" or
// "ctrl+shift+space". Exactly one non-modifier key is required.
func ParseShortcut(spec string) (Shortcut, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Shortcut{}, fmt.Errorf("shortcut is empty")
	}

	tokens := strings.Split(spec, "+")
	var (
		mods Modifier
		key  keyDef
		have bool
	)
	for _, tok := range tokens {
		lower := strings.ToLower(strings.TrimSpace(tok))
		if lower == "" {
			return Shortcut{}, fmt.Errorf("invalid shortcut %q: empty component", spec)
		}
		if m, ok := modifierNames[lower]; ok {
			if mods&m != 0 {
				return Shortcut{}, fmt.Errorf("invalid shortcut %q: duplicate modifier %q", spec, tok)
			}
			mods |= m
			continue
		}
		def, ok := keyTable[lower]
		if !ok {
			return Shortcut{}, fmt.Errorf("invalid shortcut %q: unknown key %q", spec, tok)
		}
		if have {
			return Shortcut{}, fmt.Errorf("invalid shortcut %q: more than one key", spec)
		}
		key = def
		have = true
	}
	if !have {
		return Shortcut{}, fmt.Errorf("invalid shortcut %q: missing key", spec)
	}

	s := Shortcut{mods: mods, key: key.name, keysym: key.keysym}
	s.normalized = normalize(mods, key.name)
	return s, nil
}

// MustParseShortcut is like ParseShortcut but panics on error.
func MustParseShortcut(spec string) Shortcut {
	s, err := ParseShortcut(spec)
	if err != nil {
		panic(err)
	}
	return s
}

func normalize(mods Modifier, key string) string {
	parts := make([]string, 0, 5)
	if mods&ModControl != 0 {
		parts = append(parts, "Control")
	}
	if mods&ModAlt != 0 {
		parts = append(parts, "Alt")
	}
	if mods&ModShift != 0 {
		parts = append(parts, "Shift")
	}
	if mods&ModSuper != 0 {
		parts = append(parts, "Super")
	}
	parts = append(parts, key)
	return strings.Join(parts, "+")
}
