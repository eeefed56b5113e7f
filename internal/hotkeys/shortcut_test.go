package hotkeys

import (
	"sort"
	"testing"
)

func TestParseShortcut(t *testing.T) {
	tests := []struct {
		spec       string
		normalized string
		sequence   string
	}{
		{"Alt+Backquote", "Alt+Backquote", "Mod1-grave"},
		{"alt+`", "Alt+Backquote", "Mod1-grave"},
		{"Control+N", "Control+N", "Control-n"},
		{"ctrl+KeyN", "Control+N", "Control-n"},
		{"shift+ctrl+space", "Control+Shift+Space", "Control-Shift-space"},
		{"Super+Alt+Enter", "Alt+Super+Enter", "Mod1-Mod4-Return"},
		{" cmd + F12 ", "Super+F12", "Mod4-F12"},
		{"Control+1", "Control+Digit1", "Control-1"},
		{"PageDown", "PageDown", "Next"},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			s, err := ParseShortcut(tt.spec)
			if err != nil {
				t.Fatalf("ParseShortcut(%q): %v", tt.spec, err)
			}
			if s.String() != tt.normalized {
				t.Errorf("String() = %q, want %q", s.String(), tt.normalized)
			}
			if s.KeySequence() != tt.sequence {
				t.Errorf("KeySequence() = %q, want %q", s.KeySequence(), tt.sequence)
			}
		})
	}
}

func TestParseShortcut_Errors(t *testing.T) {
	tests := []struct {
		name string
		spec string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"modifiers only", "Alt+Shift"},
		{"two keys", "Alt+A+B"},
		{"unknown key", "Alt+Banana"},
		{"empty component", "Alt++A"},
		{"trailing plus", "Alt+"},
		{"duplicate modifier", "ctrl+control+A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseShortcut(tt.spec); err == nil {
				t.Fatalf("ParseShortcut(%q) expected error", tt.spec)
			}
		})
	}
}

func TestShortcutEquality(t *testing.T) {
	a := MustParseShortcut("Alt+Backquote")
	b := MustParseShortcut("mod1+grave")
	if a != b {
		t.Fatalf("expected %v == %v", a, b)
	}
	c := MustParseShortcut("Control+N")
	if a == c {
		t.Fatalf("expected %v != %v", a, c)
	}
	var zero Shortcut
	if !zero.IsZero() || a.IsZero() {
		t.Fatalf("IsZero mismatch")
	}
}

func TestMustParseShortcutPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	MustParseShortcut("nope+nope")
}

func TestStateString(t *testing.T) {
	if Pressed.String() != "pressed" || Released.String() != "released" {
		t.Fatalf("unexpected state names %q %q", Pressed, Released)
	}
}

func TestLockMaskCombinations(t *testing.T) {
	got := lockMaskCombinations(2, 16, 0, 16)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	want := []uint16{0, 2, 16, 18}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestRegisterWithoutX11(t *testing.T) {
	h := NewHandler(nil)
	err := h.Register(MustParseShortcut("Alt+Backquote"), func(Event) {})
	if err == nil {
		t.Fatalf("expected error without an X11 connection")
	}
	if len(h.Registered()) != 0 {
		t.Fatalf("expected nothing registered")
	}
}
