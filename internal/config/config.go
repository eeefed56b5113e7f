package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/frogmemo/frogmemo/internal/hotkeys"
	"github.com/frogmemo/frogmemo/internal/toggle"
)

const (
	DefaultHotkey        = "Alt+Backquote"
	DefaultWindowTitle   = "frog-memo"
	DefaultDocument      = "index.html"
	DefaultWindowWidth   = 800
	DefaultWindowHeight  = 600
	DefaultStoreFileName = "store.json"
	DefaultDemoKey       = "demo"
)

// WindowConfig describes the managed window and how it is created.
type WindowConfig struct {
	Label    string `yaml:"label"`
	Title    string `yaml:"title"`
	Document string `yaml:"document"`
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
}

// Config holds the application configuration.
type Config struct {
	Hotkey     string       `yaml:"hotkey"`
	LogLevel   string       `yaml:"log_level"`
	StoreFile  string       `yaml:"store_file"`
	WatchStore bool         `yaml:"watch_store"`
	DemoKey    string       `yaml:"demo_key"`
	Display    string       `yaml:"display,omitempty"`
	XAuthority string       `yaml:"xauthority,omitempty"`
	Window     WindowConfig `yaml:"window"`
}

// ValidationError reports an invalid configuration value at a YAML path.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func DefaultConfig() *Config {
	return &Config{
		Hotkey:     DefaultHotkey,
		LogLevel:   "info",
		StoreFile:  defaultStorePath(),
		WatchStore: true,
		DemoKey:    DefaultDemoKey,
		Window: WindowConfig{
			Label:    toggle.DefaultLabel,
			Title:    DefaultWindowTitle,
			Document: DefaultDocument,
			Width:    DefaultWindowWidth,
			Height:   DefaultWindowHeight,
		},
	}
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Hotkey) == "" {
		return &ValidationError{Path: "hotkey", Err: fmt.Errorf("hotkey is required")}
	}
	if _, err := hotkeys.ParseShortcut(c.Hotkey); err != nil {
		return &ValidationError{Path: "hotkey", Err: err}
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return &ValidationError{Path: "log_level", Err: err}
	}
	if strings.TrimSpace(c.StoreFile) == "" {
		return &ValidationError{Path: "store_file", Err: fmt.Errorf("store_file is required")}
	}
	if strings.TrimSpace(c.Window.Label) == "" {
		return &ValidationError{Path: "window.label", Err: fmt.Errorf("label is required")}
	}
	if c.Window.Width <= 0 {
		return &ValidationError{Path: "window.width", Err: fmt.Errorf("width must be > 0")}
	}
	if c.Window.Height <= 0 {
		return &ValidationError{Path: "window.height", Err: fmt.Errorf("height must be > 0")}
	}
	return nil
}

// Shortcut returns the parsed hotkey. Call Validate first.
func (c *Config) Shortcut() (hotkeys.Shortcut, error) {
	return hotkeys.ParseShortcut(c.Hotkey)
}

// WindowSpec returns the creation parameters for the managed window.
func (c *Config) WindowSpec() toggle.WindowSpec {
	return toggle.WindowSpec{
		Label:    c.Window.Label,
		Title:    c.Window.Title,
		Document: c.Window.Document,
		Width:    c.Window.Width,
		Height:   c.Window.Height,
	}
}

// SlogLevel returns the configured level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	lvl, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// ParseLogLevel maps a config log level name to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log_level must be one of: debug, info, warning, error")
	}
}
