// Package daemon ties the hotkey, the toggle controller and the settings
// store together and serves them to IPC clients.
package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/frogmemo/frogmemo/internal/hotkeys"
	"github.com/frogmemo/frogmemo/internal/ipc"
	"github.com/frogmemo/frogmemo/internal/store"
	"github.com/frogmemo/frogmemo/internal/toggle"
)

// DemoValue is written under the demo key at startup.
var DemoValue = map[string]int{"value": 5}

// Config holds the daemon's collaborators.
type Config struct {
	Controller *toggle.Controller
	Store      *store.Store
	DemoKey    string
	Logger     *slog.Logger
}

// Daemon serializes every toggle, whatever triggered it, and keeps counters
// for status reporting.
type Daemon struct {
	controller *toggle.Controller
	store      *store.Store
	demoKey    string
	logger     *slog.Logger
	started    time.Time

	// toggleMu is held for the whole observe-decide-act sequence.
	toggleMu sync.Mutex

	statsMu    sync.Mutex
	presses    int64
	toggles    int64
	lastAction toggle.Action
}

// New creates a daemon. Controller and Store are required.
func New(cfg Config) (*Daemon, error) {
	if cfg.Controller == nil {
		return nil, fmt.Errorf("daemon: controller is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("daemon: store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Daemon{
		controller: cfg.Controller,
		store:      cfg.Store,
		demoKey:    cfg.DemoKey,
		logger:     logger,
		started:    time.Now(),
	}, nil
}

// SeedDemo writes the demo value and reads it back. It is a no-op when no
// demo key is configured.
func (d *Daemon) SeedDemo() (json.RawMessage, error) {
	if d.demoKey == "" {
		return nil, nil
	}
	if err := d.store.Set(d.demoKey, DemoValue); err != nil {
		return nil, fmt.Errorf("failed to write demo key: %w", err)
	}
	raw, err := d.store.Get(d.demoKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read demo key: %w", err)
	}
	d.logger.Info("demo value", "key", d.demoKey, "value", string(raw))
	return raw, nil
}

// HandleHotkey is the hotkey callback. It runs on the X event loop.
func (d *Daemon) HandleHotkey(ev hotkeys.Event) {
	if ev.State == hotkeys.Pressed && ev.Shortcut == d.controller.Shortcut() {
		d.statsMu.Lock()
		d.presses++
		d.statsMu.Unlock()
	}

	d.toggleMu.Lock()
	res, handled := d.controller.HandleEvent(context.Background(), ev)
	d.toggleMu.Unlock()

	if handled {
		d.record(res)
	}
}

// Toggle runs one toggle on behalf of an IPC or MCP client.
func (d *Daemon) Toggle(ctx context.Context) ipc.ToggleData {
	d.toggleMu.Lock()
	res := d.controller.Toggle(ctx)
	d.toggleMu.Unlock()

	d.record(res)
	return toggleData(d.controller.Spec().Label, res)
}

func (d *Daemon) record(res toggle.Result) {
	d.statsMu.Lock()
	d.toggles++
	d.lastAction = res.Action
	d.statsMu.Unlock()
}

// Status reports counters and a fresh observation of the managed window.
func (d *Daemon) Status() ipc.StatusData {
	d.toggleMu.Lock()
	obs, _ := d.controller.Observe()
	d.toggleMu.Unlock()

	d.statsMu.Lock()
	presses, toggles, last := d.presses, d.toggles, d.lastAction
	d.statsMu.Unlock()

	status := ipc.StatusData{
		DaemonRunning: true,
		UptimeSeconds: int64(time.Since(d.started).Seconds()),
		Hotkey:        d.controller.Shortcut().String(),
		Presses:       presses,
		Toggles:       toggles,
		Window:        windowData(d.controller.Spec().Label, obs),
		StorePath:     d.store.Path(),
		StoreKeys:     d.store.Len(),
	}
	if toggles > 0 {
		status.LastAction = last.String()
	}
	return status
}

func (d *Daemon) StoreGet(key string) (json.RawMessage, error) {
	return d.store.Get(key)
}

func (d *Daemon) StoreSet(key string, value json.RawMessage) error {
	if err := d.store.SetRaw(key, value); err != nil {
		return err
	}
	d.logger.Debug("store key set", "key", key)
	return nil
}

func (d *Daemon) StoreDelete(key string) error {
	if err := d.store.Delete(key); err != nil {
		return err
	}
	d.logger.Debug("store key deleted", "key", key)
	return nil
}

func (d *Daemon) StoreList() []string {
	return d.store.Keys()
}

// WatchStore reloads the store when another process edits its file.
func (d *Daemon) WatchStore(ctx context.Context) error {
	return d.store.Watch(ctx, d.logger, func() {
		d.logger.Info("store changed on disk", "path", d.store.Path(), "keys", d.store.Len())
	})
}

func windowData(label string, obs toggle.Observation) ipc.WindowData {
	wd := ipc.WindowData{
		Label:     label,
		Exists:    obs.Exists,
		Visible:   obs.Visible.Value,
		Minimized: obs.Minimized.Value,
	}
	switch {
	case !obs.Visible.Known():
		wd.Error = obs.Visible.Err.Error()
	case !obs.Minimized.Known():
		wd.Error = obs.Minimized.Err.Error()
	}
	return wd
}

func toggleData(label string, res toggle.Result) ipc.ToggleData {
	data := ipc.ToggleData{
		Action: res.Action.String(),
		Before: windowData(label, res.Observation),
	}
	for _, step := range res.Steps {
		if step.Err != nil {
			data.Failures = append(data.Failures, fmt.Sprintf("%s: %v", step.Step, step.Err))
		}
	}
	return data
}

var _ ipc.Service = (*Daemon)(nil)
