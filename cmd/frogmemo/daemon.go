package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/frogmemo/frogmemo/internal/config"
	"github.com/frogmemo/frogmemo/internal/daemon"
	"github.com/frogmemo/frogmemo/internal/hotkeys"
	"github.com/frogmemo/frogmemo/internal/ipc"
	"github.com/frogmemo/frogmemo/internal/platform"
	"github.com/frogmemo/frogmemo/internal/store"
	"github.com/frogmemo/frogmemo/internal/toggle"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path (default: ~/.config/frogmemo/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: frogmemo daemon [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Grab the global hotkey and serve IPC until interrupted.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	cfg, err := loadConfig(*path)
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}
	log.Printf("Configuration loaded (hotkey: %s, store: %s)", cfg.Hotkey, cfg.StoreFile)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	if err := serveDaemon(cfg, logger); err != nil {
		log.Printf("%v", err)
		return 1
	}
	return 0
}

// serveDaemon runs until SIGINT/SIGTERM, which exit the process. Store, display and hotkey failures
// are fatal at startup.
func serveDaemon(cfg *config.Config, logger *slog.Logger) error {
	applyDisplayEnv(cfg)

	st, err := store.Open(cfg.StoreFile)
	if err != nil {
		return fmt.Errorf("failed to open settings store: %w", err)
	}

	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		return fmt.Errorf("failed to connect to display: %w", err)
	}
	defer backend.Disconnect()

	shortcut, err := cfg.Shortcut()
	if err != nil {
		return fmt.Errorf("invalid hotkey: %w", err)
	}

	registry := platform.NewRegistry(backend, logger)
	controller := toggle.NewController(registry, cfg.WindowSpec(), shortcut, logger)
	d, err := daemon.New(daemon.Config{
		Controller: controller,
		Store:      st,
		DemoKey:    cfg.DemoKey,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	if _, err := d.SeedDemo(); err != nil {
		return err
	}

	hotkeyHandler := hotkeys.NewHandler(backend)
	if err := hotkeyHandler.Register(shortcut, d.HandleHotkey); err != nil {
		return fmt.Errorf("failed to register hotkey: %w", err)
	}
	defer hotkeyHandler.Close()
	for _, sc := range hotkeyHandler.Registered() {
		log.Printf("Hotkey registered: %s (%s)", sc, sc.KeySequence())
	}

	ipcServer, err := ipc.NewServer(d)
	if err != nil {
		return fmt.Errorf("failed to create IPC server: %w", err)
	}
	if err := ipcServer.Start(); err != nil {
		return fmt.Errorf("failed to start IPC server: %w", err)
	}
	defer ipcServer.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.WatchStore {
		if err := d.WatchStore(ctx); err != nil {
			log.Printf("Warning: store watching disabled: %v", err)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		if !waitForStop(ctx, sigCh, func() { reloadStore(st) }) {
			return
		}
		log.Println("Shutting down frogmemo daemon...")
		shutdown(cancel, ipcServer, hotkeyHandler)
		os.Exit(0)
	}()

	log.Println("frogmemo daemon started successfully")
	log.Println("Entering event loop...")
	backend.EventLoop()
	return nil
}

// waitForStop handles signals until SIGINT or SIGTERM arrives, returning
// true, or ctx ends, returning false. SIGHUP calls reload.
func waitForStop(ctx context.Context, sigCh <-chan os.Signal, reload func()) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				reload()
			case os.Interrupt, syscall.SIGTERM:
				return true
			}
		}
	}
}

func reloadStore(st *store.Store) {
	log.Println("Received SIGHUP, reloading settings store...")
	if err := st.Reload(); err != nil {
		log.Printf("Store reload failed: %v", err)
		return
	}
	log.Printf("Store reloaded (%d keys)", st.Len())
}

// shutdown releases what serveDaemon holds. The X event loop blocks in
// WaitForEvent until the next event arrives, so the caller exits the process
// instead of waiting for EventLoop to return.
func shutdown(cancel context.CancelFunc, srv *ipc.Server, keys *hotkeys.Handler) {
	cancel()
	if srv != nil {
		srv.Stop()
	}
	if keys != nil {
		keys.Close()
	}
}

// applyDisplayEnv lets the config pin the X display, e.g. when the daemon
// is started from a systemd user unit.
func applyDisplayEnv(cfg *config.Config) {
	if cfg.Display != "" {
		os.Setenv("DISPLAY", cfg.Display)
	}
	if cfg.XAuthority != "" {
		os.Setenv("XAUTHORITY", cfg.XAuthority)
	}
}
