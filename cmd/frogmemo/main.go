package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/frogmemo/frogmemo/internal/config"
	"github.com/frogmemo/frogmemo/internal/ipc"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "toggle":
		os.Exit(runToggle(os.Args[2:]))
	case "store":
		os.Exit(runStore(os.Args[2:]))
	case "memo":
		os.Exit(runMemo(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: frogmemo <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the frogmemo daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon and window status")
	fmt.Fprintln(w, "  toggle              Toggle the window, as the hotkey does")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  store list          List settings keys")
	fmt.Fprintln(w, "  store get           Print a settings value")
	fmt.Fprintln(w, "  store set           Write a settings value")
	fmt.Fprintln(w, "  store delete        Remove a settings key")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  memo list           List memo blocks")
	fmt.Fprintln(w, "  memo search         Search memo blocks")
	fmt.Fprintln(w, "  memo format         Beautify a memo block in place")
	fmt.Fprintln(w, "  memo export         Print all memos as export JSON")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config path         Print the configuration file path")
	fmt.Fprintln(w, "  config init         Write the default configuration file")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Open the interactive memo editor")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'frogmemo <command> --help' for command-specific options.")
}

// loadConfig loads path, or the default location when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromPath(path)
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: frogmemo status")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	printStatus(os.Stdout, status)
	return 0
}

func printStatus(w io.Writer, status *ipc.StatusData) {
	fmt.Fprintf(w, "daemon_running:   %v\n", status.DaemonRunning)
	fmt.Fprintf(w, "uptime_seconds:   %d\n", status.UptimeSeconds)
	fmt.Fprintf(w, "hotkey:           %s\n", status.Hotkey)
	fmt.Fprintf(w, "presses:          %d\n", status.Presses)
	fmt.Fprintf(w, "toggles:          %d\n", status.Toggles)
	if status.LastAction != "" {
		fmt.Fprintf(w, "last_action:      %s\n", status.LastAction)
	}
	fmt.Fprintf(w, "window:           %s\n", status.Window.Label)
	fmt.Fprintf(w, "window_exists:    %v\n", status.Window.Exists)
	if status.Window.Exists {
		fmt.Fprintf(w, "window_visible:   %v\n", status.Window.Visible)
		fmt.Fprintf(w, "window_minimized: %v\n", status.Window.Minimized)
	}
	if status.Window.Error != "" {
		fmt.Fprintf(w, "window_error:     %s\n", status.Window.Error)
	}
	fmt.Fprintf(w, "store_path:       %s\n", status.StorePath)
	fmt.Fprintf(w, "store_keys:       %d\n", status.StoreKeys)
}

func runToggle(args []string) int {
	fs := flag.NewFlagSet("toggle", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: frogmemo toggle")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Ask the daemon to toggle the window exactly as a hotkey press would.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "toggle takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	data, err := client.Toggle()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(data.Action)
	for _, f := range data.Failures {
		fmt.Fprintf(os.Stderr, "warning: %s\n", f)
	}
	return 0
}
