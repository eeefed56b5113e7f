package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/frogmemo/frogmemo/internal/tui"
)

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path (default: ~/.config/frogmemo/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: frogmemo tui [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Edit memos kept in the settings store.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "tui takes no arguments")
		fs.Usage()
		return 2
	}

	backend, source, err := openStoreBackend(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := tui.Run(backend, source); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
