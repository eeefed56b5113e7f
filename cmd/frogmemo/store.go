package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/frogmemo/frogmemo/internal/ipc"
	"github.com/frogmemo/frogmemo/internal/store"
	"github.com/frogmemo/frogmemo/internal/tui"
)

func printStoreUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  frogmemo store list [--config PATH] [--json]")
	fmt.Fprintln(w, "  frogmemo store get [--config PATH] <key>")
	fmt.Fprintln(w, "  frogmemo store set [--config PATH] [--string] <key> <value>")
	fmt.Fprintln(w, "  frogmemo store delete [--config PATH] <key>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands go through the running daemon when there is one and edit the")
	fmt.Fprintln(w, "store file directly otherwise.")
}

func runStore(args []string) int {
	if len(args) == 0 {
		printStoreUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "list":
		return runStoreList(args[1:])
	case "get":
		return runStoreGet(args[1:])
	case "set":
		return runStoreSet(args[1:])
	case "delete", "rm":
		return runStoreDelete(args[1:])
	case "help", "-h", "--help":
		printStoreUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown store command: %s\n\n", args[0])
		printStoreUsage(os.Stderr)
		return 2
	}
}

// openStoreBackend prefers the daemon so its in-memory store stays current.
func openStoreBackend(configPath string) (tui.Backend, string, error) {
	client := ipc.NewClient()
	if err := client.Ping(); err == nil {
		return client, "daemon", nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, "", err
	}
	st, err := store.Open(cfg.StoreFile)
	if err != nil {
		return nil, "", err
	}
	return tui.StoreBackend{Store: st}, st.Path(), nil
}

func runStoreList(args []string) int {
	fs := flag.NewFlagSet("store list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path")
	asJSON := fs.Bool("json", false, "Print keys as a JSON array")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "list takes no arguments")
		return 2
	}

	backend, _, err := openStoreBackend(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	keys, err := backend.StoreList()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		if keys == nil {
			keys = []string{}
		}
		enc := json.NewEncoder(os.Stdout)
		if err := enc.Encode(keys); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	for _, k := range keys {
		fmt.Println(k)
	}
	return 0
}

func runStoreGet(args []string) int {
	fs := flag.NewFlagSet("store get", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "get requires <key>")
		return 2
	}

	backend, _, err := openStoreBackend(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	raw, err := backend.StoreGet(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(string(raw))
	return 0
}

func runStoreSet(args []string) int {
	fs := flag.NewFlagSet("store set", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path")
	asString := fs.Bool("string", false, "Store <value> as a JSON string instead of parsing it")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "set requires <key> <value>")
		return 2
	}

	value, err := parseStoreValue(fs.Arg(1), *asString)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	backend, _, err := openStoreBackend(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := backend.StoreSet(fs.Arg(0), value); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runStoreDelete(args []string) int {
	fs := flag.NewFlagSet("store delete", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "delete requires <key>")
		return 2
	}

	backend, _, err := openStoreBackend(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := backend.StoreDelete(fs.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// parseStoreValue accepts a JSON document, or any text when asString is set.
func parseStoreValue(arg string, asString bool) (json.RawMessage, error) {
	if asString {
		data, err := json.Marshal(arg)
		if err != nil {
			return nil, err
		}
		return data, nil
	}
	trimmed := strings.TrimSpace(arg)
	if !json.Valid([]byte(trimmed)) {
		return nil, fmt.Errorf("value is not valid JSON (use --string to store plain text)")
	}
	return json.RawMessage(trimmed), nil
}
