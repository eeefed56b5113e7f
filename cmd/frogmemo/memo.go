package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/frogmemo/frogmemo/internal/memo"
)

func printMemoUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  frogmemo memo list [--config PATH] [--tag TAG]")
	fmt.Fprintln(w, "  frogmemo memo search [--config PATH] [--scope all|content|title|tags] <query>")
	fmt.Fprintln(w, "  frogmemo memo format [--config PATH] <id>")
	fmt.Fprintln(w, "  frogmemo memo export [--config PATH] [--output FILE]")
}

func runMemo(args []string) int {
	if len(args) == 0 {
		printMemoUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "list", "ls":
		return runMemoList(args[1:])
	case "search":
		return runMemoSearch(args[1:])
	case "format":
		return runMemoFormat(args[1:])
	case "export":
		return runMemoExport(args[1:])
	case "help", "-h", "--help":
		printMemoUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown memo command: %s\n\n", args[0])
		printMemoUsage(os.Stderr)
		return 2
	}
}

func loadBook(configPath string) (memo.KV, *memo.Book, error) {
	backend, _, err := openStoreBackend(configPath)
	if err != nil {
		return nil, nil, err
	}
	book, err := memo.Load(backend)
	if err != nil {
		return nil, nil, err
	}
	return backend, book, nil
}

// printBlocks writes one line per block: id, title, tags and format.
func printBlocks(w io.Writer, blocks []memo.Block) {
	for _, b := range blocks {
		fmt.Fprintf(w, "%s\t%s\t#%s\t%s\n", b.ID, b.Title, strings.Join(b.Tags, " #"), memo.FormatLabel(b.EffectiveFormat()))
	}
}

func runMemoList(args []string) int {
	fs := flag.NewFlagSet("memo list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path")
	tag := fs.String("tag", "", "Only list blocks with this tag")
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

	_, book, err := loadBook(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	printBlocks(os.Stdout, book.Filter(memo.Query{Tab: *tag}))
	return 0
}

func runMemoSearch(args []string) int {
	fs := flag.NewFlagSet("memo search", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path")
	scopeName := fs.String("scope", "all", "Fields to search: all, content, title or tags")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 || strings.TrimSpace(strings.Join(fs.Args(), " ")) == "" {
		fmt.Fprintln(os.Stderr, "search requires <query>")
		return 2
	}
	scope, err := memo.ParseScope(*scopeName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	_, book, err := loadBook(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	printBlocks(os.Stdout, book.Filter(memo.Query{Term: strings.Join(fs.Args(), " "), Scope: scope}))
	return 0
}

func runMemoFormat(args []string) int {
	fs := flag.NewFlagSet("memo format", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "format requires <id>")
		return 2
	}

	kv, book, err := loadBook(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	format, err := book.Beautify(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := memo.Save(kv, book); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("Formatted %s as %s\n", fs.Arg(0), memo.FormatLabel(format))
	return 0
}

func runMemoExport(args []string) int {
	fs := flag.NewFlagSet("memo export", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path")
	output := fs.String("output", "", "Write to FILE instead of stdout")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "export takes no arguments")
		return 2
	}

	_, book, err := loadBook(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	data, err := book.Export()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *output == "" {
		_, _ = os.Stdout.Write(data)
		return 0
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write export: %v\n", err)
		return 1
	}
	fmt.Printf("Exported %d memos to %s\n", len(book.Blocks), *output)
	return 0
}
