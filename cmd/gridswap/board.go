package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/1broseidon/gridswap/internal/board"
)

func runBoard(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  gridswap board list [--store DIR]")
		fmt.Fprintln(os.Stderr, "  gridswap board show [--store DIR] NAME")
		fmt.Fprintln(os.Stderr, "  gridswap board delete [--store DIR] NAME")
		return 2
	}

	fs := flag.NewFlagSet("board "+args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	storeDir := fs.String("store", "", "Board directory (default: ~/.config/gridswap/boards)")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	store, err := openStore(*storeDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	switch args[0] {
	case "list":
		names, err := store.List()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if len(names) == 0 {
			fmt.Println("No saved boards")
			return 0
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return 0

	case "show", "delete":
		if fs.NArg() != 1 {
			fmt.Fprintf(os.Stderr, "board %s requires exactly one NAME\n", args[0])
			return 2
		}
		name := fs.Arg(0)
		if args[0] == "delete" {
			if err := store.Delete(name); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			fmt.Printf("Deleted board %q\n", name)
			return 0
		}
		saved, err := store.Read(name)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(formatSaved(saved))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown board command: %s\n", args[0])
		return 2
	}
}

// formatSaved renders a saved board one section per line, marking locked
// items with '*'.
func formatSaved(saved *board.Saved) string {
	locked := make(map[[2]int]bool, len(saved.Locked))
	for _, pos := range saved.Locked {
		locked[[2]int{pos.Section, pos.Item}] = true
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", saved.Name)
	for s, items := range saved.Sections {
		labels := make([]string, len(items))
		for i, item := range items {
			labels[i] = item
			if locked[[2]int{s, i}] {
				labels[i] += "*"
			}
		}
		fmt.Fprintf(&sb, "  %d: %s\n", s, strings.Join(labels, " "))
	}
	return sb.String()
}
