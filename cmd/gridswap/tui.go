package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/1broseidon/gridswap/internal/tui"
)

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	bf := addBoardFlags(fs)
	logFile := fs.String("log", "", "Write logs to this file (default: discard)")

	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stderr, "Usage: gridswap tui [--path PATH] [--sections 6,4] [--board NAME] [--store DIR] [--log FILE]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive board. Needs a terminal that reports mouse motion.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Controls:")
		fmt.Fprintln(os.Stderr, "  hold + drag   Catch an item and exchange it with the items it passes over")
		fmt.Fprintln(os.Stderr, "  right-click   Lock or unlock an item")
		fmt.Fprintln(os.Stderr, "  Esc           Cancel the drag")
		fmt.Fprintln(os.Stderr, "  r             Reset the board")
		fmt.Fprintln(os.Stderr, "  s             Save the board (needs --board)")
		fmt.Fprintln(os.Stderr, "  q, Ctrl+C     Quit")
		return 0
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, store, b, locked, err := bf.setup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	// The terminal belongs to the TUI; logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if *logFile != "" {
		if err := os.MkdirAll(filepath.Dir(*logFile), 0755); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer f.Close()
		logOut = f
	}

	err = tui.Run(b, tui.Options{
		Config: cfg,
		Store:  store,
		Name:   *bf.name,
		Locked: locked,
		Logger: newLogger(cfg, logOut),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
