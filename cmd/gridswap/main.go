package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/1broseidon/gridswap/internal/board"
	"github.com/1broseidon/gridswap/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "replay":
		os.Exit(runReplay(os.Args[2:]))
	case "desktop":
		os.Exit(runDesktop(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "board":
		os.Exit(runBoard(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
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
	fmt.Fprintln(w, "Usage: gridswap <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui                 Drag items around a board in the terminal")
	fmt.Fprintln(w, "  replay              Replay recorded pointer scripts")
	fmt.Fprintln(w, "  desktop             Drive a board with a global X11 mouse binding")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  board list          List saved boards")
	fmt.Fprintln(w, "  board show          Print a saved board")
	fmt.Fprintln(w, "  board delete        Delete a saved board")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'gridswap <command> --help' for command-specific options.")
}

// loadConfig reads path, or the default location when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// newLogger logs to w at the configured level.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: cfg.Logging.SlogLevel(),
	}))
}

// parseSections parses a comma-separated list of section sizes, e.g. "6,4".
func parseSections(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var sizes []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid section size %q", part)
		}
		if n <= 0 {
			return nil, fmt.Errorf("section sizes must be > 0, got %d", n)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

// openBoard returns the saved board called name if there is one, otherwise
// a fresh board of the given sizes. restored reports which it was.
func openBoard(store *board.Store, name string, sizes []int) (*board.Board, bool, error) {
	if store != nil && name != "" {
		saved, err := store.Read(name)
		switch {
		case err == nil:
			b, err := board.Restore(saved)
			if err != nil {
				return nil, false, err
			}
			return b, true, nil
		case !errors.Is(err, fs.ErrNotExist):
			return nil, false, err
		}
	}
	if len(sizes) == 0 {
		return nil, false, fmt.Errorf("board needs at least one section")
	}
	return board.New(sizes), false, nil
}

// boardFlags are the flags shared by the interactive hosts.
type boardFlags struct {
	path     *string
	sections *string
	name     *string
	storeDir *string
}

func addBoardFlags(fs *flag.FlagSet) boardFlags {
	return boardFlags{
		path:     fs.String("path", "", "Config file path (default: ~/.config/gridswap/config.yaml)"),
		sections: fs.String("sections", "", "Comma-separated section sizes (default: grid.sections from config)"),
		name:     fs.String("board", "", "Saved board to open and save to"),
		storeDir: fs.String("store", "", "Board directory (default: ~/.config/gridswap/boards)"),
	}
}

func openStore(dir string) (*board.Store, error) {
	if dir != "" {
		return &board.Store{Dir: dir}, nil
	}
	return board.DefaultStore()
}

// setup loads config and the board for an interactive host. Locks come from
// the config only when the board is new.
func (f boardFlags) setup() (*config.Config, *board.Store, *board.Board, [][2]int, error) {
	cfg, err := loadConfig(*f.path)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	sizes, err := parseSections(*f.sections)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if sizes == nil {
		sizes = cfg.Grid.Sections
	}
	store, err := openStore(*f.storeDir)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	b, restored, err := openBoard(store, *f.name, sizes)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	var locked [][2]int
	if !restored && *f.sections == "" {
		locked = cfg.Grid.Locked
	}
	return cfg, store, b, locked, nil
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  gridswap config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  gridswap config print [--path PATH] [--defaults]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/gridswap/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/gridswap/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			var err error
			cfg, err = loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
		}
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", args[0])
		return 2
	}
}
