package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/gridswap/internal/board"
	"github.com/1broseidon/gridswap/internal/config"
	"github.com/1broseidon/gridswap/internal/exchange"
)

const (
	DefaultBoard  = "default"
	ServerName    = "gridswap"
	ServerVersion = "0.1.0"

	defaultReleaseTimeout = 10 * time.Second
)

// trackedBoard is one named board and its exchange session. mu serialises
// tool calls on the board so trace slices line up with the call that
// produced them.
type trackedBoard struct {
	mu      sync.Mutex
	session *board.Session
}

// Server is the MCP server that lets an agent drive exchange transactions
// on named boards.
type Server struct {
	mcpServer *mcpsdk.Server
	config    *config.Config
	store     *board.Store
	logger    *slog.Logger

	mu     sync.Mutex
	boards map[string]*trackedBoard
	rng    *rand.Rand

	// Release waiting hooks (primarily for tests).
	pollInterval time.Duration
}

// NewServer creates an MCP server. store may be nil, which disables the
// save_board, load_board and list_saved tools.
func NewServer(cfg *config.Config, store *board.Store, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		config: cfg,
		store:  store,
		logger: logger,
		boards: make(map[string]*trackedBoard),
		rng:    rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}
	s.mcpServer = mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    ServerName,
		Version: ServerVersion,
	}, nil)
	s.registerTools()
	return s
}

// Run serves MCP over stdin/stdout until ctx is done or the client hangs up.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "new_board",
		Description: "Create or replace a named board with sections of the given sizes. Items are labelled A1, A2, ... for section 0, B1, ... for section 1, and so on. Fails while the board has a transaction in progress.",
	}, s.handleNewBoard)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_boards",
		Description: "List the boards this server is tracking.",
	}, s.handleListBoards)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "board_state",
		Description: "Show a board's items, locked positions, controller phase and active transaction. The default board is created from config on first use.",
	}, s.handleBoardState)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "catch",
		Description: "Catch the item at a position, starting an exchange transaction. Fails if a transaction is already in progress or the item is locked.",
	}, s.handleCatch)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "drag",
		Description: "Drag the caught item over the item currently at a position. The dragged item exchanges places with it; a previously displaced item is put back first. Returns the exchanges that were applied.",
	}, s.handleDrag)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "release",
		Description: "Release the caught item where it is and wait for the release animation to finish. Returns the transaction's origin and final position.",
	}, s.handleRelease)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "cancel",
		Description: "Cancel the transaction in progress. Depending on the configured cancel policy the board keeps its exchanges or puts the dragged item back.",
	}, s.handleCancel)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "lock_item",
		Description: "Lock or unlock the slot at a position. Locked slots can neither be caught nor displaced.",
	}, s.handleLockItem)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "pick_position",
		Description: "Pick a uniformly random unlocked position on a board.",
	}, s.handlePickPosition)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_trace",
		Description: "Read the callbacks a board has received (exchanges, finished events, finished or cancelled transactions). Pass since=next from the previous call to read only new entries.",
	}, s.handleGetTrace)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "save_board",
		Description: "Save a board's arrangement and locks under a name.",
	}, s.handleSaveBoard)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "load_board",
		Description: "Replace a board with a saved arrangement.",
	}, s.handleLoadBoard)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_saved",
		Description: "List saved board names.",
	}, s.handleListSaved)
}

func normalizeBoard(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultBoard
	}
	return name
}

// lookup returns the named board. The default board is created from the
// configured grid on first use; other boards must be made with new_board.
func (s *Server) lookup(name string) (*trackedBoard, string, error) {
	name = normalizeBoard(name)

	s.mu.Lock()
	defer s.mu.Unlock()
	if tb, ok := s.boards[name]; ok {
		return tb, name, nil
	}
	if name != DefaultBoard {
		return nil, name, fmt.Errorf("board %q not found (create it with new_board)", name)
	}
	session, err := s.newSession(board.New(s.config.Grid.Sections), s.config.Grid.Locked)
	if err != nil {
		return nil, name, err
	}
	tb := &trackedBoard{session: session}
	s.boards[name] = tb
	return tb, name, nil
}

// replace installs b under name, refusing while the current board is mid
// transaction.
func (s *Server) replace(name string, b *board.Board, locked [][2]int) (*trackedBoard, error) {
	session, err := s.newSession(b, locked)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.boards[name]; ok && old.session.Controller.TransactionInProgress() {
		return nil, fmt.Errorf("board %q has a transaction in progress", name)
	}
	tb := &trackedBoard{session: session}
	s.boards[name] = tb
	return tb, nil
}

func (s *Server) newSession(b *board.Board, locked [][2]int) (*board.Session, error) {
	opts := exchange.OptionsFromConfig(s.config)
	opts.Logger = s.logger

	gridCfg := s.config.Grid
	gridCfg.Locked = locked
	return board.NewSession(b, board.SessionConfig{
		Grid:    gridCfg,
		Options: opts,
	})
}

func (s *Server) boardNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.boards))
	for name := range s.boards {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// waitIdle polls until the session's transaction has completed.
func (s *Server) waitIdle(ctx context.Context, session *board.Session, timeout time.Duration) error {
	if !session.Controller.TransactionInProgress() {
		return nil
	}
	if timeout <= 0 {
		timeout = defaultReleaseTimeout
	}
	poll := s.pollInterval
	if poll <= 0 {
		poll = 10 * time.Millisecond
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ticker.C:
			if !session.Controller.TransactionInProgress() {
				return nil
			}
		case <-timer.C:
			return fmt.Errorf("timeout waiting for release to finish after %s", timeout)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
