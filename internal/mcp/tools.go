package mcp

import (
	"context"
	"fmt"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/gridswap/internal/board"
	"github.com/1broseidon/gridswap/internal/exchange"
	"github.com/1broseidon/gridswap/internal/grid"
)

func transactionInfo(c *exchange.Controller) *TransactionInfo {
	snap, ok := c.Snapshot()
	if !ok {
		return nil
	}
	return &TransactionInfo{
		Origin:    snap.Origin,
		Dragged:   snap.Dragged,
		Displaced: snap.Displaced,
		LastHit:   snap.LastHit,
	}
}

func boardState(name string, session *board.Session) BoardStateOutput {
	locked := session.Board.LockedPositions()
	if locked == nil {
		locked = []grid.Position{}
	}
	return BoardStateOutput{
		Board:       name,
		Sections:    session.Board.Sections(),
		Locked:      locked,
		Phase:       session.Controller.Phase().String(),
		Transaction: transactionInfo(session.Controller),
	}
}

// entriesSince renders the trace entries recorded after index from.
func entriesSince(b *board.Board, from int) []string {
	trace := b.Trace()
	out := []string{}
	if from < 0 {
		from = 0
	}
	for i := from; i < len(trace); i++ {
		out = append(out, trace[i].String())
	}
	return out
}

// centerOf resolves a position argument to the point the controller acts on.
func centerOf(session *board.Session, section, item int) (grid.Point, error) {
	pos := grid.Position{Section: section, Item: item}
	p, ok := session.CenterOf(pos)
	if !ok {
		return grid.Point{}, fmt.Errorf("no item at %s", pos)
	}
	return p, nil
}

func (s *Server) handleNewBoard(_ context.Context, _ *mcpsdk.CallToolRequest, args NewBoardInput) (*mcpsdk.CallToolResult, BoardStateOutput, error) {
	if len(args.Sections) == 0 {
		return nil, BoardStateOutput{}, fmt.Errorf("sections is required")
	}
	for i, n := range args.Sections {
		if n <= 0 {
			return nil, BoardStateOutput{}, fmt.Errorf("sections[%d] must be > 0", i)
		}
	}
	name := normalizeBoard(args.Board)
	tb, err := s.replace(name, board.New(args.Sections), args.Locked)
	if err != nil {
		return nil, BoardStateOutput{}, err
	}
	s.logger.Info("board created", "board", name, "sections", args.Sections)
	return nil, boardState(name, tb.session), nil
}

func (s *Server) handleListBoards(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListInput) (*mcpsdk.CallToolResult, ListBoardsOutput, error) {
	return nil, ListBoardsOutput{Boards: s.boardNames()}, nil
}

func (s *Server) handleBoardState(_ context.Context, _ *mcpsdk.CallToolRequest, args BoardInput) (*mcpsdk.CallToolResult, BoardStateOutput, error) {
	tb, name, err := s.lookup(args.Board)
	if err != nil {
		return nil, BoardStateOutput{}, err
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return nil, boardState(name, tb.session), nil
}

func (s *Server) handleCatch(_ context.Context, _ *mcpsdk.CallToolRequest, args ItemInput) (*mcpsdk.CallToolResult, CatchOutput, error) {
	tb, name, err := s.lookup(args.Board)
	if err != nil {
		return nil, CatchOutput{}, err
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()

	c := tb.session.Controller
	if c.TransactionInProgress() {
		return nil, CatchOutput{}, fmt.Errorf("board %q already has a transaction in progress (%s)", name, c.Phase())
	}
	p, err := centerOf(tb.session, args.Section, args.Item)
	if err != nil {
		return nil, CatchOutput{}, err
	}
	pos := grid.Position{Section: args.Section, Item: args.Item}
	if tb.session.Board.Locked(pos) {
		return nil, CatchOutput{}, fmt.Errorf("item at %s is locked", pos)
	}

	c.Catch(p)
	if !c.TransactionInProgress() {
		return nil, CatchOutput{}, fmt.Errorf("catch at %s was refused", pos)
	}
	item, _ := tb.session.Board.Item(pos)
	s.logger.Debug("caught", "board", name, "position", pos, "item", item)
	return nil, CatchOutput{
		Item:        item,
		Phase:       c.Phase().String(),
		Transaction: transactionInfo(c),
	}, nil
}

func (s *Server) handleDrag(_ context.Context, _ *mcpsdk.CallToolRequest, args ItemInput) (*mcpsdk.CallToolResult, DragOutput, error) {
	tb, name, err := s.lookup(args.Board)
	if err != nil {
		return nil, DragOutput{}, err
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()

	c := tb.session.Controller
	switch c.Phase() {
	case exchange.PhaseArmed, exchange.PhaseDragging:
	default:
		return nil, DragOutput{}, fmt.Errorf("board %q has no item to drag (%s)", name, c.Phase())
	}
	p, err := centerOf(tb.session, args.Section, args.Item)
	if err != nil {
		return nil, DragOutput{}, err
	}

	before := len(tb.session.Board.Trace())
	c.Drag(p)
	return nil, DragOutput{
		Entries:     entriesSince(tb.session.Board, before),
		Sections:    tb.session.Board.Sections(),
		Phase:       c.Phase().String(),
		Transaction: transactionInfo(c),
	}, nil
}

func (s *Server) handleRelease(ctx context.Context, _ *mcpsdk.CallToolRequest, args ReleaseInput) (*mcpsdk.CallToolResult, ReleaseOutput, error) {
	tb, name, err := s.lookup(args.Board)
	if err != nil {
		return nil, ReleaseOutput{}, err
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()

	c := tb.session.Controller
	snap, ok := c.Snapshot()
	if !ok || snap.Phase == exchange.PhaseReleasing {
		return nil, ReleaseOutput{}, fmt.Errorf("board %q has no item to release (%s)", name, c.Phase())
	}
	p, ok := tb.session.CenterOf(snap.Dragged)
	if !ok {
		return nil, ReleaseOutput{}, fmt.Errorf("dragged position %s is off the board", snap.Dragged)
	}

	c.Release(p)
	timeout := time.Duration(args.Timeout) * time.Second
	if err := s.waitIdle(ctx, tb.session, timeout); err != nil {
		return nil, ReleaseOutput{}, err
	}

	out := ReleaseOutput{
		Origin:   snap.Origin,
		Final:    snap.Dragged,
		Sections: tb.session.Board.Sections(),
	}
	trace := tb.session.Board.Trace()
	if n := len(trace); n > 0 && trace[n-1].Kind == board.EntryFinish {
		out.Origin, out.Final = trace[n-1].P1, trace[n-1].P2
	}
	out.Moved = out.Origin != out.Final
	s.logger.Info("transaction released", "board", name, "origin", out.Origin, "final", out.Final)
	return nil, out, nil
}

func (s *Server) handleCancel(_ context.Context, _ *mcpsdk.CallToolRequest, args BoardInput) (*mcpsdk.CallToolResult, CancelOutput, error) {
	tb, name, err := s.lookup(args.Board)
	if err != nil {
		return nil, CancelOutput{}, err
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()

	c := tb.session.Controller
	if !c.TransactionInProgress() {
		return nil, CancelOutput{}, fmt.Errorf("board %q has no transaction to cancel", name)
	}
	before := len(tb.session.Board.Trace())
	c.Cancel()
	s.logger.Info("transaction cancelled", "board", name)
	return nil, CancelOutput{
		Entries:  entriesSince(tb.session.Board, before),
		Sections: tb.session.Board.Sections(),
	}, nil
}

func (s *Server) handleLockItem(_ context.Context, _ *mcpsdk.CallToolRequest, args LockInput) (*mcpsdk.CallToolResult, BoardStateOutput, error) {
	tb, name, err := s.lookup(args.Board)
	if err != nil {
		return nil, BoardStateOutput{}, err
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tb.session.Controller.TransactionInProgress() {
		return nil, BoardStateOutput{}, fmt.Errorf("board %q has a transaction in progress", name)
	}
	pos := grid.Position{Section: args.Section, Item: args.Item}
	if args.Locked {
		if err := tb.session.Board.Lock(pos); err != nil {
			return nil, BoardStateOutput{}, err
		}
	} else {
		tb.session.Board.Unlock(pos)
	}
	return nil, boardState(name, tb.session), nil
}

func (s *Server) handlePickPosition(_ context.Context, _ *mcpsdk.CallToolRequest, args BoardInput) (*mcpsdk.CallToolResult, PickOutput, error) {
	tb, name, err := s.lookup(args.Board)
	if err != nil {
		return nil, PickOutput{}, err
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()

	s.mu.Lock()
	pos, ok := tb.session.Board.RandomFreePosition(s.rng)
	s.mu.Unlock()
	if !ok {
		return nil, PickOutput{}, fmt.Errorf("board %q has no unlocked positions", name)
	}
	item, _ := tb.session.Board.Item(pos)
	return nil, PickOutput{Position: pos, Item: item}, nil
}

func (s *Server) handleGetTrace(_ context.Context, _ *mcpsdk.CallToolRequest, args TraceInput) (*mcpsdk.CallToolResult, TraceOutput, error) {
	tb, _, err := s.lookup(args.Board)
	if err != nil {
		return nil, TraceOutput{}, err
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()

	entries := entriesSince(tb.session.Board, args.Since)
	return nil, TraceOutput{
		Entries: entries,
		Next:    max(args.Since, 0) + len(entries),
	}, nil
}

func (s *Server) handleSaveBoard(_ context.Context, _ *mcpsdk.CallToolRequest, args NamedInput) (*mcpsdk.CallToolResult, SaveOutput, error) {
	if s.store == nil {
		return nil, SaveOutput{}, fmt.Errorf("board storage is not configured")
	}
	tb, name, err := s.lookup(args.Board)
	if err != nil {
		return nil, SaveOutput{}, err
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tb.session.Controller.TransactionInProgress() {
		return nil, SaveOutput{}, fmt.Errorf("board %q has a transaction in progress", name)
	}
	if err := s.store.Write(tb.session.Board.Snapshot(args.Name)); err != nil {
		return nil, SaveOutput{}, err
	}
	s.logger.Info("board saved", "board", name, "name", args.Name)
	return nil, SaveOutput{Name: args.Name}, nil
}

func (s *Server) handleLoadBoard(_ context.Context, _ *mcpsdk.CallToolRequest, args NamedInput) (*mcpsdk.CallToolResult, BoardStateOutput, error) {
	if s.store == nil {
		return nil, BoardStateOutput{}, fmt.Errorf("board storage is not configured")
	}
	saved, err := s.store.Read(args.Name)
	if err != nil {
		return nil, BoardStateOutput{}, err
	}
	b, err := board.Restore(saved)
	if err != nil {
		return nil, BoardStateOutput{}, err
	}
	name := normalizeBoard(args.Board)
	tb, err := s.replace(name, b, nil)
	if err != nil {
		return nil, BoardStateOutput{}, err
	}
	s.logger.Info("board loaded", "board", name, "name", args.Name)
	return nil, boardState(name, tb.session), nil
}

func (s *Server) handleListSaved(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListInput) (*mcpsdk.CallToolResult, ListSavedOutput, error) {
	if s.store == nil {
		return nil, ListSavedOutput{}, fmt.Errorf("board storage is not configured")
	}
	names, err := s.store.List()
	if err != nil {
		return nil, ListSavedOutput{}, err
	}
	if names == nil {
		names = []string{}
	}
	return nil, ListSavedOutput{Names: names}, nil
}
