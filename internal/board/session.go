package board

import (
	"fmt"
	"sync"
	"time"

	"github.com/1broseidon/gridswap/internal/config"
	"github.com/1broseidon/gridswap/internal/exchange"
	"github.com/1broseidon/gridswap/internal/gesture"
	"github.com/1broseidon/gridswap/internal/grid"
)

// SessionConfig assembles a Session.
type SessionConfig struct {
	Grid    config.GridConfig
	Options exchange.Options
	// Wrap, if set, decorates the board before it becomes the controller's
	// delegate. Hosts use it to add animation capabilities; embedding
	// *Board keeps the locking predicates.
	Wrap func(*Board) exchange.Delegate
	// Origin offsets every frame, e.g. to leave room for a header.
	Origin grid.Point
}

// Session wires a board to a layout, a controller and a long-press
// recognizer. Pointer methods are safe for concurrent use.
type Session struct {
	Board      *Board
	Layout     *exchange.Layout
	Controller *exchange.Controller

	frames grid.Frames

	mu         sync.Mutex
	recognizer *gesture.LongPress
}

// NewSession lays b out according to cfg.Grid and builds its controller.
func NewSession(b *Board, cfg SessionConfig) (*Session, error) {
	flow := FlowLayout(cfg.Grid, b.Sizes())
	flow.Origin = cfg.Origin
	if err := flow.Validate(); err != nil {
		return nil, fmt.Errorf("invalid grid layout: %w", err)
	}
	for _, pos := range cfg.Grid.Locked {
		if err := b.Lock(grid.Position{Section: pos[0], Item: pos[1]}); err != nil {
			return nil, fmt.Errorf("grid.locked: %w", err)
		}
	}
	if cfg.Options.Logger != nil {
		b.SetLogger(cfg.Options.Logger)
	}

	var delegate exchange.Delegate = b
	if cfg.Wrap != nil {
		delegate = cfg.Wrap(b)
	}

	s := &Session{
		Board:  b,
		Layout: exchange.NewLayout(),
		frames: flow.Frames(b.Sizes()),
	}
	s.Controller = exchange.NewController(delegate, s.frames, s.Layout, cfg.Options)
	opts := s.Controller.Options()
	s.recognizer = gesture.NewLongPress(opts.MinimumPressDuration, opts.AllowableMovement, s.Controller.HandleGesture)
	return s, nil
}

// FlowLayout converts grid settings into a flow layout for sections of the
// given sizes. Zero columns picks a near-square count for the largest
// section.
func FlowLayout(g config.GridConfig, sizes []int) grid.FlowLayout {
	cols := g.Columns
	if cols <= 0 {
		largest := 0
		for _, n := range sizes {
			largest = max(largest, n)
		}
		cols = grid.CalculateColumns(largest)
	}
	return grid.FlowLayout{
		Columns:        cols,
		ItemWidth:      g.ItemWidth,
		ItemHeight:     g.ItemHeight,
		Spacing:        g.Spacing,
		SectionSpacing: g.SectionSpacing,
	}
}

// Frames returns the laid-out item frames.
func (s *Session) Frames() grid.Frames {
	return s.frames
}

// Press feeds a pointer press to the recognizer.
func (s *Session) Press(p grid.Point, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recognizer.Down(p, t)
}

// Move feeds pointer motion to the recognizer.
func (s *Session) Move(p grid.Point, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recognizer.Move(p, t)
}

// Lift feeds a pointer release to the recognizer.
func (s *Session) Lift(p grid.Point, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recognizer.Up(p, t)
}

// Tick lets a held press begin without further motion.
func (s *Session) Tick(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recognizer.Tick(t)
}

// CancelGesture aborts the pointer gesture, cancelling any transaction it
// started.
func (s *Session) CancelGesture() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recognizer.Cancel()
}

// Pressed reports whether a press is being tracked.
func (s *Session) Pressed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recognizer.Pressed()
}

// CenterOf returns the centre of the item at pos.
func (s *Session) CenterOf(pos grid.Position) (grid.Point, bool) {
	r, ok := s.frames.FrameOf(pos)
	if !ok {
		return grid.Point{}, false
	}
	return r.Center(), true
}
