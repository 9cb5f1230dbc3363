package x11

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/1broseidon/gridswap/internal/board"
	"github.com/1broseidon/gridswap/internal/config"
	"github.com/1broseidon/gridswap/internal/exchange"
	"github.com/1broseidon/gridswap/internal/grid"
)

// HostOptions configures a desktop host.
type HostOptions struct {
	Config *config.Config
	// Store and Name save the board after every finished transaction.
	Store  *board.Store
	Name   string
	Locked [][2]int
	Logger *slog.Logger
}

// Host lays a board out over a monitor and drives it from a global mouse
// binding. Holding the drag button over an item catches it; moving over
// other items exchanges them.
type Host struct {
	session *board.Session
	area    grid.Rect
	store   *board.Store
	name    string
	logger  *slog.Logger

	now   func() time.Time
	after func(d time.Duration, fn func())
}

// NewHost builds a host for b covering area.
func NewHost(b *board.Board, area grid.Rect, opts HostOptions) (*Host, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	margin := cfg.Desktop.Margin
	inner := grid.Rect{
		X:      area.X + margin,
		Y:      area.Y + margin,
		Width:  area.Width - 2*margin,
		Height: area.Height - 2*margin,
	}
	gridCfg, err := FitGrid(cfg.Grid, cfg.Desktop.Spacing, b.Sizes(), inner)
	if err != nil {
		return nil, err
	}
	gridCfg.Locked = opts.Locked

	exOpts := exchange.OptionsFromConfig(cfg)
	exOpts.Logger = logger

	session, err := board.NewSession(b, board.SessionConfig{
		Grid:    gridCfg,
		Options: exOpts,
		Origin:  grid.Point{X: inner.X, Y: inner.Y},
	})
	if err != nil {
		return nil, err
	}

	h := &Host{
		session: session,
		area:    area,
		store:   opts.Store,
		name:    opts.Name,
		logger:  logger,
		now:     time.Now,
		after:   func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
	}
	b.SetObserver(h.observe)
	return h, nil
}

// Session returns the host's exchange session.
func (h *Host) Session() *board.Session {
	return h.session
}

// Bind connects the drag button and the cancel key on the root window.
func (h *Host) Bind(conn *Connection, cfg config.DesktopConfig) error {
	mousebind.Drag(conn.XUtil, conn.Root, conn.Root, cfg.DragButton, true,
		func(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) (bool, xproto.Cursor) {
			return h.dragBegin(rootX, rootY), 0
		},
		func(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) {
			h.dragStep(rootX, rootY)
		},
		func(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) {
			h.dragEnd(rootX, rootY)
		})

	if cfg.CancelKey == "" {
		return nil
	}
	err := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		h.cancel()
	}).Connect(conn.XUtil, conn.Root, cfg.CancelKey, true)
	if err != nil {
		return fmt.Errorf("failed to bind cancel key %q: %w", cfg.CancelKey, err)
	}
	return nil
}

// dragBegin reports whether the pointer should be grabbed for this press.
func (h *Host) dragBegin(rootX, rootY int) bool {
	p := grid.Point{X: rootX, Y: rootY}
	if !h.area.Contains(p) {
		return false
	}
	h.session.Press(p, h.now())
	if !h.session.Pressed() {
		return false
	}
	delay := h.session.Controller.Options().MinimumPressDuration
	h.after(delay, func() { h.session.Tick(h.now()) })
	return true
}

func (h *Host) dragStep(rootX, rootY int) {
	h.session.Move(grid.Point{X: rootX, Y: rootY}, h.now())
}

func (h *Host) dragEnd(rootX, rootY int) {
	h.session.Lift(grid.Point{X: rootX, Y: rootY}, h.now())
}

func (h *Host) cancel() {
	h.session.CancelGesture()
	h.session.Controller.Cancel()
}

func (h *Host) observe(e board.Entry) {
	h.logger.Info("board callback", "entry", e.String())
	if e.Kind != board.EntryFinish || h.store == nil || h.name == "" {
		return
	}
	if err := h.store.Write(h.session.Board.Snapshot(h.name)); err != nil {
		h.logger.Error("save board failed", "name", h.name, "error", err)
	}
}

// FitGrid sizes items so sections of the given sizes fill area, keeping
// g's column count (or a near-square one when it is 0). Spacing is in
// pixels; sections are separated by twice that.
func FitGrid(g config.GridConfig, spacing int, sizes []int, area grid.Rect) (config.GridConfig, error) {
	cols := g.Columns
	if cols <= 0 {
		largest := 0
		for _, n := range sizes {
			largest = max(largest, n)
		}
		cols = grid.CalculateColumns(largest)
	}

	rows, sections := 0, 0
	for _, n := range sizes {
		if n <= 0 {
			continue
		}
		rows += (n + cols - 1) / cols
		sections++
	}
	if rows == 0 {
		return g, fmt.Errorf("board has no items to lay out")
	}

	sectionSpacing := 2 * spacing
	width := (area.Width+spacing)/cols - spacing
	height := (area.Height+spacing-(sections-1)*sectionSpacing)/rows - spacing
	if width < 1 || height < 1 {
		return g, fmt.Errorf("area %dx%d is too small for %d columns and %d rows", area.Width, area.Height, cols, rows)
	}

	g.Columns = cols
	g.ItemWidth = width
	g.ItemHeight = height
	g.Spacing = spacing
	g.SectionSpacing = sectionSpacing
	return g, nil
}
