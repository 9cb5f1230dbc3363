package tui

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/gridswap/internal/board"
	"github.com/1broseidon/gridswap/internal/config"
	"github.com/1broseidon/gridswap/internal/exchange"
	"github.com/1broseidon/gridswap/internal/grid"
)

// headerLines is the status bar height; the grid starts one row below it.
const headerLines = 1

// pressTickMsg lets a held, motionless press begin.
type pressTickMsg struct {
	at time.Time
}

// Options configures the TUI host.
type Options struct {
	Config *config.Config
	// Store and Name enable saving the arrangement with "s".
	Store *board.Store
	Name  string
	// Locked pins positions on the initial board.
	Locked [][2]int
	Logger *slog.Logger
}

// model is the root bubbletea model.
type model struct {
	cfg     *config.Config
	store   *board.Store
	name    string
	logger  *slog.Logger
	now     func() time.Time
	sched   *scheduler
	session *board.Session

	lastEntry string
	status    string

	// Terminal dimensions
	width  int
	height int
}

func newModel(b *board.Board, opts Options) (*model, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &model{
		cfg:    cfg,
		store:  opts.Store,
		name:   opts.Name,
		logger: logger,
		now:    time.Now,
		sched:  newScheduler(),
	}
	if err := m.attach(b, opts.Locked); err != nil {
		return nil, err
	}
	return m, nil
}

// attach builds a session around b, pinning locked.
func (m *model) attach(b *board.Board, locked [][2]int) error {
	exOpts := exchange.OptionsFromConfig(m.cfg)
	exOpts.Schedule = m.sched.Schedule
	exOpts.Logger = m.logger

	gridCfg := m.cfg.Grid
	gridCfg.Locked = locked
	session, err := board.NewSession(b, board.SessionConfig{
		Grid:    gridCfg,
		Options: exOpts,
		Origin:  grid.Point{X: 1, Y: headerLines + 1},
		Wrap: func(b *board.Board) exchange.Delegate {
			return &delegate{
				Board:    b,
				sched:    m.sched,
				duration: exOpts.AnimationDuration,
				scale:    exOpts.ReleaseScale,
			}
		},
	})
	if err != nil {
		return err
	}
	b.SetObserver(func(e board.Entry) { m.lastEntry = e.String() })
	m.session = session
	m.lastEntry = ""
	return nil
}

// Init implements tea.Model.
func (m *model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		var quit bool
		quit, cmd = m.handleKey(msg)
		if quit {
			return m, tea.Quit
		}
	case tea.MouseMsg:
		cmd = m.handleMouse(msg)
	case pressTickMsg:
		m.session.Tick(msg.at)
	case timerMsg:
		m.sched.fire(msg.id)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, tea.Batch(cmd, m.sched.flush())
}

func (m *model) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return true, nil
	case "esc":
		m.session.CancelGesture()
		m.session.Controller.Cancel()
	case "r":
		if m.session.Controller.TransactionInProgress() {
			m.status = "finish the drag before resetting"
			return false, nil
		}
		if err := m.attach(board.New(m.session.Board.Sizes()), m.cfg.Grid.Locked); err != nil {
			m.status = err.Error()
			return false, nil
		}
		m.status = "board reset"
	case "s":
		m.save()
	}
	return false, nil
}

func (m *model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	p := grid.Point{X: msg.X, Y: msg.Y}
	now := m.now()

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.session.Press(p, now)
			if !m.session.Pressed() {
				return nil
			}
			delay := m.session.Controller.Options().MinimumPressDuration
			return tea.Tick(delay, func(t time.Time) tea.Msg { return pressTickMsg{at: t} })
		case tea.MouseButtonRight:
			m.toggleLock(p)
		}
	case tea.MouseActionMotion:
		m.session.Move(p, now)
	case tea.MouseActionRelease:
		m.session.Lift(p, now)
	}
	return nil
}

func (m *model) toggleLock(p grid.Point) {
	if m.session.Controller.TransactionInProgress() {
		return
	}
	pos, ok := m.session.Frames().PositionAt(p)
	if !ok {
		return
	}
	b := m.session.Board
	if b.Locked(pos) {
		b.Unlock(pos)
		m.status = fmt.Sprintf("unlocked %s", pos)
		return
	}
	if err := b.Lock(pos); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf("locked %s", pos)
}

func (m *model) save() {
	if m.store == nil || m.name == "" {
		m.status = "no board name to save under (start with --board NAME)"
		return
	}
	if err := m.store.Write(m.session.Board.Snapshot(m.name)); err != nil {
		m.status = err.Error()
		m.logger.Error("save board failed", "name", m.name, "error", err)
		return
	}
	m.status = fmt.Sprintf("saved %q", m.name)
}

// View implements tea.Model.
func (m *model) View() string {
	frames := m.session.Frames()
	bounds := frames.Bounds()

	width := max(m.width, bounds.X+bounds.Width+1)
	height := max(bounds.Y+bounds.Height+1-headerLines, 1)
	if m.height > 0 {
		height = max(height, m.height-headerLines-1)
	}

	c := newCanvas(headerLines, width, height)
	var floating string
	if snap, ok := m.session.Controller.Snapshot(); ok {
		floating, _ = m.session.Board.Item(snap.Dragged)
	}
	drawBoard(c, frames, m.session.Board, m.session.Layout, m.session.Controller.Visual(), floating)

	return lipgloss.JoinVertical(lipgloss.Left,
		renderStatusBar(m.session.Controller.Phase(), m.lastEntry, m.status, width),
		c.String(),
		renderHelpBar(width),
	)
}

func renderStatusBar(phase exchange.Phase, last, status string, width int) string {
	text := "gridswap  " + phase.String()
	if last != "" {
		text += "  last: " + last
	}
	if status != "" {
		text += "  " + status
	}
	style := lipgloss.NewStyle().
		Width(width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	return style.Render(text)
}

func renderHelpBar(width int) string {
	help := "hold+drag: exchange  right-click: lock  esc: cancel  r: reset  s: save  q: quit"
	style := lipgloss.NewStyle().
		Width(width).
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	return style.Render(help)
}
