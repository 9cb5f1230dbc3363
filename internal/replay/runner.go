package replay

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"time"

	"github.com/1broseidon/gridswap/internal/board"
	"github.com/1broseidon/gridswap/internal/config"
	"github.com/1broseidon/gridswap/internal/exchange"
	"github.com/1broseidon/gridswap/internal/grid"
)

// Result is what a replayed script did to its board.
type Result struct {
	Name       string        `yaml:"name,omitempty"`
	Trace      []string      `yaml:"trace"`
	Sections   [][]string    `yaml:"sections"`
	Phase      string        `yaml:"phase"`
	InProgress bool          `yaml:"in_progress"`
	Elapsed    time.Duration `yaml:"elapsed"`
}

// Run replays s against a fresh board laid out per cfg. Time is virtual:
// steps, recognizer deadlines and animations all advance one clock, and
// any animation still pending after the last step is run to completion.
func Run(s *Script, cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	gridCfg := cfg.Grid
	if len(s.Sections) > 0 {
		gridCfg.Sections = s.Sections
		gridCfg.Locked = nil
	}
	if len(s.Locked) > 0 {
		gridCfg.Locked = s.Locked
	}

	clock := newVirtualClock(time.Unix(0, 0))
	opts := exchange.OptionsFromConfig(cfg)
	opts.Schedule = clock.Schedule
	opts.Logger = logger

	b := board.New(gridCfg.Sections)
	session, err := board.NewSession(b, board.SessionConfig{Grid: gridCfg, Options: opts})
	if err != nil {
		return nil, err
	}

	for i, step := range s.Steps {
		clock.Advance(step.At)
		now := clock.Now()

		var p grid.Point
		if step.Action == ActionPress || step.Action == ActionMove || step.Action == ActionRelease {
			p, err = target(session, step)
			if err != nil {
				return nil, fmt.Errorf("steps[%d]: %w", i, err)
			}
		}

		logger.Debug("replay step", "index", i, "at", step.At, "action", step.Action, "point", p)
		switch step.Action {
		case ActionPress:
			session.Press(p, now)
		case ActionMove:
			session.Move(p, now)
		case ActionRelease:
			session.Lift(p, now)
		case ActionTick:
			session.Tick(now)
		case ActionCancel:
			session.CancelGesture()
		}
	}
	clock.Drain()

	res := &Result{
		Name:       s.Name,
		Sections:   b.Sections(),
		Phase:      session.Controller.Phase().String(),
		InProgress: session.Controller.TransactionInProgress(),
		Elapsed:    clock.Now().Sub(time.Unix(0, 0)),
	}
	for _, e := range b.Trace() {
		res.Trace = append(res.Trace, e.String())
	}
	return res, nil
}

func target(s *board.Session, step Step) (grid.Point, error) {
	if step.Point != nil {
		return *step.Point, nil
	}
	pos := grid.Position{Section: step.Item[0], Item: step.Item[1]}
	p, ok := s.CenterOf(pos)
	if !ok {
		return grid.Point{}, fmt.Errorf("item %s is not on the board", pos)
	}
	return p, nil
}

// Check compares the result with what a script expects. A nil Expect
// always passes.
func (r *Result) Check(e *Expect) error {
	if e == nil {
		return nil
	}
	var errs []error
	if e.Trace != nil && !reflect.DeepEqual(nonNil(r.Trace), e.Trace) {
		errs = append(errs, fmt.Errorf("trace mismatch:\n  got  %q\n  want %q", r.Trace, e.Trace))
	}
	if e.Sections != nil && !reflect.DeepEqual(r.Sections, e.Sections) {
		errs = append(errs, fmt.Errorf("sections mismatch:\n  got  %v\n  want %v", r.Sections, e.Sections))
	}
	return errors.Join(errs...)
}

// WriteText prints the trace and final arrangement.
func (r *Result) WriteText(w io.Writer) error {
	if r.Name != "" {
		if _, err := fmt.Fprintf(w, "# %s\n", r.Name); err != nil {
			return err
		}
	}
	for _, line := range r.Trace {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	for i, items := range r.Sections {
		if _, err := fmt.Fprintf(w, "section %d: %v\n", i, items); err != nil {
			return err
		}
	}
	if r.InProgress {
		if _, err := fmt.Fprintf(w, "transaction still %s\n", r.Phase); err != nil {
			return err
		}
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
