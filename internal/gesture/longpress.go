package gesture

import (
	"time"

	"github.com/1broseidon/gridswap/internal/grid"
)

// Defaults for LongPress.
const (
	DefaultMinimumPressDuration = 150 * time.Millisecond
	DefaultAllowableMovement    = 10
)

// State is the state reported with a gesture event.
type State int

const (
	// StateBegan is reported once the press has been held long enough
	StateBegan State = iota
	// StateChanged is reported for each pointer move after StateBegan
	StateChanged
	// StateEnded is reported when the pointer lifts after StateBegan
	StateEnded
	// StateCancelled is reported when the gesture is cancelled after StateBegan
	StateCancelled
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateBegan:
		return "began"
	case StateChanged:
		return "changed"
	case StateEnded:
		return "ended"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Event is one recognised gesture transition.
type Event struct {
	State State
	Point grid.Point
	Time  time.Time
}

// Handler receives recognised gesture events.
type Handler func(Event)

// LongPress turns raw pointer samples into a long-press-and-drag gesture.
//
// The press begins once the pointer has been held for MinimumPressDuration
// without drifting more than AllowableMovement from where it went down. The
// duration is checked on every sample and on Tick, so hosts without a
// steady motion stream should call Tick from a timer. After the gesture has
// begun, movement is unrestricted.
type LongPress struct {
	MinimumPressDuration time.Duration
	AllowableMovement    int

	handler Handler

	down      bool
	began     bool
	start     grid.Point
	last      grid.Point
	startTime time.Time
}

// NewLongPress creates a recognizer that reports to handler.
func NewLongPress(minimum time.Duration, allowable int, handler Handler) *LongPress {
	if minimum < 0 {
		minimum = 0
	}
	if allowable < 0 {
		allowable = 0
	}
	return &LongPress{
		MinimumPressDuration: minimum,
		AllowableMovement:    allowable,
		handler:              handler,
	}
}

// Active reports whether the gesture has begun and not yet finished.
func (r *LongPress) Active() bool {
	return r.began
}

// Pressed reports whether the pointer is down, begun or not.
func (r *LongPress) Pressed() bool {
	return r.down
}

// Down records a pointer press. A press while already down restarts the
// recognizer, cancelling any gesture in progress.
func (r *LongPress) Down(p grid.Point, t time.Time) {
	if r.down {
		r.Cancel()
	}
	r.down = true
	r.began = false
	r.start = p
	r.last = p
	r.startTime = t
	if r.MinimumPressDuration == 0 {
		r.begin(t)
	}
}

// Move records pointer motion.
func (r *LongPress) Move(p grid.Point, t time.Time) {
	if !r.down {
		return
	}
	r.last = p

	if r.began {
		r.emit(StateChanged, p, t)
		return
	}

	if distance(p, r.start) > r.AllowableMovement {
		r.reset()
		return
	}
	r.Tick(t)
}

// Up records the pointer lifting.
func (r *LongPress) Up(p grid.Point, t time.Time) {
	if !r.down {
		return
	}
	r.last = p
	if !r.began {
		// Held too briefly; the press fails without reporting anything.
		r.Tick(t)
	}
	if r.began {
		r.reset()
		r.emit(StateEnded, p, t)
		return
	}
	r.reset()
}

// Tick begins the gesture if the press has been held long enough.
func (r *LongPress) Tick(t time.Time) {
	if !r.down || r.began {
		return
	}
	if t.Sub(r.startTime) >= r.MinimumPressDuration {
		r.begin(t)
	}
}

// Cancel aborts the gesture. StateCancelled is reported only if it had begun.
func (r *LongPress) Cancel() {
	began := r.began
	last := r.last
	r.reset()
	if began {
		r.emit(StateCancelled, last, time.Time{})
	}
}

func (r *LongPress) begin(t time.Time) {
	r.began = true
	r.emit(StateBegan, r.last, t)
}

func (r *LongPress) reset() {
	r.down = false
	r.began = false
}

func (r *LongPress) emit(state State, p grid.Point, t time.Time) {
	if r.handler != nil {
		r.handler(Event{State: state, Point: p, Time: t})
	}
}

// distance is the Chebyshev distance, matching square cell geometry.
func distance(a, b grid.Point) int {
	return max(abs(a.X-b.X), abs(a.Y-b.Y))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
