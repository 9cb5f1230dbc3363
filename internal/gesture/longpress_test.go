package gesture

import (
	"reflect"
	"testing"
	"time"

	"github.com/1broseidon/gridswap/internal/grid"
)

type recorder struct {
	events []Event
}

func (r *recorder) handle(ev Event) {
	r.events = append(r.events, ev)
}

func (r *recorder) states() []State {
	out := make([]State, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.State)
	}
	return out
}

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

func TestLongPress_BeginsAfterDuration(t *testing.T) {
	rec := &recorder{}
	lp := NewLongPress(150*time.Millisecond, 10, rec.handle)

	lp.Down(grid.Point{X: 5, Y: 5}, at(0))
	lp.Tick(at(100))
	if len(rec.events) != 0 {
		t.Fatalf("began too early: %v", rec.states())
	}

	lp.Tick(at(150))
	lp.Move(grid.Point{X: 40, Y: 5}, at(200))
	lp.Move(grid.Point{X: 80, Y: 5}, at(250))
	lp.Up(grid.Point{X: 80, Y: 5}, at(300))

	want := []State{StateBegan, StateChanged, StateChanged, StateEnded}
	if got := rec.states(); !reflect.DeepEqual(got, want) {
		t.Fatalf("states = %v, want %v", got, want)
	}
	if rec.events[0].Point != (grid.Point{X: 5, Y: 5}) {
		t.Fatalf("began at %v, want press point", rec.events[0].Point)
	}
	if lp.Active() || lp.Pressed() {
		t.Fatalf("recognizer should be idle after Up")
	}
}

func TestLongPress_MoveAfterDurationBegins(t *testing.T) {
	rec := &recorder{}
	lp := NewLongPress(150*time.Millisecond, 10, rec.handle)

	lp.Down(grid.Point{X: 0, Y: 0}, at(0))
	lp.Move(grid.Point{X: 3, Y: 2}, at(160))

	if got := rec.states(); !reflect.DeepEqual(got, []State{StateBegan}) {
		t.Fatalf("states = %v, want [began]", got)
	}
	if rec.events[0].Point != (grid.Point{X: 3, Y: 2}) {
		t.Fatalf("began at %v, want latest point", rec.events[0].Point)
	}
}

func TestLongPress_FailsWhenMovedTooFar(t *testing.T) {
	rec := &recorder{}
	lp := NewLongPress(150*time.Millisecond, 10, rec.handle)

	lp.Down(grid.Point{X: 0, Y: 0}, at(0))
	lp.Move(grid.Point{X: 11, Y: 0}, at(50))
	lp.Tick(at(500))
	lp.Up(grid.Point{X: 11, Y: 0}, at(600))

	if len(rec.events) != 0 {
		t.Fatalf("expected no events, got %v", rec.states())
	}
}

func TestLongPress_ShortTapReportsNothing(t *testing.T) {
	rec := &recorder{}
	lp := NewLongPress(150*time.Millisecond, 10, rec.handle)

	lp.Down(grid.Point{X: 0, Y: 0}, at(0))
	lp.Up(grid.Point{X: 0, Y: 0}, at(40))

	if len(rec.events) != 0 {
		t.Fatalf("expected no events, got %v", rec.states())
	}
}

func TestLongPress_UpAfterHoldWithoutTickBeginsAndEnds(t *testing.T) {
	rec := &recorder{}
	lp := NewLongPress(150*time.Millisecond, 10, rec.handle)

	lp.Down(grid.Point{X: 0, Y: 0}, at(0))
	lp.Up(grid.Point{X: 0, Y: 0}, at(400))

	want := []State{StateBegan, StateEnded}
	if got := rec.states(); !reflect.DeepEqual(got, want) {
		t.Fatalf("states = %v, want %v", got, want)
	}
}

func TestLongPress_CancelOnlyReportedAfterBegin(t *testing.T) {
	rec := &recorder{}
	lp := NewLongPress(150*time.Millisecond, 10, rec.handle)

	lp.Down(grid.Point{X: 0, Y: 0}, at(0))
	lp.Cancel()
	if len(rec.events) != 0 {
		t.Fatalf("cancel before begin reported %v", rec.states())
	}

	lp.Down(grid.Point{X: 0, Y: 0}, at(1000))
	lp.Tick(at(1200))
	lp.Cancel()

	want := []State{StateBegan, StateCancelled}
	if got := rec.states(); !reflect.DeepEqual(got, want) {
		t.Fatalf("states = %v, want %v", got, want)
	}
}

func TestLongPress_ZeroDurationBeginsOnDown(t *testing.T) {
	rec := &recorder{}
	lp := NewLongPress(0, 10, rec.handle)

	lp.Down(grid.Point{X: 1, Y: 1}, at(0))
	if got := rec.states(); !reflect.DeepEqual(got, []State{StateBegan}) {
		t.Fatalf("states = %v, want [began]", got)
	}
}

func TestLongPress_SecondDownCancelsFirst(t *testing.T) {
	rec := &recorder{}
	lp := NewLongPress(0, 10, rec.handle)

	lp.Down(grid.Point{X: 1, Y: 1}, at(0))
	lp.Down(grid.Point{X: 9, Y: 9}, at(10))

	want := []State{StateBegan, StateCancelled, StateBegan}
	if got := rec.states(); !reflect.DeepEqual(got, want) {
		t.Fatalf("states = %v, want %v", got, want)
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		StateBegan:     "began",
		StateChanged:   "changed",
		StateEnded:     "ended",
		StateCancelled: "cancelled",
		State(42):      "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
