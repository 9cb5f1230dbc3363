package exchange

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/1broseidon/gridswap/internal/gesture"
	"github.com/1broseidon/gridswap/internal/grid"
)

// 2x3 grid of 10x10 items:
// (0,0) (0,1) (0,2)
// (1,0) (1,1) (1,2)
func testFrames() grid.Frames {
	return grid.FlowLayout{Columns: 3, ItemWidth: 10, ItemHeight: 10}.Frames([]int{3, 3})
}

func center(section, item int) grid.Point {
	return grid.Point{X: item*10 + 5, Y: section*10 + 5}
}

func pos(section, item int) grid.Position {
	return grid.Position{Section: section, Item: item}
}

type recordingDelegate struct {
	calls []string

	denyBegin    map[grid.Position]bool
	denyDisplace map[grid.Position]bool
}

func (d *recordingDelegate) DidExchange(p1, p2 grid.Position) {
	d.calls = append(d.calls, fmt.Sprintf("exchange %v %v", p1, p2))
}

func (d *recordingDelegate) DidFinishExchangeEvent() {
	d.calls = append(d.calls, "event")
}

func (d *recordingDelegate) DidFinishTransaction(p1, p2 grid.Position) {
	d.calls = append(d.calls, fmt.Sprintf("finished %v %v", p1, p2))
}

func (d *recordingDelegate) DidCancelTransaction() {
	d.calls = append(d.calls, "cancelled")
}

func (d *recordingDelegate) CanBeginTransaction(p grid.Position) bool {
	return !d.denyBegin[p]
}

func (d *recordingDelegate) CanDisplace(candidate, _ grid.Position) bool {
	return !d.denyDisplace[candidate]
}

func (d *recordingDelegate) count(prefix string) int {
	n := 0
	for _, c := range d.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

// manualScheduler collects scheduled work until the test runs it.
type manualScheduler struct {
	pending []func()
}

func (s *manualScheduler) schedule(_ time.Duration, fn func()) {
	s.pending = append(s.pending, fn)
}

func (s *manualScheduler) runAll() {
	for len(s.pending) > 0 {
		fn := s.pending[0]
		s.pending = s.pending[1:]
		fn()
	}
}

func newTestController(d Delegate, mutate func(*Options)) (*Controller, *Layout) {
	layout := NewLayout()
	opts := DefaultOptions()
	opts.Schedule = AfterFunc
	opts.AnimationDuration = 0
	if mutate != nil {
		mutate(&opts)
	}
	return NewController(d, testFrames(), layout, opts), layout
}

func TestController_EndToEndScenario(t *testing.T) {
	d := &recordingDelegate{}
	c, _ := newTestController(d, nil)

	c.Catch(center(0, 0))
	c.Drag(center(0, 1))
	c.Drag(center(1, 2))
	c.Release(center(1, 2))

	want := []string{
		"exchange (0,0) (0,1)",
		"event",
		"exchange (0,1) (0,0)",
		"exchange (0,0) (1,2)",
		"event",
		"finished (0,0) (1,2)",
	}
	if !reflect.DeepEqual(d.calls, want) {
		t.Fatalf("calls =\n%v\nwant\n%v", d.calls, want)
	}
	if c.TransactionInProgress() {
		t.Fatalf("transaction should be finished")
	}
	if c.Phase() != PhaseIdle {
		t.Fatalf("phase = %v, want idle", c.Phase())
	}
}

func TestController_IdempotentReHit(t *testing.T) {
	d := &recordingDelegate{}
	c, _ := newTestController(d, nil)

	c.Catch(center(0, 0))
	c.Drag(center(0, 1))
	c.Drag(grid.Point{X: 11, Y: 1}) // Same cell, different point
	c.Drag(center(0, 1))

	if got := d.count("exchange"); got != 1 {
		t.Fatalf("exchange calls = %d, want 1 (%v)", got, d.calls)
	}
	if got := d.count("event"); got != 1 {
		t.Fatalf("event calls = %d, want 1", got)
	}
}

func TestController_WiggleInsideOriginFiresNothing(t *testing.T) {
	d := &recordingDelegate{}
	c, _ := newTestController(d, nil)

	c.Catch(center(0, 0))
	c.Drag(grid.Point{X: 1, Y: 1})
	c.Drag(grid.Point{X: 8, Y: 8})

	if len(d.calls) != 0 {
		t.Fatalf("expected no calls, got %v", d.calls)
	}
	if c.Phase() != PhaseArmed {
		t.Fatalf("phase = %v, want armed", c.Phase())
	}
}

func TestController_UndoThenNewOrdering(t *testing.T) {
	d := &recordingDelegate{}
	c, _ := newTestController(d, nil)
	A, B, C := pos(0, 0), pos(0, 1), pos(0, 2)

	c.Catch(center(0, 0))
	c.Drag(center(0, 1))
	d.calls = nil
	c.Drag(center(0, 2))

	want := []string{
		fmt.Sprintf("exchange %v %v", B, A),
		fmt.Sprintf("exchange %v %v", A, C),
		"event",
	}
	if !reflect.DeepEqual(d.calls, want) {
		t.Fatalf("calls = %v, want %v", d.calls, want)
	}
}

// applyExchanges replays exchange calls over a labelled model.
func applyExchanges(t *testing.T, calls []string, model map[grid.Position]string) {
	t.Helper()
	for _, call := range calls {
		var s1, i1, s2, i2 int
		if _, err := fmt.Sscanf(call, "exchange (%d,%d) (%d,%d)", &s1, &i1, &s2, &i2); err != nil {
			continue
		}
		p1, p2 := pos(s1, i1), pos(s2, i2)
		model[p1], model[p2] = model[p2], model[p1]
	}
}

func TestController_NoOpRelease(t *testing.T) {
	d := &recordingDelegate{}
	c, _ := newTestController(d, nil)

	c.Catch(center(0, 0))
	c.Drag(center(0, 1))
	c.Drag(center(0, 0))
	c.Release(center(0, 0))

	last := d.calls[len(d.calls)-1]
	if last != "finished (0,0) (0,0)" {
		t.Fatalf("last call = %q, want finished with identical positions", last)
	}

	model := map[grid.Position]string{pos(0, 0): "a", pos(0, 1): "b"}
	applyExchanges(t, d.calls, model)
	if model[pos(0, 0)] != "a" || model[pos(0, 1)] != "b" {
		t.Fatalf("net exchanges are not the identity: %v", model)
	}
}

func TestController_ReturnToOriginThenNewTargetIsSingleSwap(t *testing.T) {
	d := &recordingDelegate{}
	c, _ := newTestController(d, nil)

	c.Catch(center(0, 0))
	c.Drag(center(0, 1))
	c.Drag(center(0, 0))
	c.Drag(center(0, 2))
	c.Release(center(0, 2))

	model := map[grid.Position]string{pos(0, 0): "a", pos(0, 1): "b", pos(0, 2): "c"}
	applyExchanges(t, d.calls, model)
	want := map[grid.Position]string{pos(0, 0): "c", pos(0, 1): "b", pos(0, 2): "a"}
	if !reflect.DeepEqual(model, want) {
		t.Fatalf("model = %v, want %v", model, want)
	}
	if last := d.calls[len(d.calls)-1]; last != "finished (0,0) (0,2)" {
		t.Fatalf("last call = %q", last)
	}
}

func TestController_RandomWalkNetEffectIsOriginDraggedSwap(t *testing.T) {
	d := &recordingDelegate{}
	c, _ := newTestController(d, nil)

	walk := []grid.Position{pos(0, 1), pos(1, 1), pos(0, 0), pos(1, 2), pos(1, 2), pos(0, 2), pos(1, 0)}
	c.Catch(center(0, 0))
	for _, p := range walk {
		c.Drag(center(p.Section, p.Item))
	}
	state, ok := c.Snapshot()
	if !ok {
		t.Fatalf("expected active transaction")
	}
	if state.Displaced == nil || *state.Displaced != state.Origin {
		t.Fatalf("displaced = %v, want origin %v", state.Displaced, state.Origin)
	}
	c.Release(center(1, 0))

	model := map[grid.Position]string{}
	for s := 0; s < 2; s++ {
		for i := 0; i < 3; i++ {
			model[pos(s, i)] = fmt.Sprintf("%d%d", s, i)
		}
	}
	applyExchanges(t, d.calls, model)

	for p, label := range model {
		want := fmt.Sprintf("%d%d", p.Section, p.Item)
		switch p {
		case pos(0, 0):
			want = "10"
		case pos(1, 0):
			want = "00"
		}
		if label != want {
			t.Fatalf("position %v holds %q, want %q (model %v)", p, label, want, model)
		}
	}
}

func TestController_SingleActiveTransaction(t *testing.T) {
	d := &recordingDelegate{}
	c, _ := newTestController(d, nil)

	c.Catch(center(0, 0))
	first, _ := c.Snapshot()
	v := c.Visual()

	c.Catch(center(1, 1))

	second, _ := c.Snapshot()
	if second.Origin != first.Origin {
		t.Fatalf("second catch replaced transaction: origin %v -> %v", first.Origin, second.Origin)
	}
	if c.Visual() != v {
		t.Fatalf("second catch created a new visual")
	}
	if len(d.calls) != 0 {
		t.Fatalf("second catch fired callbacks: %v", d.calls)
	}
}

func TestController_CancelDoesNotFinish(t *testing.T) {
	d := &recordingDelegate{}
	c, layout := newTestController(d, nil)

	c.Catch(center(0, 0))
	v := c.Visual()
	c.Drag(center(0, 1))
	c.Cancel()
	c.Cancel()
	c.Release(center(0, 1))

	if got := d.count("cancelled"); got != 1 {
		t.Fatalf("cancelled calls = %d, want 1", got)
	}
	if got := d.count("finished"); got != 0 {
		t.Fatalf("finished calls = %d, want 0", got)
	}
	// Default policy keeps the host's exchanges.
	if got := d.count("exchange"); got != 1 {
		t.Fatalf("exchange calls = %d, want 1", got)
	}
	if _, hidden := layout.Hidden(); hidden {
		t.Fatalf("item still hidden after cancel")
	}
	if _, dimmed := layout.Dimmed(); dimmed {
		t.Fatalf("item still dimmed after cancel")
	}
	if !v.Removed() {
		t.Fatalf("visual not removed after cancel")
	}
	if c.TransactionInProgress() {
		t.Fatalf("transaction still in progress after cancel")
	}
}

func TestController_CancelRevertRestoresOrigin(t *testing.T) {
	d := &recordingDelegate{}
	c, _ := newTestController(d, func(o *Options) { o.CancelPolicy = CancelRevert })

	c.Catch(center(0, 0))
	c.Drag(center(0, 1))
	c.Drag(center(1, 1))
	c.Cancel()

	want := []string{
		"exchange (0,0) (0,1)",
		"event",
		"exchange (0,1) (0,0)",
		"exchange (0,0) (1,1)",
		"event",
		"exchange (1,1) (0,0)",
		"cancelled",
	}
	if !reflect.DeepEqual(d.calls, want) {
		t.Fatalf("calls = %v, want %v", d.calls, want)
	}

	model := map[grid.Position]string{pos(0, 0): "a", pos(0, 1): "b", pos(1, 1): "e"}
	applyExchanges(t, d.calls, model)
	if model[pos(0, 0)] != "a" || model[pos(0, 1)] != "b" || model[pos(1, 1)] != "e" {
		t.Fatalf("revert left model changed: %v", model)
	}
}

func TestController_CancelRevertWithoutNetSwapSendsNothing(t *testing.T) {
	d := &recordingDelegate{}
	c, _ := newTestController(d, func(o *Options) { o.CancelPolicy = CancelRevert })

	c.Catch(center(0, 0))
	c.Cancel()

	if !reflect.DeepEqual(d.calls, []string{"cancelled"}) {
		t.Fatalf("calls = %v", d.calls)
	}
}

func TestController_PermissionDenials(t *testing.T) {
	d := &recordingDelegate{
		denyBegin:    map[grid.Position]bool{pos(0, 0): true},
		denyDisplace: map[grid.Position]bool{pos(0, 2): true},
	}
	c, layout := newTestController(d, nil)

	c.Catch(center(0, 0))
	if c.TransactionInProgress() || c.Visual() != nil || layout.Invalidations() != 0 {
		t.Fatalf("denied catch had side effects")
	}

	c.Catch(center(0, 1))
	c.Drag(center(0, 2))
	if len(d.calls) != 0 {
		t.Fatalf("denied displacement fired %v", d.calls)
	}
	state, _ := c.Snapshot()
	if state.LastHit != pos(0, 1) {
		t.Fatalf("last hit changed to %v after denial", state.LastHit)
	}

	c.Drag(center(1, 2))
	if got := d.count("exchange"); got != 1 {
		t.Fatalf("exchange calls = %d, want 1", got)
	}
}

func TestController_PointerOutsideItems(t *testing.T) {
	d := &recordingDelegate{}
	c, _ := newTestController(d, nil)

	c.Catch(grid.Point{X: 100, Y: 100})
	if c.TransactionInProgress() {
		t.Fatalf("catch outside items began a transaction")
	}

	c.Catch(center(0, 0))
	c.Drag(center(0, 1))
	c.Drag(grid.Point{X: 500, Y: 500})
	c.Drag(center(0, 1))

	if got := d.count("exchange"); got != 1 {
		t.Fatalf("exchange calls = %d, want 1", got)
	}
	v := c.Visual().State()
	if v.Center != center(0, 1) {
		t.Fatalf("visual centre = %v, want %v", v.Center, center(0, 1))
	}
}

func TestController_PointerOffsetAnchorsVisual(t *testing.T) {
	d := &recordingDelegate{}
	c, _ := newTestController(d, nil)

	c.Catch(grid.Point{X: 2, Y: 3}) // Centre of (0,0) is (5,5)
	state, _ := c.Snapshot()
	if state.PointerOffset != (grid.Point{X: 3, Y: 2}) {
		t.Fatalf("offset = %v, want (3,2)", state.PointerOffset)
	}

	c.Drag(grid.Point{X: 40, Y: 40})
	if got := c.Visual().State().Center; got != (grid.Point{X: 43, Y: 42}) {
		t.Fatalf("visual centre = %v, want (43,42)", got)
	}
}

func TestController_LayoutTracksHiddenAndDimmed(t *testing.T) {
	d := &recordingDelegate{}
	c, layout := newTestController(d, nil)

	c.Catch(center(0, 0))
	if h, ok := layout.Hidden(); !ok || h != pos(0, 0) {
		t.Fatalf("hidden = %v,%v; want (0,0)", h, ok)
	}
	if _, ok := layout.Dimmed(); ok {
		t.Fatalf("nothing should be dimmed before the first exchange")
	}

	c.Drag(center(1, 0))
	if h, _ := layout.Hidden(); h != pos(1, 0) {
		t.Fatalf("hidden = %v, want (1,0)", h)
	}
	if dm, ok := layout.Dimmed(); !ok || dm != pos(0, 0) {
		t.Fatalf("dimmed = %v,%v; want (0,0)", dm, ok)
	}
	attrs := layout.Attributes(pos(0, 0))
	if attrs.Hidden || attrs.Alpha != c.Options().AlphaForDisplacedItem {
		t.Fatalf("attributes of displaced item = %+v", attrs)
	}

	c.Drag(center(0, 0))
	if _, ok := layout.Dimmed(); ok {
		t.Fatalf("dimming should clear when the displaced item goes home")
	}
}

type deferredRelease struct {
	recordingDelegate
	done    *Completion
	target  grid.Point
	origin  grid.Position
	visible []bool // Visual still on screen at each invalidation after release
	layout  *Layout
	visual  *Visual
}

func (d *deferredRelease) AnimateRelease(v *Visual, target grid.Point, origin grid.Position, done *Completion) {
	d.done = done
	d.target = target
	d.origin = origin
	d.visual = v
}

func TestController_ReleaseWaitsForCompletion(t *testing.T) {
	d := &deferredRelease{}
	c, layout := newTestController(d, nil)
	layout.OnInvalidate = func() {
		if d.visual != nil {
			d.visible = append(d.visible, !d.visual.Removed())
		}
	}

	c.Catch(center(0, 0))
	c.Drag(center(0, 1))
	c.Release(center(0, 1))

	if c.Phase() != PhaseReleasing || !c.TransactionInProgress() {
		t.Fatalf("phase = %v, in progress = %v; want releasing, true", c.Phase(), c.TransactionInProgress())
	}
	if d.count("finished") != 0 {
		t.Fatalf("finished before completion")
	}
	if d.target != center(0, 1) || d.origin != pos(0, 0) {
		t.Fatalf("release target %v origin %v", d.target, d.origin)
	}

	// A new catch is rejected while releasing.
	c.Catch(center(1, 1))
	if s, _ := c.Snapshot(); s.Origin != pos(0, 0) {
		t.Fatalf("catch during release replaced transaction")
	}

	d.done.Done(50 * time.Millisecond)
	d.done.Done(50 * time.Millisecond)

	if got := d.count("finished"); got != 1 {
		t.Fatalf("finished calls = %d, want 1", got)
	}
	if !reflect.DeepEqual(d.visible, []bool{true}) {
		t.Fatalf("visual visibility at unhide = %v, want [true]", d.visible)
	}
	vs := d.visual.State()
	if !vs.Removed || vs.Fade != 50*time.Millisecond {
		t.Fatalf("visual state after completion = %+v", vs)
	}
	if _, hidden := layout.Hidden(); hidden {
		t.Fatalf("item still hidden after completion")
	}
}

func TestController_CompletionAfterCancelIsStale(t *testing.T) {
	d := &deferredRelease{}
	c, _ := newTestController(d, nil)

	c.Catch(center(0, 0))
	c.Release(center(0, 0))
	c.Cancel()
	d.done.Done(0)

	if d.count("finished") != 0 || d.count("cancelled") != 1 {
		t.Fatalf("calls = %v", d.calls)
	}

	// The controller is usable again.
	c.Catch(center(1, 1))
	if !c.TransactionInProgress() {
		t.Fatalf("could not start a new transaction")
	}
}

func TestController_BacklogDelayDefersReleaseAnimation(t *testing.T) {
	d := &deferredRelease{}
	sched := &manualScheduler{}
	c, _ := newTestController(d, func(o *Options) {
		o.AnimationBacklogDelay = 100 * time.Millisecond
		o.Schedule = sched.schedule
	})

	c.Catch(center(0, 0))
	sched.runAll() // Catch blink
	c.Release(center(0, 0))
	if d.done != nil {
		t.Fatalf("release animation requested before backlog delay")
	}
	sched.runAll()
	if d.done == nil {
		t.Fatalf("release animation not requested after backlog delay")
	}
	d.done.Done(0)
	if last := d.calls[len(d.calls)-1]; last != "finished (0,0) (0,0)" {
		t.Fatalf("last call = %q", last)
	}
}

func TestController_DefaultAnimationsUseScheduler(t *testing.T) {
	d := &recordingDelegate{}
	sched := &manualScheduler{}
	c, _ := newTestController(d, func(o *Options) {
		o.Schedule = sched.schedule
		o.AnimationDuration = 200 * time.Millisecond
	})

	c.Catch(center(0, 0))
	v := c.Visual()
	if s := v.State(); s.Scale != c.Options().CatchScale || s.Alpha != c.Options().SnapshotAlpha {
		t.Fatalf("caught visual state = %+v", s)
	}
	sched.runAll()
	if s := v.State(); s.Scale != 1 {
		t.Fatalf("scale after catch blink = %v, want 1", s.Scale)
	}

	c.Drag(center(0, 2))
	c.Release(center(0, 2))
	if s := v.State(); s.Scale != c.Options().ReleaseScale || s.Center != center(0, 2) {
		t.Fatalf("releasing visual state = %+v", s)
	}
	if d.count("finished") != 0 {
		t.Fatalf("finished before release animation ran")
	}
	sched.runAll()
	if last := d.calls[len(d.calls)-1]; last != "finished (0,0) (0,2)" {
		t.Fatalf("last call = %q", last)
	}
	if !v.Removed() {
		t.Fatalf("visual not removed")
	}
}

type reentrantDelegate struct {
	recordingDelegate
	c *Controller
}

func (d *reentrantDelegate) DidFinishTransaction(p1, p2 grid.Position) {
	d.recordingDelegate.DidFinishTransaction(p1, p2)
	// Start the next transaction from inside the callback.
	d.c.Catch(center(1, 1))
}

func TestController_ReentrantCallsAreSerialised(t *testing.T) {
	d := &reentrantDelegate{}
	c, _ := newTestController(d, nil)
	d.c = c

	c.Catch(center(0, 0))
	c.Release(center(0, 0))

	s, ok := c.Snapshot()
	if !ok || s.Origin != pos(1, 1) {
		t.Fatalf("re-entrant catch did not start a transaction: %+v %v", s, ok)
	}
}

func TestController_HandleGestureFromRecognizer(t *testing.T) {
	d := &recordingDelegate{}
	c, _ := newTestController(d, nil)
	lp := gesture.NewLongPress(150*time.Millisecond, 10, c.HandleGesture)

	t0 := time.Unix(0, 0)
	lp.Down(center(0, 0), t0)
	lp.Tick(t0.Add(150 * time.Millisecond))
	lp.Move(center(1, 0), t0.Add(200*time.Millisecond))
	lp.Up(center(1, 0), t0.Add(300*time.Millisecond))

	want := []string{"exchange (0,0) (1,0)", "event", "finished (0,0) (1,0)"}
	if !reflect.DeepEqual(d.calls, want) {
		t.Fatalf("calls = %v, want %v", d.calls, want)
	}
}

type catchRectDelegate struct {
	recordingDelegate
}

func (d *catchRectDelegate) CatchRect(_ grid.Position, frame grid.Rect) (grid.Rect, bool) {
	// Only the top-left quarter starts a drag.
	return grid.Rect{X: frame.X, Y: frame.Y, Width: frame.Width / 2, Height: frame.Height / 2}, true
}

func TestController_CatchRectRestrictsBegin(t *testing.T) {
	d := &catchRectDelegate{}
	c, _ := newTestController(d, nil)

	c.Catch(grid.Point{X: 8, Y: 8})
	if c.TransactionInProgress() {
		t.Fatalf("press outside catch rect began a transaction")
	}
	c.Catch(grid.Point{X: 1, Y: 1})
	if !c.TransactionInProgress() {
		t.Fatalf("press inside catch rect did not begin a transaction")
	}
}

func TestParseCancelPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    CancelPolicy
		wantErr bool
	}{
		{"", CancelKeep, false},
		{"keep", CancelKeep, false},
		{" Revert ", CancelRevert, false},
		{"undo", "", true},
	}
	for _, tt := range tests {
		got, err := ParseCancelPolicy(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseCancelPolicy(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestPhaseString(t *testing.T) {
	for p, want := range map[Phase]string{
		PhaseIdle: "idle", PhaseArmed: "armed", PhaseDragging: "dragging", PhaseReleasing: "releasing", Phase(9): "unknown",
	} {
		if got := p.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", int(p), got, want)
		}
	}
}
