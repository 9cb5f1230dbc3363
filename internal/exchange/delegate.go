package exchange

import (
	"sync"
	"time"

	"github.com/1broseidon/gridswap/internal/grid"
)

// Delegate receives the outcome of exchange transactions. The host owns the
// model and must apply every DidExchange to it.
//
// A delegate may additionally implement any of BeginPermitter, Displacer,
// CatchRectProvider, VisualProvider, CatchAnimator and ReleaseAnimator;
// the controller falls back to built-in behaviour for the ones it doesn't.
type Delegate interface {
	// DidExchange is called once per individual exchange. Within one
	// exchange event the undo is always delivered before the new exchange.
	DidExchange(p1, p2 grid.Position)
	// DidFinishExchangeEvent is called after the one or two exchanges of an
	// exchange event.
	DidFinishExchangeEvent()
	// DidFinishTransaction reports the net effect of a released
	// transaction. p1 == p2 when nothing moved.
	DidFinishTransaction(p1, p2 grid.Position)
	// DidCancelTransaction is called instead of DidFinishTransaction when
	// the transaction is cancelled.
	DidCancelTransaction()
}

// BeginPermitter lets the host refuse to start a transaction on an item.
type BeginPermitter interface {
	CanBeginTransaction(pos grid.Position) bool
}

// Displacer lets the host refuse to displace an item. dragged is the slot
// that currently holds the dragged item.
type Displacer interface {
	CanDisplace(candidate, dragged grid.Position) bool
}

// CatchRectProvider restricts where inside an item a press may begin a
// transaction. Returning false allows the whole frame.
type CatchRectProvider interface {
	CatchRect(pos grid.Position, frame grid.Rect) (grid.Rect, bool)
}

// VisualProvider builds the floating visual for a caught item.
type VisualProvider interface {
	CatchVisual(pos grid.Position, frame grid.Rect) *Visual
}

// CatchAnimator replaces the default catch blink.
type CatchAnimator interface {
	AnimateCatch(v *Visual)
}

// ReleaseAnimator replaces the default release animation. The host must
// call done.Done exactly once when its animation finishes; until then the
// transaction stays in progress.
type ReleaseAnimator interface {
	AnimateRelease(v *Visual, target grid.Point, origin grid.Position, done *Completion)
}

// Completion is the continuation handed to a release animation.
type Completion struct {
	once sync.Once
	fire func(fade time.Duration)
}

func newCompletion(fire func(fade time.Duration)) *Completion {
	return &Completion{fire: fire}
}

// Done ends the release. fade is how long the floating visual should take
// to disappear. Calls after the first are ignored, as are calls on a
// completion whose transaction was cancelled in the meantime.
func (c *Completion) Done(fade time.Duration) {
	if c == nil || c.fire == nil {
		return
	}
	c.once.Do(func() { c.fire(fade) })
}
