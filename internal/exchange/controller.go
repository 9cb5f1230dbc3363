package exchange

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/1broseidon/gridswap/internal/gesture"
	"github.com/1broseidon/gridswap/internal/grid"
)

// Resolver maps pointer locations to grid positions and back. grid.Frames
// satisfies it.
type Resolver interface {
	PositionAt(p grid.Point) (grid.Position, bool)
	FrameOf(pos grid.Position) (grid.Rect, bool)
}

// Controller turns a long-press drag into a sequence of pairwise exchanges.
//
// All transitions are serialised: a call that arrives while another is
// running, from any goroutine or re-entrantly from a delegate callback, runs
// after it. Phase, Snapshot and TransactionInProgress never block.
//
// Once released, a transaction stays in progress until the release
// animation's Completion fires. There is no timeout; a ReleaseAnimator that
// never calls Done leaves the controller releasing forever.
type Controller struct {
	delegate Delegate
	resolver Resolver
	layout   LayoutAdapter
	opts     Options
	logger   *slog.Logger

	queue serialQueue

	// Owned by whichever goroutine is draining the queue.
	phase      Phase
	txn        *transaction
	visual     *Visual
	generation uint64

	published     atomic.Pointer[TransactionState]
	currentVisual atomic.Pointer[Visual]
	inProgress    atomic.Bool
}

// NewController creates an idle controller.
func NewController(delegate Delegate, resolver Resolver, layout LayoutAdapter, opts Options) *Controller {
	opts = opts.withDefaults()
	return &Controller{
		delegate: delegate,
		resolver: resolver,
		layout:   layout,
		opts:     opts,
		logger:   opts.Logger,
		phase:    PhaseIdle,
	}
}

// Options returns the controller's configuration.
func (c *Controller) Options() Options {
	return c.opts
}

// TransactionInProgress reports whether a transaction exists, from catch
// until its release animation completes or it is cancelled.
func (c *Controller) TransactionInProgress() bool {
	return c.inProgress.Load()
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	if s := c.published.Load(); s != nil {
		return s.Phase
	}
	return PhaseIdle
}

// Snapshot returns a copy of the active transaction.
func (c *Controller) Snapshot() (TransactionState, bool) {
	s := c.published.Load()
	if s == nil {
		return TransactionState{}, false
	}
	cp := *s
	if s.Displaced != nil {
		d := *s.Displaced
		cp.Displaced = &d
	}
	return cp, true
}

// Visual returns the floating visual of the active transaction, or nil.
func (c *Controller) Visual() *Visual {
	return c.currentVisual.Load()
}

// HandleGesture routes a recognised gesture to Catch, Drag, Release or Cancel.
func (c *Controller) HandleGesture(ev gesture.Event) {
	switch ev.State {
	case gesture.StateBegan:
		c.Catch(ev.Point)
	case gesture.StateChanged:
		c.Drag(ev.Point)
	case gesture.StateEnded:
		c.Release(ev.Point)
	case gesture.StateCancelled:
		c.Cancel()
	}
}

// Catch starts a transaction on the item under p.
func (c *Controller) Catch(p grid.Point) {
	c.queue.do(func() { c.catch(p) })
}

// Drag moves the caught item to p, firing an exchange event if p is over a
// new item.
func (c *Controller) Drag(p grid.Point) {
	c.queue.do(func() { c.drag(p) })
}

// Release ends the drag at p and starts the release animation.
func (c *Controller) Release(p grid.Point) {
	c.queue.do(func() { c.release(p) })
}

// Cancel abandons the transaction.
func (c *Controller) Cancel() {
	c.queue.do(c.cancel)
}

func (c *Controller) catch(p grid.Point) {
	if c.phase != PhaseIdle {
		c.logger.Debug("catch ignored: transaction in progress", "phase", c.phase)
		return
	}

	pos, ok := c.resolver.PositionAt(p)
	if !ok {
		return
	}
	frame, ok := c.resolver.FrameOf(pos)
	if !ok {
		return
	}
	if crp, ok := c.delegate.(CatchRectProvider); ok {
		if rect, ok := crp.CatchRect(pos, frame); ok && !rect.Contains(p) {
			return
		}
	}
	if bp, ok := c.delegate.(BeginPermitter); ok && !bp.CanBeginTransaction(pos) {
		c.logger.Debug("catch denied", "position", pos)
		return
	}

	c.generation++
	c.txn = &transaction{
		origin:  pos,
		dragged: pos,
		lastHit: pos,
		offset:  frame.Center().Sub(p),
	}
	c.setPhase(PhaseArmed)
	c.inProgress.Store(true)

	c.visual = c.catchVisual(pos, frame)
	c.currentVisual.Store(c.visual)
	c.animateCatch(c.visual)

	c.layout.HideItem(pos)
	c.layout.SetDimmedPosition(nil, c.opts.AlphaForDisplacedItem)
	c.layout.InvalidateLayout()

	c.logger.Debug("transaction armed", "origin", pos)
}

func (c *Controller) drag(p grid.Point) {
	if c.phase != PhaseArmed && c.phase != PhaseDragging {
		return
	}
	txn := c.txn
	c.visual.MoveTo(p.Add(txn.offset))

	hit, ok := c.resolver.PositionAt(p)
	if !ok || hit == txn.lastHit || hit == txn.dragged {
		return
	}
	if d, ok := c.delegate.(Displacer); ok && !d.CanDisplace(hit, txn.dragged) {
		return
	}
	c.exchangeEvent(hit)
}

// exchangeEvent swaps the dragged item into hit, first undoing the previous
// displacement unless hit is the displaced slot itself.
func (c *Controller) exchangeEvent(hit grid.Position) {
	txn := c.txn

	if txn.displaced != nil && *txn.displaced != hit {
		undo := *txn.displaced
		c.delegate.DidExchange(txn.dragged, undo)
		txn.dragged = undo
		txn.displaced = nil
	}

	previous := txn.dragged
	c.delegate.DidExchange(previous, hit)
	if txn.displaced != nil && *txn.displaced == hit {
		// Moving back onto the displaced slot puts its item home.
		txn.displaced = nil
	} else {
		txn.displaced = &previous
	}
	txn.dragged = hit
	txn.lastHit = hit
	c.setPhase(PhaseDragging)

	c.layout.HideItem(txn.dragged)
	c.layout.SetDimmedPosition(txn.displaced, c.opts.AlphaForDisplacedItem)
	c.layout.InvalidateLayout()

	c.logger.Debug("exchange event", "dragged", txn.dragged, "displaced", txn.displaced)
	c.delegate.DidFinishExchangeEvent()
}

func (c *Controller) release(p grid.Point) {
	if c.phase != PhaseArmed && c.phase != PhaseDragging {
		return
	}
	txn := c.txn
	c.visual.MoveTo(p.Add(txn.offset))
	c.setPhase(PhaseReleasing)

	target := c.visual.State().Center
	if frame, ok := c.resolver.FrameOf(txn.dragged); ok {
		target = frame.Center()
	}
	gen := c.generation

	if c.opts.AnimationBacklogDelay > 0 {
		c.opts.Schedule(c.opts.AnimationBacklogDelay, func() {
			c.queue.do(func() {
				if c.generation != gen || c.phase != PhaseReleasing {
					return
				}
				c.animateRelease(target, gen)
			})
		})
		return
	}
	c.animateRelease(target, gen)
}

func (c *Controller) animateRelease(target grid.Point, gen uint64) {
	done := newCompletion(func(fade time.Duration) {
		c.queue.do(func() { c.finishRelease(gen, fade) })
	})
	origin := c.txn.origin

	if ra, ok := c.delegate.(ReleaseAnimator); ok {
		ra.AnimateRelease(c.visual, target, origin, done)
		return
	}

	v := c.visual
	v.MoveTo(target)
	d := c.opts.AnimationDuration
	blink(v, c.opts.ReleaseScale, d, c.opts.Schedule, func() { done.Done(d) })
}

func (c *Controller) finishRelease(gen uint64, fade time.Duration) {
	if c.generation != gen || c.phase != PhaseReleasing {
		c.logger.Debug("stale release completion ignored")
		return
	}

	// Unhide while the visual still covers the slot, then drop the visual.
	c.restoreLayout()
	c.visual.Remove(fade)

	origin, dragged := c.txn.origin, c.txn.dragged
	c.clear()

	c.logger.Debug("transaction finished", "origin", origin, "final", dragged)
	c.delegate.DidFinishTransaction(origin, dragged)
}

func (c *Controller) cancel() {
	if c.phase == PhaseIdle {
		return
	}
	txn := c.txn

	if c.opts.CancelPolicy == CancelRevert && txn.dragged != txn.origin {
		c.delegate.DidExchange(txn.dragged, txn.origin)
	}

	c.restoreLayout()
	c.visual.Remove(0)
	c.clear()

	c.logger.Debug("transaction cancelled", "origin", txn.origin, "dragged", txn.dragged, "policy", c.opts.CancelPolicy)
	c.delegate.DidCancelTransaction()
}

func (c *Controller) restoreLayout() {
	c.layout.UnhideItem()
	c.layout.SetDimmedPosition(nil, c.opts.AlphaForDisplacedItem)
	c.layout.InvalidateLayout()
}

// clear returns to idle. Bumping the generation turns any outstanding
// completion or backlog timer into a no-op.
func (c *Controller) clear() {
	c.generation++
	c.txn = nil
	c.visual = nil
	c.phase = PhaseIdle
	c.published.Store(nil)
	c.currentVisual.Store(nil)
	c.inProgress.Store(false)
}

func (c *Controller) setPhase(p Phase) {
	c.phase = p
	c.published.Store(c.txn.snapshot(p))
}

func (c *Controller) catchVisual(pos grid.Position, frame grid.Rect) *Visual {
	if vp, ok := c.delegate.(VisualProvider); ok {
		if v := vp.CatchVisual(pos, frame); v != nil {
			return v
		}
	}
	return NewVisual(pos, frame, c.opts.SnapshotAlpha, c.opts.SnapshotBackground)
}

func (c *Controller) animateCatch(v *Visual) {
	if ca, ok := c.delegate.(CatchAnimator); ok {
		ca.AnimateCatch(v)
		return
	}
	blink(v, c.opts.CatchScale, c.opts.AnimationDuration, c.opts.Schedule, nil)
}
