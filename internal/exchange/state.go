package exchange

import "github.com/1broseidon/gridswap/internal/grid"

// Phase represents the current phase of the controller
type Phase int32

const (
	// PhaseIdle means no transaction exists
	PhaseIdle Phase = iota
	// PhaseArmed means an item is caught but nothing has been exchanged
	PhaseArmed
	// PhaseDragging means at least one exchange event has fired
	PhaseDragging
	// PhaseReleasing means the pointer lifted and the release animation runs
	PhaseReleasing
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseArmed:
		return "armed"
	case PhaseDragging:
		return "dragging"
	case PhaseReleasing:
		return "releasing"
	default:
		return "unknown"
	}
}

// transaction is the mutable state of one catch-to-release cycle.
type transaction struct {
	origin    grid.Position
	dragged   grid.Position
	displaced *grid.Position
	lastHit   grid.Position
	offset    grid.Point // From the press point to the caught item's centre
}

// TransactionState is a read-only copy of the active transaction.
type TransactionState struct {
	Phase         Phase
	Origin        grid.Position
	Dragged       grid.Position
	Displaced     *grid.Position
	LastHit       grid.Position
	PointerOffset grid.Point
}

func (t *transaction) snapshot(phase Phase) *TransactionState {
	s := &TransactionState{
		Phase:         phase,
		Origin:        t.origin,
		Dragged:       t.dragged,
		LastHit:       t.lastHit,
		PointerOffset: t.offset,
	}
	if t.displaced != nil {
		d := *t.displaced
		s.Displaced = &d
	}
	return s
}
