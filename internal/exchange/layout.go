package exchange

import (
	"sync"

	"github.com/1broseidon/gridswap/internal/grid"
)

// LayoutAdapter is the part of the rendering surface the controller drives.
// Hide and dim requests take effect on the next InvalidateLayout.
type LayoutAdapter interface {
	HideItem(pos grid.Position)
	UnhideItem()
	// SetDimmedPosition dims pos to alpha; nil clears the dimming.
	SetDimmedPosition(pos *grid.Position, alpha float64)
	InvalidateLayout()
}

// ItemAttributes describes how one item should be drawn.
type ItemAttributes struct {
	Hidden bool
	Alpha  float64
}

type layoutState struct {
	hidden   *grid.Position
	dimmed   *grid.Position
	dimAlpha float64
}

// Layout is a LayoutAdapter that keeps the hidden and dimmed positions for a
// renderer to query. Changes are staged until InvalidateLayout publishes
// them, mirroring a layout pass.
type Layout struct {
	mu            sync.Mutex
	staged        layoutState
	applied       layoutState
	invalidations int

	// OnInvalidate, if set, runs after each InvalidateLayout.
	OnInvalidate func()
}

// NewLayout returns a layout with nothing hidden or dimmed.
func NewLayout() *Layout {
	return &Layout{}
}

// HideItem stages pos as the hidden item.
func (l *Layout) HideItem(pos grid.Position) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := pos
	l.staged.hidden = &p
}

// UnhideItem stages clearing the hidden item.
func (l *Layout) UnhideItem() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.staged.hidden = nil
}

// SetDimmedPosition stages the dimmed item.
func (l *Layout) SetDimmedPosition(pos *grid.Position, alpha float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if pos == nil {
		l.staged.dimmed = nil
		l.staged.dimAlpha = 1
		return
	}
	p := *pos
	l.staged.dimmed = &p
	l.staged.dimAlpha = alpha
}

// InvalidateLayout publishes staged changes.
func (l *Layout) InvalidateLayout() {
	l.mu.Lock()
	l.applied = l.staged
	l.invalidations++
	hook := l.OnInvalidate
	l.mu.Unlock()

	if hook != nil {
		hook()
	}
}

// Attributes returns the published attributes for pos.
func (l *Layout) Attributes(pos grid.Position) ItemAttributes {
	l.mu.Lock()
	defer l.mu.Unlock()

	attrs := ItemAttributes{Alpha: 1}
	if l.applied.hidden != nil && *l.applied.hidden == pos {
		attrs.Hidden = true
		attrs.Alpha = 0
		return attrs
	}
	if l.applied.dimmed != nil && *l.applied.dimmed == pos {
		attrs.Alpha = l.applied.dimAlpha
	}
	return attrs
}

// Hidden returns the published hidden position.
func (l *Layout) Hidden() (grid.Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.applied.hidden == nil {
		return grid.Position{}, false
	}
	return *l.applied.hidden, true
}

// Dimmed returns the published dimmed position.
func (l *Layout) Dimmed() (grid.Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.applied.dimmed == nil {
		return grid.Position{}, false
	}
	return *l.applied.dimmed, true
}

// Invalidations counts InvalidateLayout calls.
func (l *Layout) Invalidations() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.invalidations
}
