package exchange

import (
	"sync"
	"time"

	"github.com/1broseidon/gridswap/internal/grid"
)

// Visual is the floating stand-in for the dragged item. Renderers read it
// with State; the controller and animations update it, possibly from
// timer goroutines.
type Visual struct {
	mu         sync.Mutex
	position   grid.Position
	size       grid.Rect
	center     grid.Point
	scale      float64
	alpha      float64
	background string
	removed    bool
	fade       time.Duration
}

// VisualState is a point-in-time copy of a Visual.
type VisualState struct {
	Position   grid.Position
	Frame      grid.Rect // Unscaled frame centred on Center
	Center     grid.Point
	Scale      float64
	Alpha      float64
	Background string
	Removed    bool
	Fade       time.Duration
}

// NewVisual creates a visual covering frame.
func NewVisual(pos grid.Position, frame grid.Rect, alpha float64, background string) *Visual {
	return &Visual{
		position:   pos,
		size:       frame,
		center:     frame.Center(),
		scale:      1,
		alpha:      alpha,
		background: background,
	}
}

// State returns a copy of the current state.
func (v *Visual) State() VisualState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return VisualState{
		Position: v.position,
		Frame: grid.Rect{
			X:      v.center.X - v.size.Width/2,
			Y:      v.center.Y - v.size.Height/2,
			Width:  v.size.Width,
			Height: v.size.Height,
		},
		Center:     v.center,
		Scale:      v.scale,
		Alpha:      v.alpha,
		Background: v.background,
		Removed:    v.removed,
		Fade:       v.fade,
	}
}

// MoveTo centres the visual on c.
func (v *Visual) MoveTo(c grid.Point) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.center = c
}

// SetScale sets the drawing scale.
func (v *Visual) SetScale(s float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scale = s
}

// SetAlpha sets the drawing alpha.
func (v *Visual) SetAlpha(a float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.alpha = a
}

// Remove takes the visual off screen over fade.
func (v *Visual) Remove(fade time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.removed = true
	v.fade = fade
	v.alpha = 0
}

// Removed reports whether Remove has been called.
func (v *Visual) Removed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.removed
}

// blink scales v to peak and back to 1 over d.
func blink(v *Visual, peak float64, d time.Duration, schedule Scheduler, then func()) {
	v.SetScale(peak)
	schedule(d, func() {
		v.SetScale(1)
		if then != nil {
			then()
		}
	})
}
