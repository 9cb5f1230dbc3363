package tui

import (
	"math"
	"time"

	"github.com/1broseidon/gridswap/internal/board"
	"github.com/1broseidon/gridswap/internal/exchange"
	"github.com/1broseidon/gridswap/internal/grid"
)

// releaseFrames is how many steps the release glide takes.
const releaseFrames = 6

// delegate adds a terminal release animation to the board. The floating
// item glides from the pointer to its final slot, shrinking back from the
// release scale, before the transaction completes.
type delegate struct {
	*board.Board
	sched    *scheduler
	duration time.Duration
	scale    float64
}

func (d *delegate) AnimateRelease(v *exchange.Visual, target grid.Point, _ grid.Position, done *exchange.Completion) {
	if d.duration <= 0 {
		v.MoveTo(target)
		done.Done(0)
		return
	}

	start := v.State().Center
	interval := d.duration / releaseFrames
	v.SetScale(d.scale)

	var step func(i int)
	step = func(i int) {
		if i == releaseFrames {
			v.MoveTo(target)
			v.SetScale(1)
			done.Done(interval)
			return
		}
		t := float64(i) / releaseFrames
		v.MoveTo(lerp(start, target, t))
		v.SetScale(d.scale + (1-d.scale)*t)
		d.sched.Schedule(interval, func() { step(i + 1) })
	}
	d.sched.Schedule(interval, func() { step(1) })
}

func lerp(a, b grid.Point, t float64) grid.Point {
	return grid.Point{
		X: a.X + int(math.Round(float64(b.X-a.X)*t)),
		Y: a.Y + int(math.Round(float64(b.Y-a.Y)*t)),
	}
}
