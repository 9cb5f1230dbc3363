package grid

// ItemFrame pairs a grid position with its on-screen frame.
type ItemFrame struct {
	Position Position
	Rect     Rect
}

// Resolve returns the position whose frame contains p. Frames are searched
// in order and the first match wins. Empty frames never match.
func Resolve(p Point, frames []ItemFrame) (Position, bool) {
	for _, f := range frames {
		if f.Rect.Empty() {
			continue
		}
		if f.Rect.Contains(p) {
			return f.Position, true
		}
	}
	return Position{}, false
}

// Frames is an ordered snapshot of item geometry.
type Frames []ItemFrame

// PositionAt returns the position under p, if any.
func (fs Frames) PositionAt(p Point) (Position, bool) {
	return Resolve(p, fs)
}

// FrameOf returns the frame of pos, if pos is laid out.
func (fs Frames) FrameOf(pos Position) (Rect, bool) {
	for _, f := range fs {
		if f.Position == pos {
			return f.Rect, true
		}
	}
	return Rect{}, false
}

// Bounds returns the smallest rect enclosing every frame.
func (fs Frames) Bounds() Rect {
	if len(fs) == 0 {
		return Rect{}
	}
	minX, minY := fs[0].Rect.X, fs[0].Rect.Y
	maxX, maxY := minX+fs[0].Rect.Width, minY+fs[0].Rect.Height
	for _, f := range fs[1:] {
		minX = min(minX, f.Rect.X)
		minY = min(minY, f.Rect.Y)
		maxX = max(maxX, f.Rect.X+f.Rect.Width)
		maxY = max(maxY, f.Rect.Y+f.Rect.Height)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
