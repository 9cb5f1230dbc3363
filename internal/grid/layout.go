package grid

import (
	"fmt"
	"math"
)

// FlowLayout lays every section out in rows of Columns equally sized items,
// stacking sections vertically.
type FlowLayout struct {
	Origin         Point
	Columns        int
	ItemWidth      int
	ItemHeight     int
	Spacing        int // Gap between items in a section
	SectionSpacing int // Extra gap between sections
}

// Validate checks that the layout can place items.
func (l FlowLayout) Validate() error {
	if l.Columns < 1 {
		return fmt.Errorf("columns must be >= 1, got %d", l.Columns)
	}
	if l.ItemWidth < 1 || l.ItemHeight < 1 {
		return fmt.Errorf("item size must be at least 1x1, got %dx%d", l.ItemWidth, l.ItemHeight)
	}
	if l.Spacing < 0 || l.SectionSpacing < 0 {
		return fmt.Errorf("spacing must be >= 0")
	}
	return nil
}

// Frames computes item frames for sections of the given sizes.
func (l FlowLayout) Frames(sizes []int) Frames {
	if l.Validate() != nil {
		return nil
	}

	var frames Frames
	y := l.Origin.Y
	for section, n := range sizes {
		if n <= 0 {
			continue
		}
		rows := int(math.Ceil(float64(n) / float64(l.Columns)))
		for i := 0; i < n; i++ {
			row := i / l.Columns
			col := i % l.Columns
			frames = append(frames, ItemFrame{
				Position: Position{Section: section, Item: i},
				Rect: Rect{
					X:      l.Origin.X + col*(l.ItemWidth+l.Spacing),
					Y:      y + row*(l.ItemHeight+l.Spacing),
					Width:  l.ItemWidth,
					Height: l.ItemHeight,
				},
			})
		}
		y += rows*(l.ItemHeight+l.Spacing) + l.SectionSpacing
	}
	return frames
}

// CalculateColumns picks a near-square column count for n items.
func CalculateColumns(n int) int {
	if n <= 0 {
		return 1
	}
	return int(math.Ceil(math.Sqrt(float64(n))))
}
