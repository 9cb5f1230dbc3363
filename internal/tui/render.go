package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/1broseidon/gridswap/internal/exchange"
	"github.com/1broseidon/gridswap/internal/grid"
)

const (
	itemColor       = "#5f87af"
	lockedColor     = "#875f5f"
	placeholderChar = '·'
)

var black = colorful.Color{}

type cell struct {
	ch  rune
	key string // "" for unstyled
}

// canvas is a grid of terminal cells with one style per cell. Styles are
// interned by key so runs of equal cells render as one string.
type canvas struct {
	top    int // Surface row drawn at canvas row 0
	width  int
	rows   [][]cell
	styles map[string]lipgloss.Style
}

func newCanvas(top, width, height int) *canvas {
	c := &canvas{top: top, width: width, styles: make(map[string]lipgloss.Style)}
	c.rows = make([][]cell, height)
	for y := range c.rows {
		row := make([]cell, width)
		for x := range row {
			row[x] = cell{ch: ' '}
		}
		c.rows[y] = row
	}
	return c
}

func (c *canvas) set(x, y int, ch rune, key string) {
	y -= c.top
	if y < 0 || y >= len(c.rows) || x < 0 || x >= c.width {
		return
	}
	c.rows[y][x] = cell{ch: ch, key: key}
}

// fill paints r with bg, writing label centred on its middle row.
func (c *canvas) fill(r grid.Rect, bg, fg, label string) {
	key := c.style(bg, fg)
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			c.set(x, y, ' ', key)
		}
	}
	c.text(r, label, key)
}

// outline draws a dotted placeholder where an item is hidden.
func (c *canvas) outline(r grid.Rect, fg string) {
	key := c.style("", fg)
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			if y == r.Y || y == r.Y+r.Height-1 || x == r.X || x == r.X+r.Width-1 {
				c.set(x, y, placeholderChar, key)
			}
		}
	}
}

func (c *canvas) text(r grid.Rect, label, key string) {
	runes := []rune(label)
	if len(runes) > r.Width {
		runes = runes[:r.Width]
	}
	x := r.X + (r.Width-len(runes))/2
	y := r.Y + r.Height/2
	for i, ch := range runes {
		c.set(x+i, y, ch, key)
	}
}

func (c *canvas) style(bg, fg string) string {
	key := bg + "|" + fg
	if _, ok := c.styles[key]; !ok {
		s := lipgloss.NewStyle()
		if bg != "" {
			s = s.Background(lipgloss.Color(bg))
		}
		if fg != "" {
			s = s.Foreground(lipgloss.Color(fg))
		}
		c.styles[key] = s
	}
	return key
}

// String renders the canvas row by row.
func (c *canvas) String() string {
	lines := make([]string, len(c.rows))
	for y, row := range c.rows {
		var sb strings.Builder
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].key == row[start].key {
				continue
			}
			run := make([]rune, 0, x-start)
			for _, cl := range row[start:x] {
				run = append(run, cl.ch)
			}
			if key := row[start].key; key != "" {
				sb.WriteString(c.styles[key].Render(string(run)))
			} else {
				sb.WriteString(string(run))
			}
			start = x
		}
		lines[y] = sb.String()
	}
	return strings.Join(lines, "\n")
}

// fade blends hex towards black as alpha drops.
func fade(hex string, alpha float64) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	alpha = math.Max(0, math.Min(1, alpha))
	return c.BlendRgb(black, 1-alpha).Hex()
}

// textColor picks a readable foreground for bg.
func textColor(bg string) string {
	c, err := colorful.Hex(bg)
	if err != nil {
		return "#ffffff"
	}
	if l, _, _ := c.Lab(); l > 0.6 {
		return "#000000"
	}
	return "#ffffff"
}

// scaled grows r about its centre.
func scaled(r grid.Rect, s float64) grid.Rect {
	if s <= 0 {
		s = 1
	}
	w := int(math.Round(float64(r.Width) * s))
	h := int(math.Round(float64(r.Height) * s))
	c := r.Center()
	return grid.Rect{X: c.X - w/2, Y: c.Y - h/2, Width: w, Height: h}
}

// itemSource supplies what the renderer draws for each item.
type itemSource interface {
	Item(pos grid.Position) (string, bool)
	Locked(pos grid.Position) bool
}

// drawBoard paints every item with its layout attributes, then the
// floating visual on top.
func drawBoard(c *canvas, frames grid.Frames, items itemSource, layout *exchange.Layout, v *exchange.Visual, floating string) {
	for _, f := range frames {
		attrs := layout.Attributes(f.Position)
		if attrs.Hidden {
			c.outline(f.Rect, "#585858")
			continue
		}
		label, _ := items.Item(f.Position)
		base := itemColor
		if items.Locked(f.Position) {
			base = lockedColor
			label += "*"
		}
		bg := fade(base, attrs.Alpha)
		c.fill(f.Rect, bg, textColor(bg), label)
	}

	if v == nil {
		return
	}
	st := v.State()
	if st.Removed {
		return
	}
	bg := fade(st.Background, st.Alpha)
	c.fill(scaled(st.Frame, st.Scale), bg, textColor(bg), floating)
}
