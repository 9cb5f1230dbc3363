package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/gridswap/internal/grid"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// Rect returns the monitor geometry in root window coordinates.
func (m Monitor) Rect() grid.Rect {
	return grid.Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   outputName,
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		})
	}

	return monitors, nil
}

// GetActiveMonitor returns the monitor under the pointer, clipped to the
// current desktop's work area so panels and docks stay uncovered.
func (c *Connection) GetActiveMonitor() (*Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return nil, err
	}
	if len(monitors) == 0 {
		return nil, fmt.Errorf("no monitors found")
	}

	active := monitors[0]
	if pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		if mon, ok := monitorAt(monitors, int(pointer.RootX), int(pointer.RootY)); ok {
			active = mon
		}
	}

	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err == nil && len(workArea) > 0 {
		desktopIndex := 0
		if currentDesktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil {
			if int(currentDesktop) < len(workArea) {
				desktopIndex = int(currentDesktop)
			}
		}
		wa := workArea[desktopIndex]
		active = clipToWorkArea(active, grid.Rect{
			X:      int(wa.X),
			Y:      int(wa.Y),
			Width:  int(wa.Width),
			Height: int(wa.Height),
		})
	}

	return &active, nil
}

// monitorAt returns the monitor containing the root point (x, y).
func monitorAt(monitors []Monitor, x, y int) (Monitor, bool) {
	for _, mon := range monitors {
		if mon.Rect().Contains(grid.Point{X: x, Y: y}) {
			return mon, true
		}
	}
	return Monitor{}, false
}

// clipToWorkArea shrinks mon to its intersection with wa. A work area that
// misses the monitor leaves it unchanged.
func clipToWorkArea(mon Monitor, wa grid.Rect) Monitor {
	x1 := max(mon.X, wa.X)
	y1 := max(mon.Y, wa.Y)
	x2 := min(mon.X+mon.Width, wa.X+wa.Width)
	y2 := min(mon.Y+mon.Height, wa.Y+wa.Height)

	if x2 > x1 && y2 > y1 {
		mon.X = x1
		mon.Y = y1
		mon.Width = x2 - x1
		mon.Height = y2 - y1
	}
	return mon
}
