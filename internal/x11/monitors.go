package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
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

func (m Monitor) contains(x, y int) bool {
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height
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
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Disabled CRTC.
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   name,
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		})
	}
	return monitors, nil
}

// GetActiveMonitor returns the monitor holding the active window, else the one
// under the pointer, else the first. Its geometry is clipped to the EWMH work
// area so panels are excluded.
func (c *Connection) GetActiveMonitor() (*Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return nil, err
	}
	if len(monitors) == 0 {
		return nil, fmt.Errorf("no monitors found")
	}

	active := c.monitorForActiveWindow(monitors)
	if active == nil {
		active = c.monitorForPointer(monitors)
	}
	if active == nil {
		active = &monitors[0]
	}
	c.clipToWorkArea(active)
	return active, nil
}

func (c *Connection) monitorForActiveWindow(monitors []Monitor) *Monitor {
	win, err := ewmh.ActiveWindowGet(c.XUtil)
	if err != nil || win == 0 {
		return nil
	}
	x, y, w, h, err := c.Geometry(win)
	if err != nil {
		return nil
	}
	for i := range monitors {
		if monitors[i].contains(x+w/2, y+h/2) {
			return &monitors[i]
		}
	}
	return nil
}

func (c *Connection) monitorForPointer(monitors []Monitor) *Monitor {
	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil
	}
	for i := range monitors {
		if monitors[i].contains(int(pointer.RootX), int(pointer.RootY)) {
			return &monitors[i]
		}
	}
	return nil
}

func (c *Connection) clipToWorkArea(m *Monitor) {
	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return
	}
	idx := 0
	if desktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(desktop) < len(workArea) {
		idx = int(desktop)
	}
	wa := workArea[idx]

	x1 := max(m.X, int(wa.X))
	y1 := max(m.Y, int(wa.Y))
	x2 := min(m.X+m.Width, int(wa.X)+int(wa.Width))
	y2 := min(m.Y+m.Height, int(wa.Y)+int(wa.Height))
	if x2 > x1 && y2 > y1 {
		m.X, m.Y = x1, y1
		m.Width, m.Height = x2-x1, y2-y1
	}
}
