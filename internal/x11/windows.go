package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// WindowState is the subset of _NET_WM_STATE the registry cares about.
type WindowState struct {
	Hidden     bool
	Maximized  bool
	Fullscreen bool
}

// StackingOrder returns managed client windows bottom to top. Window managers
// that do not publish _NET_CLIENT_LIST_STACKING fall back to the mapping
// order of _NET_CLIENT_LIST.
func (c *Connection) StackingOrder() ([]xproto.Window, error) {
	if stacking, err := ewmh.ClientListStackingGet(c.XUtil); err == nil {
		return stacking, nil
	}
	return ewmh.ClientListGet(c.XUtil)
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return true
	}
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}
	return len(types) == 0
}

// State reads _NET_WM_STATE, falling back to ICCCM WM_STATE for iconic
// windows whose manager does not set _NET_WM_STATE_HIDDEN.
func (c *Connection) State(windowID xproto.Window) WindowState {
	var ws WindowState
	var maxH, maxV bool
	if states, err := ewmh.WmStateGet(c.XUtil, windowID); err == nil {
		for _, s := range states {
			switch s {
			case "_NET_WM_STATE_HIDDEN":
				ws.Hidden = true
			case "_NET_WM_STATE_FULLSCREEN":
				ws.Fullscreen = true
			case "_NET_WM_STATE_MAXIMIZED_HORZ":
				maxH = true
			case "_NET_WM_STATE_MAXIMIZED_VERT":
				maxV = true
			}
		}
	}
	ws.Maximized = maxH && maxV
	if !ws.Hidden {
		if st, err := icccm.WmStateGet(c.XUtil, windowID); err == nil && st.State == icccm.StateIconic {
			ws.Hidden = true
		}
	}
	return ws
}

// OnCurrentDesktop reports whether the window is on the active virtual
// desktop. Sticky windows and managers without desktops always match.
func (c *Connection) OnCurrentDesktop(windowID xproto.Window) bool {
	current, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return true
	}
	desktop, err := ewmh.WmDesktopGet(c.XUtil, windowID)
	if err != nil {
		return true
	}
	return desktop == 0xFFFFFFFF || desktop == current
}

// Geometry returns the window's root-relative position and size.
func (c *Connection) Geometry(windowID xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), nil
}

func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}
