//go:build linux

package platform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/1broseidon/winstack/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// LinuxBackend reads window state from an X11 connection.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend wraps an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// Open connects to the X server named by $DISPLAY.
func Open() (Backend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Close closes the underlying X11 connection.
func (b *LinuxBackend) Close() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// XUtil exposes the X connection for key grabs.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	return b.conn.XUtil
}

// RootWindow returns the root window of the default screen.
func (b *LinuxBackend) RootWindow() xproto.Window {
	return b.conn.Root
}

// Displays returns all active displays.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, displayFromMonitor(m))
	}
	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})
	return displays, nil
}

// ActiveDisplay returns the currently active display.
func (b *LinuxBackend) ActiveDisplay() (Display, error) {
	conn, err := b.connection()
	if err != nil {
		return Display{}, err
	}
	active, err := conn.GetActiveMonitor()
	if err != nil {
		return Display{}, err
	}
	return displayFromMonitor(*active), nil
}

// ActiveWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}
	wid, err := conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowID(wid), nil
}

// ListWindows lists normal windows on the current desktop, bottom to top.
// Fullscreen windows are reported as maximized.
func (b *LinuxBackend) ListWindows() ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	clients, err := conn.StackingOrder()
	if err != nil {
		return nil, err
	}

	out := make([]Window, 0, len(clients))
	for _, id := range clients {
		if !conn.IsNormalWindow(id) || !conn.OnCurrentDesktop(id) {
			continue
		}
		x, y, w, h, err := conn.Geometry(id)
		if err != nil {
			// Window vanished between listing and query.
			continue
		}
		state := conn.State(id)
		out = append(out, Window{
			ID:        WindowID(id),
			AppID:     b.windowAppID(id),
			Title:     b.windowTitle(id),
			Bounds:    Rect{X: x, Y: y, Width: w, Height: h},
			Minimized: state.Hidden,
			Maximized: state.Maximized || state.Fullscreen,
		})
	}
	return out, nil
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func displayFromMonitor(m x11.Monitor) Display {
	bounds := Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
	return Display{
		ID:     m.ID,
		Name:   m.Name,
		Bounds: bounds,
		Usable: bounds,
	}
}

func (b *LinuxBackend) windowAppID(windowID xproto.Window) string {
	wmClass, err := icccm.WmClassGet(b.conn.XUtil, windowID)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Class)
}

func (b *LinuxBackend) windowTitle(windowID xproto.Window) string {
	if title, err := ewmh.WmNameGet(b.conn.XUtil, windowID); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if title, err := icccm.WmNameGet(b.conn.XUtil, windowID); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}
