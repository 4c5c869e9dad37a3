package platform

import "fmt"

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Key is the registry id used for a platform window.
func (id WindowID) Key() string {
	return fmt.Sprintf("x11:%#x", uint32(id))
}

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Display describes a physical display and its usable work area.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
	Usable Rect
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID        WindowID
	AppID     string
	Title     string
	Bounds    Rect
	Minimized bool
	Maximized bool
}

// Backend is a read-only view of the host window system.
type Backend interface {
	Displays() ([]Display, error)
	ActiveDisplay() (Display, error)
	ActiveWindow() (WindowID, error)
	// ListWindows returns managed windows on the current desktop in
	// stacking order, bottom to top.
	ListWindows() ([]Window, error)
	Close()
}
