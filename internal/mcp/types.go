package mcp

import "github.com/1broseidon/winstack/internal/windows"

// WindowInfo is the tool-facing view of a registry window.
type WindowInfo struct {
	ID      string `json:"id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	State   string `json:"state" jsonschema:"One of normal, minimized, maximized"`
	ZIndex  int    `json:"z_index"`
	Focused bool   `json:"focused"`
}

func infoFor(w windows.Window, focused string) WindowInfo {
	return WindowInfo{
		ID:      w.ID,
		X:       w.Position.X,
		Y:       w.Position.Y,
		Width:   w.Size.Width,
		Height:  w.Size.Height,
		State:   w.State.String(),
		ZIndex:  w.ZIndex,
		Focused: w.ID == focused,
	}
}

// OpenWindowInput is the input for the open_window tool.
type OpenWindowInput struct {
	ID     string `json:"id,omitempty" jsonschema:"Window id. A random id is generated when omitted. Reusing an id replaces that window."`
	X      *int   `json:"x,omitempty" jsonschema:"Left edge (default: configured default_window position)"`
	Y      *int   `json:"y,omitempty" jsonschema:"Top edge (default: configured default_window position)"`
	Width  *int   `json:"width,omitempty" jsonschema:"Width (default: configured default_window size)"`
	Height *int   `json:"height,omitempty" jsonschema:"Height (default: configured default_window size)"`
}

// WindowInput targets a single window.
type WindowInput struct {
	ID string `json:"id" jsonschema:"required,Window id"`
}

// MoveWindowInput is the input for the move_window tool.
type MoveWindowInput struct {
	ID string `json:"id" jsonschema:"required,Window id"`
	X  int    `json:"x" jsonschema:"required,New left edge"`
	Y  int    `json:"y" jsonschema:"required,New top edge"`
}

// ResizeWindowInput is the input for the resize_window tool.
type ResizeWindowInput struct {
	ID     string `json:"id" jsonschema:"required,Window id"`
	Width  int    `json:"width" jsonschema:"required,New width"`
	Height int    `json:"height" jsonschema:"required,New height"`
}

// WindowOutput reports a window after a tool changed it.
type WindowOutput struct {
	Window WindowInfo `json:"window"`
}

// CloseWindowOutput is the output for the close_window tool.
type CloseWindowOutput struct {
	ID     string `json:"id"`
	Closed bool   `json:"closed"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	IncludeMinimized *bool `json:"include_minimized,omitempty" jsonschema:"Include minimized windows (default: true)"`
}

// ListWindowsOutput lists windows back-most first.
type ListWindowsOutput struct {
	Windows []WindowInfo `json:"windows"`
	Focused string       `json:"focused,omitempty"`
	Version uint64       `json:"version"`
}

// FocusDirectionInput is the input for the focus_direction tool.
type FocusDirectionInput struct {
	Direction string `json:"direction" jsonschema:"required,One of up, down, left, right"`
}

// ArrangeWindowsInput is the input for the arrange_windows tool.
type ArrangeWindowsInput struct {
	Layout string `json:"layout,omitempty" jsonschema:"Layout name (default: configured default_layout)"`
}

// ArrangeWindowsOutput is the output for the arrange_windows tool.
type ArrangeWindowsOutput struct {
	Layout   string   `json:"layout"`
	Arranged []string `json:"arranged"`
}
