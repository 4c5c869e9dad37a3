package windows

import (
	"encoding/json"
	"fmt"
)

// BaseZIndex is the stacking floor. An empty registry reports it as its top,
// and unknown windows report it as their z-index.
const BaseZIndex = 1000

// DisplayState is the display mode of a window.
type DisplayState int

const (
	// StateNormal is the initial state of every window.
	StateNormal DisplayState = iota
	// StateMinimized hides the window from the workspace.
	StateMinimized
	// StateMaximized expands the window to fill the workspace.
	StateMaximized
)

// String returns a string representation of the display state.
func (s DisplayState) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateMinimized:
		return "minimized"
	case StateMaximized:
		return "maximized"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the defined states.
func (s DisplayState) Valid() bool {
	return s >= StateNormal && s <= StateMaximized
}

// ParseDisplayState converts a state name back into a DisplayState.
func ParseDisplayState(s string) (DisplayState, error) {
	switch s {
	case "normal", "":
		return StateNormal, nil
	case "minimized":
		return StateMinimized, nil
	case "maximized":
		return StateMaximized, nil
	default:
		return StateNormal, fmt.Errorf("invalid display state %q", s)
	}
}

func (s DisplayState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *DisplayState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseDisplayState(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Point is a top-left coordinate in layout units.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a window extent in layout units.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Window is one open window. Values are copies; mutate through the Registry.
type Window struct {
	ID       string       `json:"id"`
	Position Point        `json:"position"`
	Size     Size         `json:"size"`
	State    DisplayState `json:"state"`
	ZIndex   int          `json:"z_index"`
}

// IsMinimized reports whether the window is minimized.
func (w Window) IsMinimized() bool { return w.State == StateMinimized }

// IsMaximized reports whether the window is maximized.
func (w Window) IsMaximized() bool { return w.State == StateMaximized }

// Center returns the midpoint of the window's frame.
func (w Window) Center() Point {
	return Point{
		X: w.Position.X + w.Size.Width/2,
		Y: w.Position.Y + w.Size.Height/2,
	}
}

// Patch is a partial window update. Nil fields are left untouched, and a
// State outside the defined values is ignored.
type Patch struct {
	Position *Point        `json:"position,omitempty"`
	Size     *Size         `json:"size,omitempty"`
	State    *DisplayState `json:"state,omitempty"`
}

// IsEmpty reports whether the patch would change nothing.
func (p Patch) IsEmpty() bool {
	return p.Position == nil && p.Size == nil && p.State == nil
}

// apply merges the patch over w and returns the result.
func (p Patch) apply(w Window) Window {
	if p.Position != nil {
		w.Position = *p.Position
	}
	if p.Size != nil {
		w.Size = *p.Size
	}
	if p.State != nil && p.State.Valid() {
		w.State = *p.State
	}
	return w
}

// Defaults holds the geometry given to windows that do not override it.
type Defaults struct {
	Position Point
	Size     Size
}

// DefaultDefaults returns the stock geometry for new windows.
func DefaultDefaults() Defaults {
	return Defaults{
		Position: Point{X: 100, Y: 100},
		Size:     Size{Width: 600, Height: 400},
	}
}

// PatchPosition returns a patch that moves a window.
func PatchPosition(x, y int) Patch {
	return Patch{Position: &Point{X: x, Y: y}}
}

// PatchSize returns a patch that resizes a window.
func PatchSize(width, height int) Patch {
	return Patch{Size: &Size{Width: width, Height: height}}
}

// PatchState returns a patch that sets the display state.
func PatchState(state DisplayState) Patch {
	return Patch{State: &state}
}
