package navigate

import "github.com/1broseidon/winstack/internal/windows"

// Neighbor returns the visible window nearest to currentID in direction dir,
// measured by Manhattan distance between centers. When nothing lies in that
// direction it wraps to the far edge, preferring the window closest on the
// cross axis. Minimized windows are ignored.
func Neighbor(ws []windows.Window, currentID string, dir Direction) (string, bool) {
	var current windows.Window
	found := false
	candidates := make([]windows.Window, 0, len(ws))
	for _, w := range ws {
		if w.ID == currentID {
			current = w
			found = true
			continue
		}
		if !w.IsMinimized() {
			candidates = append(candidates, w)
		}
	}
	if !found || len(candidates) == 0 {
		return "", false
	}

	c := current.Center()

	bestID := ""
	bestDist := -1
	for _, w := range candidates {
		p := w.Center()
		var inDirection bool
		switch dir {
		case DirUp:
			inDirection = p.Y < c.Y
		case DirDown:
			inDirection = p.Y > c.Y
		case DirLeft:
			inDirection = p.X < c.X
		case DirRight:
			inDirection = p.X > c.X
		}
		if !inDirection {
			continue
		}
		dist := abs(p.X-c.X) + abs(p.Y-c.Y)
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			bestID = w.ID
		}
	}
	if bestID != "" {
		return bestID, true
	}

	// Wrap: moving up lands on the bottom-most window, and so on.
	bestScore := 0
	for _, w := range candidates {
		p := w.Center()
		var score int
		switch dir {
		case DirUp:
			score = p.Y*10000 - abs(p.X-c.X)
		case DirDown:
			score = -p.Y*10000 - abs(p.X-c.X)
		case DirLeft:
			score = p.X*10000 - abs(p.Y-c.Y)
		case DirRight:
			score = -p.X*10000 - abs(p.Y-c.Y)
		}
		if bestID == "" || score > bestScore {
			bestScore = score
			bestID = w.ID
		}
	}
	return bestID, bestID != ""
}

// FocusDirection moves focus from the focused window to its neighbor in dir.
// With nothing focused the front-most visible window is focused instead.
// It returns the newly focused id.
func FocusDirection(reg *windows.Registry, dir Direction) (string, bool) {
	view := windows.NewStackView(reg)
	visible := view.Visible()
	if len(visible) == 0 {
		return "", false
	}

	current, ok := reg.FocusedID()
	if !ok {
		target := visible[len(visible)-1].ID
		return target, reg.FocusWindow(target)
	}

	target, ok := Neighbor(view.GetWindowsByZIndex(), current, dir)
	if !ok {
		return "", false
	}
	return target, reg.FocusWindow(target)
}

// CycleFocus is alt-tab over the visible windows. Forward raises the
// back-most window; reverse raises the window just below the top.
func CycleFocus(reg *windows.Registry, reverse bool) (string, bool) {
	visible := windows.NewStackView(reg).Visible()
	if len(visible) == 0 {
		return "", false
	}

	target := visible[0].ID
	if reverse {
		if len(visible) < 2 {
			target = visible[len(visible)-1].ID
		} else {
			target = visible[len(visible)-2].ID
		}
	}
	return target, reg.FocusWindow(target)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
