package windows

import "sort"

// Snapshot is an immutable point-in-time view of the registry. Every
// state-changing mutation produces a new Snapshot with a higher Version, so
// consumers can compare pointers or versions to decide whether to re-derive.
type Snapshot struct {
	windows map[string]Window
	focused string
	version uint64
}

func emptySnapshot(version uint64) *Snapshot {
	return &Snapshot{
		windows: make(map[string]Window),
		version: version,
	}
}

// Len returns the number of windows.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.windows)
}

// Version returns the mutation counter this snapshot was produced at.
func (s *Snapshot) Version() uint64 {
	if s == nil {
		return 0
	}
	return s.version
}

// Get returns the window with the given id.
func (s *Snapshot) Get(id string) (Window, bool) {
	if s == nil {
		return Window{}, false
	}
	w, ok := s.windows[id]
	return w, ok
}

// FocusedID returns the focused window id, if any.
func (s *Snapshot) FocusedID() (string, bool) {
	if s == nil || s.focused == "" {
		return "", false
	}
	return s.focused, true
}

// TopZIndex returns BaseZIndex for an empty snapshot, otherwise the highest
// z-index in use (never lower than BaseZIndex).
func (s *Snapshot) TopZIndex() int {
	top := BaseZIndex
	if s == nil {
		return top
	}
	for _, w := range s.windows {
		if w.ZIndex > top {
			top = w.ZIndex
		}
	}
	return top
}

// Windows returns every window sorted by ascending z-index, back-most first.
// The slice is a fresh copy.
func (s *Snapshot) Windows() []Window {
	if s == nil {
		return []Window{}
	}
	out := make([]Window, 0, len(s.windows))
	for _, w := range s.windows {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ZIndex != out[j].ZIndex {
			return out[i].ZIndex < out[j].ZIndex
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// cloneWindows copies the window map so a mutation never touches a published
// snapshot.
func (s *Snapshot) cloneWindows() map[string]Window {
	out := make(map[string]Window, len(s.windows)+1)
	for id, w := range s.windows {
		out[id] = w
	}
	return out
}
