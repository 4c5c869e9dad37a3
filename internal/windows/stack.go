package windows

// StackView derives stacking queries from a Registry. It holds no state of
// its own, so every call reflects the latest snapshot.
type StackView struct {
	reg *Registry
}

// NewStackView returns a view over reg.
func NewStackView(reg *Registry) *StackView {
	return &StackView{reg: reg}
}

// Registry returns the underlying registry.
func (v *StackView) Registry() *Registry {
	return v.reg
}

// GetWindowsByZIndex returns all windows in paint order: back-most first,
// front-most last.
func (v *StackView) GetWindowsByZIndex() []Window {
	return v.reg.Snapshot().Windows()
}

// BringToFront focuses the window and raises it to the top.
func (v *StackView) BringToFront(id string) bool {
	return v.reg.FocusWindow(id)
}

// GetZIndex returns the window's z-index, or BaseZIndex for unknown ids so
// an unknown window sorts behind every real one.
func (v *StackView) GetZIndex(id string) int {
	w, ok := v.reg.GetWindow(id)
	if !ok {
		return BaseZIndex
	}
	return w.ZIndex
}

// IsFocused reports whether id is the focused window.
func (v *StackView) IsFocused(id string) bool {
	focused, ok := v.reg.FocusedID()
	return ok && focused == id
}

// TopWindow returns the front-most window.
func (v *StackView) TopWindow() (Window, bool) {
	ws := v.GetWindowsByZIndex()
	if len(ws) == 0 {
		return Window{}, false
	}
	return ws[len(ws)-1], true
}

// Visible returns the non-minimized windows in paint order.
func (v *StackView) Visible() []Window {
	all := v.GetWindowsByZIndex()
	out := all[:0]
	for _, w := range all {
		if !w.IsMinimized() {
			out = append(out, w)
		}
	}
	return out
}
