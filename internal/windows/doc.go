/*
Package windows implements the window registry: the authoritative record of
open windows, their geometry and display state, the single focused window,
and the stacking order.

The Registry owns the state. StackView derives paint order and focus queries
from it. Neither ever returns an error: operations on unknown windows are
no-ops and queries on unknown windows return defined defaults.

Example usage:

	reg := windows.New(windows.Config{})
	stack := windows.NewStackView(reg)

	reg.AddWindow("editor", windows.Patch{})
	reg.AddWindow("terminal", windows.PatchSize(800, 500))
	stack.BringToFront("editor")

	for _, w := range stack.GetWindowsByZIndex() {
		// paint w; later entries are drawn on top
	}
*/
package windows
