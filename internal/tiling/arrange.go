package tiling

import (
	"github.com/1broseidon/winstack/internal/config"
	"github.com/1broseidon/winstack/internal/windows"
)

// Arrange lays out the visible windows of reg in stacking order, back-most
// window in the first slot. Maximized windows are returned to normal. Focus
// and stacking order are left alone. It returns the ids that were moved.
func Arrange(reg *windows.Registry, screen Rect, layout *config.Layout, gapSize int) ([]string, error) {
	visible := windows.NewStackView(reg).Visible()
	if len(visible) == 0 {
		return nil, nil
	}

	var (
		positions []Rect
		err       error
	)
	if layout.Mode == config.LayoutModeCascade {
		size := reg.Defaults().Size
		positions, err = CalculateCascade(len(visible), screen, layout.CascadeOffset, gapSize, size.Width, size.Height)
	} else {
		positions, err = CalculatePositionsWithLayout(len(visible), screen, layout, gapSize)
	}
	if err != nil {
		return nil, err
	}

	arranged := make([]string, 0, len(positions))
	for i, pos := range positions {
		w := visible[i]
		patch := windows.Patch{
			Position: &windows.Point{X: pos.X, Y: pos.Y},
			Size:     &windows.Size{Width: pos.Width, Height: pos.Height},
		}
		if w.IsMaximized() {
			normal := windows.StateNormal
			patch.State = &normal
		}
		// A window removed since the snapshot is skipped.
		if reg.UpdateWindow(w.ID, patch) {
			arranged = append(arranged, w.ID)
		}
	}
	return arranged, nil
}
