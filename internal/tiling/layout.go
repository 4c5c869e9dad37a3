package tiling

import (
	"fmt"
	"math"

	"github.com/1broseidon/winstack/internal/config"
)

// Rect represents a window position and size
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RectFromConfig converts a configured screen area.
func RectFromConfig(r config.Rect) Rect {
	return Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// CalculateGrid determines the optimal grid dimensions for the given number of windows
func CalculateGrid(numWindows int) (rows, cols int) {
	if numWindows <= 0 {
		return 0, 0
	}
	cols = int(math.Ceil(math.Sqrt(float64(numWindows))))
	rows = int(math.Ceil(float64(numWindows) / float64(cols)))
	return rows, cols
}

// CalculatePositionsWithLayout computes window positions for a layout. The
// result may be shorter than numWindows when the layout has a fixed capacity.
// Cascade windows are sized at two thirds of the monitor; use
// CalculateCascade to pick the size.
func CalculatePositionsWithLayout(
	numWindows int,
	monitor Rect,
	layout *config.Layout,
	gapSize int,
) ([]Rect, error) {
	if numWindows <= 0 {
		return nil, nil
	}

	var rows, cols int
	flexibleLastRow := layout.FlexibleLastRow

	switch layout.Mode {
	case config.LayoutModeAuto:
		rows, cols = CalculateGrid(numWindows)

	case config.LayoutModeFixed:
		rows = layout.FixedGrid.Rows
		cols = layout.FixedGrid.Cols
		if numWindows > rows*cols {
			numWindows = rows * cols
		}
		flexibleLastRow = false

	case config.LayoutModeVertical:
		rows = numWindows
		cols = 1
		flexibleLastRow = false

	case config.LayoutModeHorizontal:
		rows = 1
		cols = numWindows
		flexibleLastRow = false

	case config.LayoutModeCascade:
		return CalculateCascade(numWindows, monitor, layout.CascadeOffset, gapSize, monitor.Width*2/3, monitor.Height*2/3)

	default:
		return nil, fmt.Errorf("unsupported layout mode: %q", layout.Mode)
	}

	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions: rows=%d cols=%d", rows, cols)
	}

	slotWidth := (monitor.Width - (cols+1)*gapSize) / cols
	slotHeight := (monitor.Height - (rows+1)*gapSize) / rows
	if slotWidth <= 0 || slotHeight <= 0 {
		return nil, fmt.Errorf(
			"insufficient space for layout: monitor=%dx%d rows=%d cols=%d gap=%d (slot=%dx%d)",
			monitor.Width, monitor.Height, rows, cols, gapSize, slotWidth, slotHeight,
		)
	}

	lastRowIndex := rows - 1
	windowsInLastRow := numWindows - lastRowIndex*cols
	if windowsInLastRow <= 0 {
		windowsInLastRow = cols
	}
	stretchLastRow := flexibleLastRow && windowsInLastRow < cols
	lastRowWidth := slotWidth
	if stretchLastRow {
		lastRowWidth = (monitor.Width - (windowsInLastRow+1)*gapSize) / windowsInLastRow
	}

	positions := make([]Rect, numWindows)
	for i := range positions {
		row := i / cols
		col := i % cols
		width := slotWidth
		if stretchLastRow && row == lastRowIndex {
			width = lastRowWidth
		}
		positions[i] = Rect{
			X:      monitor.X + gapSize + col*(width+gapSize),
			Y:      monitor.Y + gapSize + row*(slotHeight+gapSize),
			Width:  width,
			Height: slotHeight,
		}
	}
	return positions, nil
}

// CalculateCascade stacks windows diagonally, each offset from the previous
// one. Windows wrap back to the top-left corner once the next step would
// leave the monitor.
func CalculateCascade(numWindows int, monitor Rect, offset, gapSize, width, height int) ([]Rect, error) {
	if numWindows <= 0 {
		return nil, nil
	}
	if offset <= 0 {
		return nil, fmt.Errorf("cascade offset must be > 0, got %d", offset)
	}

	usableWidth := monitor.Width - 2*gapSize
	usableHeight := monitor.Height - 2*gapSize
	if usableWidth <= 0 || usableHeight <= 0 {
		return nil, fmt.Errorf("insufficient space for cascade: monitor=%dx%d gap=%d", monitor.Width, monitor.Height, gapSize)
	}
	width = min(max(width, 1), usableWidth)
	height = min(max(height, 1), usableHeight)

	steps := min((usableWidth-width)/offset, (usableHeight-height)/offset) + 1

	positions := make([]Rect, numWindows)
	for i := range positions {
		k := i % steps
		positions[i] = Rect{
			X:      monitor.X + gapSize + k*offset,
			Y:      monitor.Y + gapSize + k*offset,
			Width:  width,
			Height: height,
		}
	}
	return positions, nil
}
