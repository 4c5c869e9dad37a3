// Package hotkeys binds global X11 key sequences to registry actions.
package hotkeys

import (
	"log/slog"

	"github.com/1broseidon/winstack/internal/config"
	"github.com/1broseidon/winstack/internal/navigate"
	"github.com/1broseidon/winstack/internal/windows"
)

// Actions returns the callback for every config.HotkeyActions name. arrange
// tiles the registry with the current default layout.
func Actions(reg *windows.Registry, arrange func() error, logger *slog.Logger) map[string]func() {
	focus := func(dir navigate.Direction) func() {
		return func() {
			id, ok := navigate.FocusDirection(reg, dir)
			logger.Debug("hotkey focus", "direction", dir, "id", id, "applied", ok)
		}
	}
	cycle := func(reverse bool) func() {
		return func() {
			id, ok := navigate.CycleFocus(reg, reverse)
			logger.Debug("hotkey cycle", "reverse", reverse, "id", id, "applied", ok)
		}
	}
	return map[string]func(){
		config.HotkeyFocusLeft:    focus(navigate.DirLeft),
		config.HotkeyFocusRight:   focus(navigate.DirRight),
		config.HotkeyFocusUp:      focus(navigate.DirUp),
		config.HotkeyFocusDown:    focus(navigate.DirDown),
		config.HotkeyCycle:        cycle(false),
		config.HotkeyCycleReverse: cycle(true),
		config.HotkeyArrange: func() {
			if err := arrange(); err != nil {
				logger.Warn("hotkey arrange failed", "error", err)
			}
		},
	}
}
