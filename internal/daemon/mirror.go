package daemon

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/1broseidon/winstack/internal/platform"
	"github.com/1broseidon/winstack/internal/windows"
)

// MirrorConfig holds configuration for the mirror.
type MirrorConfig struct {
	Interval         time.Duration
	IncludeMinimized bool
	Logger           *slog.Logger
}

// Mirror periodically copies the host's top-level windows into the
// registry. It only ever adds, updates or removes windows it created itself,
// keyed by platform.WindowID.Key, so windows opened over IPC are left alone.
//
// Only host-side changes are propagated: a mirrored window edited through the
// registry keeps that edit until the host window itself moves or changes
// state, and focus follows the host only when the active window changes.
type Mirror struct {
	interval         time.Duration
	includeMinimized bool
	backend          platform.Backend
	reg              *windows.Registry
	logger           *slog.Logger

	mu         sync.Mutex
	owned      map[string]platform.Window // last host state per mirrored id
	lastActive string
}

// NewMirror creates a mirror that reads from backend and writes to reg.
func NewMirror(cfg MirrorConfig, backend platform.Backend, reg *windows.Registry) *Mirror {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Mirror{
		interval:         interval,
		includeMinimized: cfg.IncludeMinimized,
		backend:          backend,
		reg:              reg,
		logger:           logger,
		owned:            make(map[string]platform.Window),
	}
}

// Run mirrors once immediately and then on every tick. Blocks until ctx is
// cancelled.
func (m *Mirror) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Info("mirror started", "interval", m.interval)
	m.SyncNow()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("mirror stopped")
			return
		case <-ticker.C:
			m.SyncNow()
		}
	}
}

// SyncNow performs a single mirror pass.
func (m *Mirror) SyncNow() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			m.logger.Error("mirror panic recovered", "error", err)
		}
	}()

	hostWindows, err := m.backend.ListWindows()
	if err != nil {
		m.logger.Error("mirror: failed to list windows", "error", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]struct{}, len(hostWindows))
	// Bottom to top, so windows new to the registry stack the way they do
	// on screen.
	for _, hw := range hostWindows {
		if hw.Minimized && !m.includeMinimized {
			continue
		}
		id := hw.ID.Key()
		seen[id] = struct{}{}
		patch := patchFor(hw)

		last, owned := m.owned[id]
		_, exists := m.reg.GetWindow(id)
		switch {
		case owned && !exists:
			// Closed through the registry; stays closed while the host window lives.
		case !exists:
			m.reg.AddWindow(id, patch)
			m.owned[id] = hw
			m.logger.Debug("mirror: window added", "id", id, "title", hw.Title, "app", hw.AppID)
		case owned && last != hw:
			m.reg.UpdateWindow(id, patch)
			m.owned[id] = hw
		}
	}

	for id := range m.owned {
		if _, ok := seen[id]; ok {
			continue
		}
		m.reg.RemoveWindow(id)
		delete(m.owned, id)
		m.logger.Debug("mirror: window removed", "id", id)
	}

	active, err := m.backend.ActiveWindow()
	if err != nil {
		m.logger.Debug("mirror: no active window", "error", err)
		return
	}
	activeID := active.Key()
	if activeID == m.lastActive {
		return
	}
	if _, ok := m.owned[activeID]; !ok {
		return
	}
	m.lastActive = activeID
	if focused, ok := m.reg.FocusedID(); !ok || focused != activeID {
		m.reg.FocusWindow(activeID)
	}
}

// Owned returns the ids the mirror currently manages, sorted.
func (m *Mirror) Owned() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.owned))
	for id := range m.owned {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func patchFor(hw platform.Window) windows.Patch {
	state := windows.StateNormal
	switch {
	case hw.Minimized:
		state = windows.StateMinimized
	case hw.Maximized:
		state = windows.StateMaximized
	}
	return windows.Patch{
		Position: &windows.Point{X: hw.Bounds.X, Y: hw.Bounds.Y},
		Size:     &windows.Size{Width: hw.Bounds.Width, Height: hw.Bounds.Height},
		State:    &state,
	}
}
