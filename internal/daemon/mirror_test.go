package daemon

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/winstack/internal/platform"
	"github.com/1broseidon/winstack/internal/windows"
)

type fakeBackend struct {
	mu      sync.Mutex
	windows []platform.Window
	active  platform.WindowID
	listErr error
	closed  bool
}

func (f *fakeBackend) set(active platform.WindowID, ws ...platform.Window) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active = active
	f.windows = ws
}

func (f *fakeBackend) Displays() ([]platform.Display, error) { return nil, nil }

func (f *fakeBackend) ActiveDisplay() (platform.Display, error) {
	return platform.Display{}, nil
}

func (f *fakeBackend) ActiveWindow() (platform.WindowID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active == 0 {
		return 0, errors.New("no active window")
	}
	return f.active, nil
}

func (f *fakeBackend) ListWindows() ([]platform.Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]platform.Window, len(f.windows))
	copy(out, f.windows)
	return out, nil
}

func (f *fakeBackend) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func hostWindow(id platform.WindowID, x, y, w, h int) platform.Window {
	return platform.Window{ID: id, Bounds: platform.Rect{X: x, Y: y, Width: w, Height: h}}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMirror(backend platform.Backend, reg *windows.Registry, includeMinimized bool) *Mirror {
	return NewMirror(MirrorConfig{IncludeMinimized: includeMinimized, Logger: testLogger()}, backend, reg)
}

func TestMirror_AddsWindowsInStackingOrder(t *testing.T) {
	backend := &fakeBackend{}
	backend.set(0x10,
		hostWindow(0x10, 0, 0, 800, 600),
		hostWindow(0x20, 50, 50, 400, 300),
	)
	reg := windows.New(windows.Config{})
	m := newTestMirror(backend, reg, true)

	m.SyncNow()

	got := reg.Snapshot().Windows()
	if diff := cmp.Diff([]string{"x11:0x20", "x11:0x10"}, idsOf(got)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	w, _ := reg.GetWindow("x11:0x20")
	if w.Position != (windows.Point{X: 50, Y: 50}) || w.Size != (windows.Size{Width: 400, Height: 300}) {
		t.Fatalf("unexpected geometry %+v", w)
	}
	if focused, _ := reg.FocusedID(); focused != "x11:0x10" {
		t.Fatalf("expected active window focused, got %q", focused)
	}
	if diff := cmp.Diff([]string{"x11:0x10", "x11:0x20"}, m.Owned()); diff != "" {
		t.Fatalf("owned mismatch (-want +got):\n%s", diff)
	}
}

func TestMirror_UpdatesAndRemoves(t *testing.T) {
	backend := &fakeBackend{}
	backend.set(0, hostWindow(0x10, 0, 0, 800, 600), hostWindow(0x20, 0, 0, 100, 100))
	reg := windows.New(windows.Config{})
	m := newTestMirror(backend, reg, true)
	m.SyncNow()

	moved := hostWindow(0x10, 10, 20, 800, 600)
	moved.Maximized = true
	backend.set(0, moved)
	m.SyncNow()

	if _, ok := reg.GetWindow("x11:0x20"); ok {
		t.Fatal("expected vanished window removed")
	}
	w, ok := reg.GetWindow("x11:0x10")
	if !ok {
		t.Fatal("expected window kept")
	}
	if w.Position != (windows.Point{X: 10, Y: 20}) || w.State != windows.StateMaximized {
		t.Fatalf("unexpected window %+v", w)
	}
}

func TestMirror_UnchangedPassDoesNotBumpVersion(t *testing.T) {
	backend := &fakeBackend{}
	backend.set(0x10, hostWindow(0x10, 0, 0, 800, 600))
	reg := windows.New(windows.Config{})
	m := newTestMirror(backend, reg, true)

	m.SyncNow()
	before := reg.Version()
	m.SyncNow()
	if reg.Version() != before {
		t.Fatalf("version moved from %d to %d", before, reg.Version())
	}
}

func TestMirror_RegistryEditsStickUntilHostChanges(t *testing.T) {
	backend := &fakeBackend{}
	backend.set(0x10, hostWindow(0x10, 0, 0, 800, 600), hostWindow(0x20, 0, 0, 100, 100))
	reg := windows.New(windows.Config{})
	m := newTestMirror(backend, reg, true)
	m.SyncNow()

	reg.UpdateWindow("x11:0x10", windows.PatchPosition(300, 300))
	reg.FocusWindow("x11:0x20")
	m.SyncNow()

	w, _ := reg.GetWindow("x11:0x10")
	if w.Position != (windows.Point{X: 300, Y: 300}) {
		t.Fatalf("registry edit reverted: %+v", w.Position)
	}
	if focused, _ := reg.FocusedID(); focused != "x11:0x20" {
		t.Fatalf("focus pulled back to host active window: %q", focused)
	}

	backend.set(0x10, hostWindow(0x10, 5, 5, 800, 600), hostWindow(0x20, 0, 0, 100, 100))
	m.SyncNow()
	w, _ = reg.GetWindow("x11:0x10")
	if w.Position != (windows.Point{X: 5, Y: 5}) {
		t.Fatalf("host move not mirrored: %+v", w.Position)
	}
}

func TestMirror_ClosedThroughRegistryStaysClosed(t *testing.T) {
	backend := &fakeBackend{}
	backend.set(0, hostWindow(0x10, 0, 0, 10, 10))
	reg := windows.New(windows.Config{})
	m := newTestMirror(backend, reg, true)
	m.SyncNow()

	reg.RemoveWindow("x11:0x10")
	m.SyncNow()
	if reg.Len() != 0 {
		t.Fatal("expected window to stay closed")
	}

	backend.set(0)
	m.SyncNow()
	backend.set(0, hostWindow(0x10, 0, 0, 10, 10))
	m.SyncNow()
	if _, ok := reg.GetWindow("x11:0x10"); !ok {
		t.Fatal("expected a reappearing host window to be mirrored again")
	}
}

func TestMirror_LeavesForeignWindowsAlone(t *testing.T) {
	backend := &fakeBackend{}
	reg := windows.New(windows.Config{})
	reg.AddWindow("editor", windows.Patch{})
	m := newTestMirror(backend, reg, true)

	backend.set(0x10, hostWindow(0x10, 0, 0, 10, 10))
	m.SyncNow()
	backend.set(0)
	m.SyncNow()

	if _, ok := reg.GetWindow("editor"); !ok {
		t.Fatal("mirror removed a window it did not create")
	}
	if reg.Len() != 1 {
		t.Fatalf("expected only editor left, got %d windows", reg.Len())
	}
}

func TestMirror_SkipsMinimizedWhenExcluded(t *testing.T) {
	backend := &fakeBackend{}
	hidden := hostWindow(0x30, 0, 0, 10, 10)
	hidden.Minimized = true
	backend.set(0, hostWindow(0x10, 0, 0, 10, 10), hidden)

	reg := windows.New(windows.Config{})
	newTestMirror(backend, reg, false).SyncNow()
	if _, ok := reg.GetWindow("x11:0x30"); ok {
		t.Fatal("expected minimized window skipped")
	}

	reg2 := windows.New(windows.Config{})
	newTestMirror(backend, reg2, true).SyncNow()
	w, ok := reg2.GetWindow("x11:0x30")
	if !ok || w.State != windows.StateMinimized {
		t.Fatalf("expected minimized window mirrored, got %+v %v", w, ok)
	}
}

func TestMirror_ListErrorKeepsState(t *testing.T) {
	backend := &fakeBackend{}
	backend.set(0, hostWindow(0x10, 0, 0, 10, 10))
	reg := windows.New(windows.Config{})
	m := newTestMirror(backend, reg, true)
	m.SyncNow()

	backend.mu.Lock()
	backend.listErr = errors.New("connection lost")
	backend.mu.Unlock()
	m.SyncNow()

	if reg.Len() != 1 {
		t.Fatalf("expected registry untouched, got %d windows", reg.Len())
	}
}

func idsOf(ws []windows.Window) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.ID
	}
	return out
}
