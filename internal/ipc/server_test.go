package ipc

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/1broseidon/winstack/internal/config"
	"github.com/1broseidon/winstack/internal/windows"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	goleak.VerifyTestMain(m)
}

func startServer(t *testing.T, reg *windows.Registry, opts ServerOptions) *Client {
	t.Helper()
	opts.SocketPath = filepath.Join(t.TempDir(), "s.sock")
	opts.Registry = reg
	srv, err := NewServer(opts)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)
	return NewClientAt(srv.SocketPath())
}

func TestServer_WindowLifecycle(t *testing.T) {
	reg := windows.New(windows.Config{})
	c := startServer(t, reg, ServerOptions{})

	w, err := c.AddWindow("w1", windows.PatchSize(640, 480))
	if err != nil {
		t.Fatalf("AddWindow: %v", err)
	}
	want := windows.Window{
		ID:       "w1",
		Position: windows.Point{X: 100, Y: 100},
		Size:     windows.Size{Width: 640, Height: 480},
		State:    windows.StateNormal,
		ZIndex:   1001,
	}
	if diff := cmp.Diff(want, *w); diff != "" {
		t.Fatalf("added window mismatch (-want +got):\n%s", diff)
	}

	if _, err := c.AddWindow("w2", windows.Patch{}); err != nil {
		t.Fatalf("AddWindow w2: %v", err)
	}

	res, err := c.FocusWindow("w1")
	if err != nil || !res.Applied || res.Window.ZIndex != 1003 {
		t.Fatalf("FocusWindow = %+v, %v", res, err)
	}

	res, err = c.MaximizeWindow("w1")
	if err != nil || res.Window.State != windows.StateMaximized {
		t.Fatalf("MaximizeWindow = %+v, %v", res, err)
	}
	res, err = c.MinimizeWindow("w1")
	if err != nil || res.Window.State != windows.StateMinimized {
		t.Fatalf("MinimizeWindow = %+v, %v", res, err)
	}
	res, err = c.RestoreWindow("w1")
	if err != nil || res.Window.State != windows.StateNormal {
		t.Fatalf("RestoreWindow = %+v, %v", res, err)
	}
	res, err = c.UpdateWindow("w1", windows.PatchPosition(7, 8))
	if err != nil || res.Window.Position != (windows.Point{X: 7, Y: 8}) {
		t.Fatalf("UpdateWindow = %+v, %v", res, err)
	}

	list, err := c.ListWindows()
	if err != nil {
		t.Fatalf("ListWindows: %v", err)
	}
	if list.Focused != "w1" || len(list.Windows) != 2 || list.Windows[1].ID != "w1" {
		t.Fatalf("unexpected list %+v", list)
	}
	if list.Version != reg.Version() {
		t.Fatalf("list version %d, registry %d", list.Version, reg.Version())
	}

	res, err = c.RemoveWindow("w1")
	if err != nil || !res.Applied || res.Window != nil {
		t.Fatalf("RemoveWindow = %+v, %v", res, err)
	}
	status, err := c.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.WindowCount != 1 || status.Focused != "" || !status.DaemonRunning {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestServer_UnknownWindows(t *testing.T) {
	reg := windows.New(windows.Config{})
	c := startServer(t, reg, ServerOptions{})

	res, err := c.FocusWindow("ghost")
	if err != nil {
		t.Fatalf("FocusWindow: %v", err)
	}
	if res.Applied || res.Window != nil {
		t.Fatalf("expected not applied, got %+v", res)
	}

	if _, err := c.GetWindow("ghost"); err == nil || !strings.Contains(err.Error(), "window not found: ghost") {
		t.Fatalf("expected not found error, got %v", err)
	}
	if reg.Version() != 0 {
		t.Fatalf("expected no version bump, got %d", reg.Version())
	}
}

func TestServer_ValidationErrors(t *testing.T) {
	c := startServer(t, windows.New(windows.Config{}), ServerOptions{})

	if _, err := c.AddWindow("  ", windows.Patch{}); err == nil {
		t.Fatal("expected error for blank id")
	}
	if _, err := c.FocusDirection("sideways"); err == nil {
		t.Fatal("expected error for bad direction")
	}
	if _, err := c.Arrange("nope"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected unknown layout error, got %v", err)
	}
	if err := c.call("BOGUS", nil, nil); err == nil || !strings.Contains(err.Error(), "Unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestServer_NavigationAndArrange(t *testing.T) {
	reg := windows.New(windows.Config{})
	cfg := config.DefaultConfig()
	cfg.Screen = config.Rect{Width: 400, Height: 200}
	cfg.GapSize = 0
	c := startServer(t, reg, ServerOptions{Config: cfg})

	c.AddWindow("left", windows.Patch{})
	c.AddWindow("right", windows.Patch{})

	arranged, err := c.Arrange("columns")
	if err != nil {
		t.Fatalf("Arrange: %v", err)
	}
	if diff := cmp.Diff([]string{"left", "right"}, arranged.Arranged); diff != "" {
		t.Fatalf("arranged mismatch (-want +got):\n%s", diff)
	}

	res, err := c.FocusDirection("left")
	if err != nil || res.Window == nil || res.Window.ID != "left" {
		t.Fatalf("FocusDirection = %+v, %v", res, err)
	}
	res, err = c.CycleFocus(false)
	if err != nil || res.Window.ID != "right" {
		t.Fatalf("CycleFocus = %+v, %v", res, err)
	}
}

func TestServer_ReloadAndReset(t *testing.T) {
	reg := windows.New(windows.Config{})
	reloaded := config.DefaultConfig()
	reloaded.DefaultLayout = "rows"

	got := make(chan *config.Config, 1)
	c := startServer(t, reg, ServerOptions{
		LoadConfig: func() (*config.Config, error) { return reloaded, nil },
		OnConfig:   func(cfg *config.Config) { got <- cfg },
	})

	if err := c.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if cfg := <-got; cfg != reloaded {
		t.Fatal("expected OnConfig to receive reloaded config")
	}
	status, err := c.GetStatus()
	if err != nil || status.DefaultLayout != "rows" {
		t.Fatalf("status after reload = %+v, %v", status, err)
	}

	c.AddWindow("w1", windows.Patch{})
	if err := c.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if reg.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", reg.Len())
	}
}

func TestServer_ReloadFailureKeepsConfig(t *testing.T) {
	c := startServer(t, windows.New(windows.Config{}), ServerOptions{
		LoadConfig: func() (*config.Config, error) { return nil, errors.New("bad yaml") },
	})
	if err := c.Reload(); err == nil || !strings.Contains(err.Error(), "bad yaml") {
		t.Fatalf("expected reload error, got %v", err)
	}
	if status, err := c.GetStatus(); err != nil || status.DefaultLayout != config.DefaultBuiltinLayout {
		t.Fatalf("expected default config kept, got %+v %v", status, err)
	}
}

func TestServer_StopRemovesSocket(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.sock")
	srv, err := NewServer(ServerOptions{SocketPath: path, Registry: windows.New(windows.Config{})})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	srv.Stop()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected socket removed, stat err = %v", err)
	}
	if err := NewClientAt(path).Ping(); err == nil {
		t.Fatal("expected ping to fail after stop")
	}
}

func TestResponseEncoding(t *testing.T) {
	resp, err := NewOKResponse(MutationData{Applied: false})
	if err != nil {
		t.Fatalf("NewOKResponse: %v", err)
	}
	data, _ := resp.Marshal()
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["status"] != "OK" {
		t.Fatalf("unexpected status %v", decoded["status"])
	}
	if !strings.Contains(string(data), `"applied":false`) {
		t.Fatalf("expected applied:false in %s", data)
	}
}
