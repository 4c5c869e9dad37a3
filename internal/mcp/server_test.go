package mcp

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/winstack/internal/ipc"
	"github.com/1broseidon/winstack/internal/navigate"
	"github.com/1broseidon/winstack/internal/windows"
)

// registryService answers tool calls straight from a registry, the way the
// daemon would.
type registryService struct {
	reg        *windows.Registry
	arrangeErr error
}

func newRegistryService() *registryService {
	return &registryService{reg: windows.New(windows.Config{})}
}

func (r *registryService) mutation(id string, applied bool) (*ipc.MutationData, error) {
	data := &ipc.MutationData{Applied: applied}
	if w, ok := r.reg.GetWindow(id); ok {
		data.Window = &w
	}
	return data, nil
}

func (r *registryService) AddWindow(id string, patch windows.Patch) (*windows.Window, error) {
	w := r.reg.AddWindow(id, patch)
	return &w, nil
}

func (r *registryService) RemoveWindow(id string) (*ipc.MutationData, error) {
	return r.mutation(id, r.reg.RemoveWindow(id))
}

func (r *registryService) UpdateWindow(id string, patch windows.Patch) (*ipc.MutationData, error) {
	return r.mutation(id, r.reg.UpdateWindow(id, patch))
}

func (r *registryService) FocusWindow(id string) (*ipc.MutationData, error) {
	return r.mutation(id, r.reg.FocusWindow(id))
}

func (r *registryService) MinimizeWindow(id string) (*ipc.MutationData, error) {
	return r.mutation(id, r.reg.MinimizeWindow(id))
}

func (r *registryService) MaximizeWindow(id string) (*ipc.MutationData, error) {
	return r.mutation(id, r.reg.MaximizeWindow(id))
}

func (r *registryService) RestoreWindow(id string) (*ipc.MutationData, error) {
	return r.mutation(id, r.reg.RestoreWindow(id))
}

func (r *registryService) ListWindows() (*ipc.ListData, error) {
	snap := r.reg.Snapshot()
	focused, _ := snap.FocusedID()
	return &ipc.ListData{Windows: snap.Windows(), Focused: focused, Version: snap.Version()}, nil
}

func (r *registryService) FocusDirection(direction string) (*ipc.MutationData, error) {
	dir, err := navigate.ParseDirection(direction)
	if err != nil {
		return nil, err
	}
	return r.mutation(navigate.FocusDirection(r.reg, dir))
}

func (r *registryService) Arrange(layout string) (*ipc.ArrangeData, error) {
	if r.arrangeErr != nil {
		return nil, r.arrangeErr
	}
	return &ipc.ArrangeData{Layout: layout}, nil
}

func newTestServer(svc Service) *Server {
	s := NewServer(svc)
	s.newID = func() string { return "generated" }
	return s
}

func intPtr(v int) *int { return &v }

func TestOpenWindow(t *testing.T) {
	svc := newRegistryService()
	s := newTestServer(svc)

	_, out, err := s.handleOpenWindow(context.Background(), nil, OpenWindowInput{
		Width:  intPtr(300),
		Height: intPtr(200),
	})
	if err != nil {
		t.Fatalf("open_window: %v", err)
	}
	want := WindowInfo{ID: "generated", X: 100, Y: 100, Width: 300, Height: 200, State: "normal", ZIndex: 1001, Focused: true}
	if diff := cmp.Diff(want, out.Window); diff != "" {
		t.Fatalf("window mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenWindow_RejectsPartialGeometry(t *testing.T) {
	s := newTestServer(newRegistryService())
	tests := []struct {
		name string
		in   OpenWindowInput
	}{
		{"x without y", OpenWindowInput{X: intPtr(1)}},
		{"height without width", OpenWindowInput{Height: intPtr(1)}},
		{"zero size", OpenWindowInput{Width: intPtr(0), Height: intPtr(10)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := s.handleOpenWindow(context.Background(), nil, tt.in); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestWindowTools_UnknownID(t *testing.T) {
	s := newTestServer(newRegistryService())
	ctx := context.Background()

	if _, _, err := s.handleMoveWindow(ctx, nil, MoveWindowInput{ID: "ghost", X: 1, Y: 2}); err == nil || !strings.Contains(err.Error(), `"ghost" not found`) {
		t.Fatalf("move_window: expected not found, got %v", err)
	}
	if _, out, err := s.handleCloseWindow(ctx, nil, WindowInput{ID: "ghost"}); err == nil || out.Closed {
		t.Fatalf("close_window: expected not found, got %+v %v", out, err)
	}
	focus := s.windowAction("focus_window", Service.FocusWindow)
	if _, _, err := focus(ctx, nil, WindowInput{ID: "ghost"}); err == nil {
		t.Fatal("focus_window: expected not found")
	}
	if _, _, err := focus(ctx, nil, WindowInput{ID: " "}); err == nil || !strings.Contains(err.Error(), "id is required") {
		t.Fatalf("focus_window: expected id required, got %v", err)
	}
}

func TestWindowTools_StateChanges(t *testing.T) {
	svc := newRegistryService()
	s := newTestServer(svc)
	ctx := context.Background()
	svc.reg.AddWindow("a", windows.Patch{})
	svc.reg.AddWindow("b", windows.Patch{})

	_, out, err := s.windowAction("focus_window", Service.FocusWindow)(ctx, nil, WindowInput{ID: "a"})
	if err != nil || !out.Window.Focused || out.Window.ZIndex != 1003 {
		t.Fatalf("focus_window = %+v, %v", out, err)
	}

	_, out, err = s.windowAction("maximize_window", Service.MaximizeWindow)(ctx, nil, WindowInput{ID: "b"})
	if err != nil || out.Window.State != "maximized" || out.Window.Focused {
		t.Fatalf("maximize_window = %+v, %v", out, err)
	}

	_, out, err = s.handleResizeWindow(ctx, nil, ResizeWindowInput{ID: "b", Width: 50, Height: 60})
	if err != nil || out.Window.Width != 50 || out.Window.Height != 60 {
		t.Fatalf("resize_window = %+v, %v", out, err)
	}
	if _, _, err := s.handleResizeWindow(ctx, nil, ResizeWindowInput{ID: "b", Width: -1, Height: 60}); err == nil {
		t.Fatal("expected error for negative width")
	}

	_, out, err = s.windowAction("minimize_window", Service.MinimizeWindow)(ctx, nil, WindowInput{ID: "b"})
	if err != nil || out.Window.State != "minimized" {
		t.Fatalf("minimize_window = %+v, %v", out, err)
	}

	_, list, err := s.handleListWindows(ctx, nil, ListWindowsInput{IncludeMinimized: new(bool)})
	if err != nil {
		t.Fatalf("list_windows: %v", err)
	}
	if len(list.Windows) != 1 || list.Windows[0].ID != "a" || list.Focused != "a" {
		t.Fatalf("unexpected list %+v", list)
	}

	_, closed, err := s.handleCloseWindow(ctx, nil, WindowInput{ID: "a"})
	if err != nil || !closed.Closed {
		t.Fatalf("close_window = %+v, %v", closed, err)
	}
	if svc.reg.Len() != 1 {
		t.Fatalf("expected one window left, got %d", svc.reg.Len())
	}
}

func TestArrangeWindows(t *testing.T) {
	svc := newRegistryService()
	s := newTestServer(svc)

	_, out, err := s.handleArrangeWindows(context.Background(), nil, ArrangeWindowsInput{Layout: "grid"})
	if err != nil {
		t.Fatalf("arrange_windows: %v", err)
	}
	if out.Arranged == nil || out.Layout != "grid" {
		t.Fatalf("unexpected output %+v", out)
	}

	svc.arrangeErr = errors.New(`layout "nope" not found`)
	if _, _, err := s.handleArrangeWindows(context.Background(), nil, ArrangeWindowsInput{Layout: "nope"}); err == nil {
		t.Fatal("expected arrange error")
	}
}

func connect(t *testing.T, s *Server) *mcpsdk.ClientSession {
	t.Helper()
	ctx := context.Background()
	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	ss, err := s.mcpServer.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() {
		cs.Close()
		ss.Wait()
	})
	return cs
}

func TestServer_ToolsOverSession(t *testing.T) {
	svc := newRegistryService()
	cs := connect(t, newTestServer(svc))
	ctx := context.Background()

	tools, err := cs.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	want := []string{
		"arrange_windows", "close_window", "focus_direction", "focus_window",
		"list_windows", "maximize_window", "minimize_window", "move_window",
		"open_window", "resize_window", "restore_window",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("tools mismatch (-want +got):\n%s", diff)
	}

	res, err := cs.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      "open_window",
		Arguments: map[string]any{"id": "notes"},
	})
	if err != nil {
		t.Fatalf("CallTool open_window: %v", err)
	}
	if res.IsError {
		t.Fatalf("open_window returned tool error: %+v", res.Content)
	}
	if _, ok := svc.reg.GetWindow("notes"); !ok {
		t.Fatal("expected window in registry")
	}

	res, err = cs.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      "restore_window",
		Arguments: map[string]any{"id": "ghost"},
	})
	if err != nil {
		t.Fatalf("CallTool restore_window: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool error for unknown window")
	}
}
