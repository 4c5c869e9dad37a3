// Package mcp exposes the window registry to MCP clients over stdio. Every
// tool is a thin call into the running daemon.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/winstack/internal/ipc"
	"github.com/1broseidon/winstack/internal/windows"
)

const (
	ServerName    = "winstack"
	ServerVersion = "0.1.0"
)

// Service is the daemon API the tools call. *ipc.Client satisfies it.
type Service interface {
	AddWindow(id string, patch windows.Patch) (*windows.Window, error)
	RemoveWindow(id string) (*ipc.MutationData, error)
	UpdateWindow(id string, patch windows.Patch) (*ipc.MutationData, error)
	FocusWindow(id string) (*ipc.MutationData, error)
	MinimizeWindow(id string) (*ipc.MutationData, error)
	MaximizeWindow(id string) (*ipc.MutationData, error)
	RestoreWindow(id string) (*ipc.MutationData, error)
	ListWindows() (*ipc.ListData, error)
	FocusDirection(direction string) (*ipc.MutationData, error)
	Arrange(layout string) (*ipc.ArrangeData, error)
}

// Server is the MCP server for winstack.
type Server struct {
	mcpServer *mcpsdk.Server
	svc       Service
	newID     func() string
}

// NewServer creates an MCP server backed by svc.
func NewServer(svc Service) *Server {
	s := &Server{
		svc:   svc,
		newID: uuid.NewString,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "open_window",
		Description: "Open a window on top of the stack and focus it. Geometry not given falls back to the configured default_window. Returns the new window, including its generated id when none was passed.",
	}, s.handleOpenWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Close a window. If it was focused, no window is focused afterwards.",
	}, s.handleCloseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_window",
		Description: "Move a window's top-left corner. Does not change focus or stacking.",
	}, s.handleMoveWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resize_window",
		Description: "Resize a window. Does not change focus or stacking.",
	}, s.handleResizeWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Focus a window and raise it to the top of the stack.",
	}, s.windowAction("focus_window", Service.FocusWindow))

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "minimize_window",
		Description: "Minimize a window. Focus and stacking are unchanged.",
	}, s.windowAction("minimize_window", Service.MinimizeWindow))

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "maximize_window",
		Description: "Toggle a window between maximized and normal. A minimized window becomes maximized.",
	}, s.windowAction("maximize_window", Service.MaximizeWindow))

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "restore_window",
		Description: "Return a window to the normal state.",
	}, s.windowAction("restore_window", Service.RestoreWindow))

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List windows in stacking order, back-most first, with the focused window id.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_direction",
		Description: "Focus the nearest visible window in a direction from the focused one, wrapping at the edges.",
	}, s.handleFocusDirection)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "arrange_windows",
		Description: "Tile all visible windows using a configured layout. Maximized windows are restored to normal first.",
	}, s.handleArrangeWindows)
}

func (s *Server) handleOpenWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args OpenWindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	id := strings.TrimSpace(args.ID)
	if id == "" {
		id = s.newID()
	}

	var patch windows.Patch
	if args.X != nil || args.Y != nil {
		if args.X == nil || args.Y == nil {
			return nil, WindowOutput{}, fmt.Errorf("x and y must be given together")
		}
		patch.Position = &windows.Point{X: *args.X, Y: *args.Y}
	}
	if args.Width != nil || args.Height != nil {
		if args.Width == nil || args.Height == nil {
			return nil, WindowOutput{}, fmt.Errorf("width and height must be given together")
		}
		if *args.Width <= 0 || *args.Height <= 0 {
			return nil, WindowOutput{}, fmt.Errorf("width and height must be > 0")
		}
		patch.Size = &windows.Size{Width: *args.Width, Height: *args.Height}
	}

	w, err := s.svc.AddWindow(id, patch)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	// A freshly added window always holds focus.
	return nil, WindowOutput{Window: infoFor(*w, w.ID)}, nil
}

func (s *Server) handleCloseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, CloseWindowOutput, error) {
	res, err := s.svc.RemoveWindow(args.ID)
	if err != nil {
		return nil, CloseWindowOutput{}, err
	}
	if !res.Applied {
		return nil, CloseWindowOutput{ID: args.ID}, notFound(args.ID)
	}
	return nil, CloseWindowOutput{ID: args.ID, Closed: true}, nil
}

func (s *Server) handleMoveWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveWindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return s.mutate(args.ID, func() (*ipc.MutationData, error) {
		return s.svc.UpdateWindow(args.ID, windows.PatchPosition(args.X, args.Y))
	})
}

func (s *Server) handleResizeWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args ResizeWindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	if args.Width <= 0 || args.Height <= 0 {
		return nil, WindowOutput{}, fmt.Errorf("width and height must be > 0")
	}
	return s.mutate(args.ID, func() (*ipc.MutationData, error) {
		return s.svc.UpdateWindow(args.ID, windows.PatchSize(args.Width, args.Height))
	})
}

func (s *Server) windowAction(tool string, action func(Service, string) (*ipc.MutationData, error)) mcpsdk.ToolHandlerFor[WindowInput, WindowOutput] {
	return func(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
		if strings.TrimSpace(args.ID) == "" {
			return nil, WindowOutput{}, fmt.Errorf("%s: id is required", tool)
		}
		return s.mutate(args.ID, func() (*ipc.MutationData, error) {
			return action(s.svc, args.ID)
		})
	}
}

// mutate runs fn and reports the window afterwards, treating an unknown id
// as an error so callers notice typos.
func (s *Server) mutate(id string, fn func() (*ipc.MutationData, error)) (*mcpsdk.CallToolResult, WindowOutput, error) {
	res, err := fn()
	if err != nil {
		return nil, WindowOutput{}, err
	}
	if !res.Applied || res.Window == nil {
		return nil, WindowOutput{}, notFound(id)
	}
	focused, err := s.focusedID()
	if err != nil {
		return nil, WindowOutput{}, err
	}
	return nil, WindowOutput{Window: infoFor(*res.Window, focused)}, nil
}

func (s *Server) focusedID() (string, error) {
	list, err := s.svc.ListWindows()
	if err != nil {
		return "", err
	}
	return list.Focused, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	list, err := s.svc.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	includeMinimized := args.IncludeMinimized == nil || *args.IncludeMinimized

	out := ListWindowsOutput{
		Windows: make([]WindowInfo, 0, len(list.Windows)),
		Focused: list.Focused,
		Version: list.Version,
	}
	for _, w := range list.Windows {
		if w.IsMinimized() && !includeMinimized {
			continue
		}
		out.Windows = append(out.Windows, infoFor(w, list.Focused))
	}
	return nil, out, nil
}

func (s *Server) handleFocusDirection(_ context.Context, _ *mcpsdk.CallToolRequest, args FocusDirectionInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	res, err := s.svc.FocusDirection(args.Direction)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	if res.Window == nil {
		return nil, WindowOutput{}, fmt.Errorf("no window to focus %s", args.Direction)
	}
	return nil, WindowOutput{Window: infoFor(*res.Window, res.Window.ID)}, nil
}

func (s *Server) handleArrangeWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ArrangeWindowsInput) (*mcpsdk.CallToolResult, ArrangeWindowsOutput, error) {
	res, err := s.svc.Arrange(args.Layout)
	if err != nil {
		return nil, ArrangeWindowsOutput{}, err
	}
	arranged := res.Arranged
	if arranged == nil {
		arranged = []string{}
	}
	return nil, ArrangeWindowsOutput{Layout: res.Layout, Arranged: arranged}, nil
}

func notFound(id string) error {
	return fmt.Errorf("window %q not found", id)
}
