package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/winstack/internal/config"
	"github.com/1broseidon/winstack/internal/navigate"
	"github.com/1broseidon/winstack/internal/runtimepath"
	"github.com/1broseidon/winstack/internal/tiling"
	"github.com/1broseidon/winstack/internal/windows"
)

// ServerOptions configures a Server.
type ServerOptions struct {
	// SocketPath defaults to runtimepath.SocketPath().
	SocketPath string
	Registry   *windows.Registry
	Config     *config.Config
	// LoadConfig is called on RELOAD. Defaults to config.Load.
	LoadConfig func() (*config.Config, error)
	// OnConfig is called after RELOAD installs a new config.
	OnConfig func(*config.Config)
}

// Server handles IPC requests from clients
type Server struct {
	socketPath string
	listener   net.Listener
	reg        *windows.Registry
	cfg        *config.Config
	cfgMu      sync.RWMutex
	loadConfig func() (*config.Config, error)
	onConfig   func(*config.Config)
	startTime  time.Time

	wg           sync.WaitGroup
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(opts ServerOptions) (*Server, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.LoadConfig == nil {
		opts.LoadConfig = config.Load
	}
	socketPath := opts.SocketPath
	if socketPath == "" {
		p, err := runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
		socketPath = p
	}

	return &Server{
		socketPath: socketPath,
		reg:        opts.Registry,
		cfg:        opts.Config,
		loadConfig: opts.LoadConfig,
		onConfig:   opts.OnConfig,
		startTime:  time.Now(),
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	// Stale socket from a previous run.
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.isShuttingDown() || errors.Is(err, net.ErrClosed) {
				return
			}
			log.Printf("IPC accept error: %v", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

func (s *Server) isShuttingDown() bool {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	return s.shuttingDown
}

// handleConnection reads one JSON request line and writes one response line.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	data, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.writeResponse(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}
	s.writeResponse(conn, s.handleCommand(req))
}

func (s *Server) writeResponse(conn net.Conn, resp *Response) {
	data, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandAddWindow:
		return s.handleAddWindow(req.Payload)
	case CommandRemoveWindow:
		return s.handleWindowAction(req.Payload, s.reg.RemoveWindow)
	case CommandUpdateWindow:
		return s.handleUpdateWindow(req.Payload)
	case CommandFocusWindow:
		return s.handleWindowAction(req.Payload, s.reg.FocusWindow)
	case CommandMinimizeWindow:
		return s.handleWindowAction(req.Payload, s.reg.MinimizeWindow)
	case CommandMaximizeWindow:
		return s.handleWindowAction(req.Payload, s.reg.MaximizeWindow)
	case CommandRestoreWindow:
		return s.handleWindowAction(req.Payload, s.reg.RestoreWindow)
	case CommandGetWindow:
		return s.handleGetWindow(req.Payload)
	case CommandListWindows:
		return s.handleListWindows()
	case CommandFocusDirection:
		return s.handleFocusDirection(req.Payload)
	case CommandCycleFocus:
		return s.handleCycleFocus(req.Payload)
	case CommandArrange:
		return s.handleArrange(req.Payload)
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandReload:
		return s.handleReload()
	case CommandReset:
		return s.handleReset()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func decodePayload(payload json.RawMessage, out any) error {
	if len(payload) == 0 {
		return fmt.Errorf("payload is required")
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

func ok(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) mutation(id string, applied bool) *Response {
	data := MutationData{Applied: applied}
	if w, found := s.reg.GetWindow(id); found {
		data.Window = &w
	}
	return ok(data)
}

func (s *Server) handleAddWindow(payload json.RawMessage) *Response {
	var req PatchPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(err.Error())
	}
	if strings.TrimSpace(req.ID) == "" {
		return NewErrorResponse("id is required")
	}
	return ok(s.reg.AddWindow(req.ID, req.Patch))
}

func (s *Server) handleUpdateWindow(payload json.RawMessage) *Response {
	var req PatchPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(err.Error())
	}
	if req.ID == "" {
		return NewErrorResponse("id is required")
	}
	return s.mutation(req.ID, s.reg.UpdateWindow(req.ID, req.Patch))
}

func (s *Server) handleWindowAction(payload json.RawMessage, action func(string) bool) *Response {
	var req WindowPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(err.Error())
	}
	if req.ID == "" {
		return NewErrorResponse("id is required")
	}
	return s.mutation(req.ID, action(req.ID))
}

func (s *Server) handleGetWindow(payload json.RawMessage) *Response {
	var req WindowPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(err.Error())
	}
	w, found := s.reg.GetWindow(req.ID)
	if !found {
		return NewErrorResponse(fmt.Sprintf("window not found: %s", req.ID))
	}
	return ok(w)
}

func (s *Server) handleListWindows() *Response {
	snap := s.reg.Snapshot()
	focused, _ := snap.FocusedID()
	return ok(ListData{
		Windows: snap.Windows(),
		Focused: focused,
		Version: snap.Version(),
	})
}

func (s *Server) handleFocusDirection(payload json.RawMessage) *Response {
	var req FocusDirectionPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(err.Error())
	}
	dir, err := navigate.ParseDirection(req.Direction)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	id, applied := navigate.FocusDirection(s.reg, dir)
	return s.mutation(id, applied)
}

func (s *Server) handleCycleFocus(payload json.RawMessage) *Response {
	var req CycleFocusPayload
	if len(payload) > 0 {
		if err := decodePayload(payload, &req); err != nil {
			return NewErrorResponse(err.Error())
		}
	}
	id, applied := navigate.CycleFocus(s.reg, req.Reverse)
	return s.mutation(id, applied)
}

func (s *Server) handleArrange(payload json.RawMessage) *Response {
	var req ArrangePayload
	if len(payload) > 0 {
		if err := decodePayload(payload, &req); err != nil {
			return NewErrorResponse(err.Error())
		}
	}

	cfg := s.GetConfig()
	name := req.Layout
	if name == "" {
		name = cfg.DefaultLayout
	}
	layout, err := cfg.GetLayout(name)
	if err != nil {
		return NewErrorResponse(err.Error())
	}

	arranged, err := tiling.Arrange(s.reg, tiling.RectFromConfig(cfg.Screen), layout, cfg.GapSize)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to arrange windows: %v", err))
	}
	if arranged == nil {
		arranged = []string{}
	}
	return ok(ArrangeData{Layout: name, Arranged: arranged})
}

func (s *Server) handleGetStatus() *Response {
	cfg := s.GetConfig()
	snap := s.reg.Snapshot()
	focused, _ := snap.FocusedID()
	return ok(StatusData{
		WindowCount:   snap.Len(),
		Focused:       focused,
		Version:       snap.Version(),
		DefaultLayout: cfg.DefaultLayout,
		Layouts:       cfg.LayoutNames(),
		MirrorEnabled: cfg.Mirror.Enabled,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
	})
}

// handleReload reloads the configuration
func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	newCfg, err := s.loadConfig()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	s.UpdateConfig(newCfg)
	if s.onConfig != nil {
		s.onConfig(newCfg)
	}

	log.Println("IPC: Config reloaded successfully")
	return ok(nil)
}

func (s *Server) handleReset() *Response {
	s.reg.Reset()
	return ok(nil)
}

// Stop closes the listener, waits for in-flight requests and removes the
// socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
}

// GetConfig returns the current config (thread-safe)
func (s *Server) GetConfig() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// UpdateConfig updates the config (thread-safe)
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	s.cfg = cfg
}
