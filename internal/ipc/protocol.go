package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/winstack/internal/windows"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandAddWindow      CommandType = "ADD_WINDOW"
	CommandRemoveWindow   CommandType = "REMOVE_WINDOW"
	CommandUpdateWindow   CommandType = "UPDATE_WINDOW"
	CommandFocusWindow    CommandType = "FOCUS_WINDOW"
	CommandMinimizeWindow CommandType = "MINIMIZE_WINDOW"
	CommandMaximizeWindow CommandType = "MAXIMIZE_WINDOW"
	CommandRestoreWindow  CommandType = "RESTORE_WINDOW"
	CommandGetWindow      CommandType = "GET_WINDOW"
	CommandListWindows    CommandType = "LIST_WINDOWS"
	CommandFocusDirection CommandType = "FOCUS_DIRECTION"
	CommandCycleFocus     CommandType = "CYCLE_FOCUS"
	CommandArrange        CommandType = "ARRANGE"
	CommandGetStatus      CommandType = "GET_STATUS"
	CommandReload         CommandType = "RELOAD"
	CommandReset          CommandType = "RESET"
)

const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// WindowPayload targets a single window.
type WindowPayload struct {
	ID string `json:"id"`
}

// PatchPayload carries a window id and a partial update. ADD_WINDOW applies
// the patch over the configured defaults.
type PatchPayload struct {
	ID    string        `json:"id"`
	Patch windows.Patch `json:"patch"`
}

type FocusDirectionPayload struct {
	Direction string `json:"direction"`
}

type CycleFocusPayload struct {
	Reverse bool `json:"reverse,omitempty"`
}

type ArrangePayload struct {
	Layout string `json:"layout,omitempty"` // empty means default_layout
}

// MutationData reports the outcome of a mutation. Applied is false when the
// target window does not exist; Window is its state afterwards.
type MutationData struct {
	Applied bool            `json:"applied"`
	Window  *windows.Window `json:"window,omitempty"`
}

// ListData is the full stack, back-most window first.
type ListData struct {
	Windows []windows.Window `json:"windows"`
	Focused string           `json:"focused,omitempty"`
	Version uint64           `json:"version"`
}

type ArrangeData struct {
	Layout   string   `json:"layout"`
	Arranged []string `json:"arranged"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	WindowCount   int      `json:"window_count"`
	Focused       string   `json:"focused,omitempty"`
	Version       uint64   `json:"version"`
	DefaultLayout string   `json:"default_layout"`
	Layouts       []string `json:"layouts"`
	MirrorEnabled bool     `json:"mirror_enabled"`
	UptimeSeconds int64    `json:"uptime_seconds"`
	DaemonRunning bool     `json:"daemon_running"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		raw = b
	}
	return &Response{Status: StatusOK, Data: raw}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{Status: StatusError, Error: errMsg}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
