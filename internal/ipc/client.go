package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/winstack/internal/runtimepath"
	"github.com/1broseidon/winstack/internal/windows"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for an explicit socket path.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// SocketPath returns the socket the client dials.
func (c *Client) SocketPath() string {
	return c.socketPath
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	if _, err := conn.Write(append(reqData, '\n')); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	respData, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status == StatusError {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}
	return &resp, nil
}

// call sends command with payload and decodes the response data into out
// when out is non-nil.
func (c *Client) call(command CommandType, payload any, out any) error {
	req := &Request{Command: command}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = raw
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", command, err)
	}
	return nil
}

func (c *Client) windowAction(command CommandType, id string) (*MutationData, error) {
	var data MutationData
	if err := c.call(command, WindowPayload{ID: id}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// AddWindow opens (or replaces) a window and returns it.
func (c *Client) AddWindow(id string, patch windows.Patch) (*windows.Window, error) {
	var w windows.Window
	if err := c.call(CommandAddWindow, PatchPayload{ID: id, Patch: patch}, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *Client) RemoveWindow(id string) (*MutationData, error) {
	return c.windowAction(CommandRemoveWindow, id)
}

func (c *Client) UpdateWindow(id string, patch windows.Patch) (*MutationData, error) {
	var data MutationData
	if err := c.call(CommandUpdateWindow, PatchPayload{ID: id, Patch: patch}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) FocusWindow(id string) (*MutationData, error) {
	return c.windowAction(CommandFocusWindow, id)
}

func (c *Client) MinimizeWindow(id string) (*MutationData, error) {
	return c.windowAction(CommandMinimizeWindow, id)
}

// MaximizeWindow toggles the maximized state.
func (c *Client) MaximizeWindow(id string) (*MutationData, error) {
	return c.windowAction(CommandMaximizeWindow, id)
}

func (c *Client) RestoreWindow(id string) (*MutationData, error) {
	return c.windowAction(CommandRestoreWindow, id)
}

// GetWindow fails with "window not found" for unknown ids.
func (c *Client) GetWindow(id string) (*windows.Window, error) {
	var w windows.Window
	if err := c.call(CommandGetWindow, WindowPayload{ID: id}, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// ListWindows returns every window in paint order.
func (c *Client) ListWindows() (*ListData, error) {
	var data ListData
	if err := c.call(CommandListWindows, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) FocusDirection(direction string) (*MutationData, error) {
	var data MutationData
	if err := c.call(CommandFocusDirection, FocusDirectionPayload{Direction: direction}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) CycleFocus(reverse bool) (*MutationData, error) {
	var data MutationData
	if err := c.call(CommandCycleFocus, CycleFocusPayload{Reverse: reverse}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Arrange lays out visible windows; an empty layout uses default_layout.
func (c *Client) Arrange(layout string) (*ArrangeData, error) {
	var data ArrangeData
	if err := c.call(CommandArrange, ArrangePayload{Layout: layout}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// Reset clears every window.
func (c *Client) Reset() error {
	return c.call(CommandReset, nil, nil)
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
