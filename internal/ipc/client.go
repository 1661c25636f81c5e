package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"
)

const (
	defaultClientTimeout = 5 * time.Second
	maxResponseBytes     = 4 * 1024 * 1024
)

// Client handles IPC communication with the daemon
type Client struct {
	address string
	timeout time.Duration
}

// NewClient creates a client for the default daemon address.
func NewClient() *Client {
	address, err := DefaultAddress()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		address = ""
	}
	return NewClientAt(address)
}

// NewClientAt creates a client for address.
func NewClientAt(address string) *Client {
	return &Client{address: address, timeout: defaultClientTimeout}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := dial(c.address, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	respData, err := readFrame(bufio.NewReaderSize(conn, maxResponseBytes+1), maxResponseBytes)
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

func (c *Client) send(cmd CommandType, payload any) (*Response, error) {
	req := &Request{Command: cmd}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		req.Payload = raw
	}
	return c.sendRequest(req)
}

// Ping checks that the daemon is reachable.
func (c *Client) Ping() error {
	_, err := c.send(CommandPing, nil)
	return err
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	_, err := c.send(CommandReload, nil)
	return err
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.send(CommandGetStatus, nil)
	if err != nil {
		return nil, err
	}
	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}
	return &status, nil
}

// ListWindows retrieves the current switchable windows.
func (c *Client) ListWindows(groupByApp bool) (*WindowsData, error) {
	resp, err := c.send(CommandListWindows, ListWindowsPayload{GroupByApp: groupByApp})
	if err != nil {
		return nil, err
	}
	var windows WindowsData
	if err := json.Unmarshal(resp.Data, &windows); err != nil {
		return nil, fmt.Errorf("failed to parse windows data: %w", err)
	}
	return &windows, nil
}

// Switch performs one press-and-release of a gesture.
func (c *Client) Switch(gesture string, reverse bool) error {
	_, err := c.send(CommandSwitch, SwitchPayload{Gesture: gesture, Reverse: reverse})
	return err
}
