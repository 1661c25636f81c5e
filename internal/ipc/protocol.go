package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// maxRequestBytes limits a single request line.
const maxRequestBytes = 64 * 1024

// CommandType represents different IPC command types
type CommandType string

const (
	CommandPing        CommandType = "PING"
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandListWindows CommandType = "LIST_WINDOWS"
	CommandReload      CommandType = "RELOAD"
	CommandSwitch      CommandType = "SWITCH"
)

const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Gesture names accepted by SWITCH.
const (
	GestureWindows = "windows"
	GestureApps    = "apps"
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

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	PID           int    `json:"pid"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	HookInstalled bool   `json:"hook_installed"`
	HotkeyActive  bool   `json:"hotkey_active"`
	WindowsHotkey string `json:"windows_hotkey"`
	AppsHotkey    string `json:"apps_hotkey,omitempty"`
	Foreground    string `json:"foreground,omitempty"`
	Steps         uint64 `json:"steps"`
	Activations   uint64 `json:"activations"`
	Failures      uint64 `json:"failures"`
	Reloads       uint64 `json:"reloads"`
	Dropped       uint64 `json:"dropped"`
}

// ListWindowsPayload is the payload of LIST_WINDOWS.
type ListWindowsPayload struct {
	GroupByApp bool `json:"group_by_app"`
}

// WindowData is one switchable window.
type WindowData struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
}

// GroupData is the windows of one executable, frontmost first.
type GroupData struct {
	Key     string       `json:"key"`
	Windows []WindowData `json:"windows"`
}

// WindowsData represents the data returned by LIST_WINDOWS
type WindowsData struct {
	Groups []GroupData `json:"groups"`
}

// SwitchPayload is the payload of SWITCH: one complete press-and-release.
type SwitchPayload struct {
	Gesture string `json:"gesture"`
	Reverse bool   `json:"reverse,omitempty"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: StatusOK,
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: StatusError,
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	if req.Command == "" {
		return nil, errors.New("missing command")
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// readFrame reads one newline-terminated frame of at most maxBytes. A final
// frame without a newline is accepted.
func readFrame(reader *bufio.Reader, maxBytes int) ([]byte, error) {
	raw, err := reader.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("frame exceeds %d bytes", maxBytes)
	}
	if errors.Is(err, io.EOF) {
		if len(raw) == 0 {
			return nil, io.EOF
		}
		return raw, nil
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}
