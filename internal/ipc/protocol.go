package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandPing        CommandType = "PING"
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandToggle      CommandType = "TOGGLE"
	CommandStoreGet    CommandType = "STORE_GET"
	CommandStoreSet    CommandType = "STORE_SET"
	CommandStoreDelete CommandType = "STORE_DELETE"
	CommandStoreList   CommandType = "STORE_LIST"
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

// WindowData describes the managed window as last observed.
type WindowData struct {
	Label     string `json:"label"`
	Exists    bool   `json:"exists"`
	Visible   bool   `json:"visible"`
	Minimized bool   `json:"minimized"`
	Error     string `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	DaemonRunning bool       `json:"daemon_running"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	Hotkey        string     `json:"hotkey"`
	Presses       int64      `json:"presses"`
	Toggles       int64      `json:"toggles"`
	LastAction    string     `json:"last_action,omitempty"`
	Window        WindowData `json:"window"`
	StorePath     string     `json:"store_path"`
	StoreKeys     int        `json:"store_keys"`
}

// ToggleData reports one toggle: the branch taken and any failed commands.
type ToggleData struct {
	Action   string     `json:"action"`
	Before   WindowData `json:"before"`
	Failures []string   `json:"failures,omitempty"`
}

// StoreKeyPayload is the payload for STORE_GET and STORE_DELETE.
type StoreKeyPayload struct {
	Key string `json:"key"`
}

// StoreSetPayload is the payload for STORE_SET. Value must be valid JSON.
type StoreSetPayload struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// StoreValueData is returned by STORE_GET.
type StoreValueData struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// StoreListData is returned by STORE_LIST.
type StoreListData struct {
	Keys []string `json:"keys"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
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
		return nil, fmt.Errorf("failed to parse request: missing command")
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
