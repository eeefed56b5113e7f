package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/frogmemo/frogmemo/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for the daemon listening on socketPath.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
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

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
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

func (c *Client) call(cmd CommandType, payload interface{}, out interface{}) error {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	return c.call(CommandPing, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Toggle runs one toggle in the daemon, exactly as a hotkey press would.
func (c *Client) Toggle() (*ToggleData, error) {
	var data ToggleData
	if err := c.call(CommandToggle, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// StoreGet returns the raw JSON value stored under key.
func (c *Client) StoreGet(key string) (json.RawMessage, error) {
	var data StoreValueData
	if err := c.call(CommandStoreGet, StoreKeyPayload{Key: key}, &data); err != nil {
		return nil, err
	}
	return data.Value, nil
}

// StoreSet stores value, which must be valid JSON, under key.
func (c *Client) StoreSet(key string, value json.RawMessage) error {
	return c.call(CommandStoreSet, StoreSetPayload{Key: key, Value: value}, nil)
}

// StoreDelete removes key.
func (c *Client) StoreDelete(key string) error {
	return c.call(CommandStoreDelete, StoreKeyPayload{Key: key}, nil)
}

// StoreList returns the sorted store keys.
func (c *Client) StoreList() ([]string, error) {
	var data StoreListData
	if err := c.call(CommandStoreList, nil, &data); err != nil {
		return nil, err
	}
	return data.Keys, nil
}
