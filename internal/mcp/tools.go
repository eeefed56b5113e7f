package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/frogmemo/frogmemo/internal/ipc"
	"github.com/frogmemo/frogmemo/internal/store"
)

func (s *Server) handleToggleWindow(_ context.Context, _ *mcpsdk.CallToolRequest, _ ToggleWindowInput) (*mcpsdk.CallToolResult, ToggleWindowOutput, error) {
	data, err := s.daemon.Toggle()
	if err != nil {
		return nil, ToggleWindowOutput{}, fmt.Errorf("toggle failed: %w", err)
	}
	return nil, ToggleWindowOutput{
		Action:   data.Action,
		Before:   windowState(data.Before),
		Failures: data.Failures,
	}, nil
}

func (s *Server) handleWindowStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ WindowStatusInput) (*mcpsdk.CallToolResult, WindowStatusOutput, error) {
	status, err := s.daemon.GetStatus()
	if err != nil {
		return nil, WindowStatusOutput{}, fmt.Errorf("status failed: %w", err)
	}
	return nil, WindowStatusOutput{
		Hotkey:        status.Hotkey,
		UptimeSeconds: status.UptimeSeconds,
		Presses:       status.Presses,
		Toggles:       status.Toggles,
		LastAction:    status.LastAction,
		Window:        windowState(status.Window),
		StorePath:     status.StorePath,
		StoreKeys:     status.StoreKeys,
	}, nil
}

func (s *Server) handleStoreGet(_ context.Context, _ *mcpsdk.CallToolRequest, args StoreGetInput) (*mcpsdk.CallToolResult, StoreGetOutput, error) {
	key, err := requireKey(args.Key)
	if err != nil {
		return nil, StoreGetOutput{}, err
	}
	raw, err := s.daemon.StoreGet(key)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, StoreGetOutput{Key: key, Found: false}, nil
		}
		return nil, StoreGetOutput{}, err
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, StoreGetOutput{}, fmt.Errorf("stored value for %q is not valid JSON: %w", key, err)
	}
	return nil, StoreGetOutput{Key: key, Found: true, Value: value}, nil
}

func (s *Server) handleStoreSet(_ context.Context, _ *mcpsdk.CallToolRequest, args StoreSetInput) (*mcpsdk.CallToolResult, StoreSetOutput, error) {
	key, err := requireKey(args.Key)
	if err != nil {
		return nil, StoreSetOutput{}, err
	}
	raw, err := json.Marshal(args.Value)
	if err != nil {
		return nil, StoreSetOutput{}, fmt.Errorf("failed to encode value: %w", err)
	}
	if err := s.daemon.StoreSet(key, raw); err != nil {
		return nil, StoreSetOutput{}, err
	}
	return nil, StoreSetOutput{Key: key}, nil
}

func (s *Server) handleStoreDelete(_ context.Context, _ *mcpsdk.CallToolRequest, args StoreDeleteInput) (*mcpsdk.CallToolResult, StoreDeleteOutput, error) {
	key, err := requireKey(args.Key)
	if err != nil {
		return nil, StoreDeleteOutput{}, err
	}
	if err := s.daemon.StoreDelete(key); err != nil {
		if store.IsNotFound(err) {
			return nil, StoreDeleteOutput{Key: key, Deleted: false}, nil
		}
		return nil, StoreDeleteOutput{}, err
	}
	return nil, StoreDeleteOutput{Key: key, Deleted: true}, nil
}

func (s *Server) handleStoreList(_ context.Context, _ *mcpsdk.CallToolRequest, args StoreListInput) (*mcpsdk.CallToolResult, StoreListOutput, error) {
	keys, err := s.daemon.StoreList()
	if err != nil {
		return nil, StoreListOutput{}, err
	}
	out := StoreListOutput{Keys: make([]string, 0, len(keys))}
	for _, k := range keys {
		if strings.HasPrefix(k, args.Prefix) {
			out.Keys = append(out.Keys, k)
		}
	}
	return nil, out, nil
}

func requireKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("key is required")
	}
	return key, nil
}

func windowState(w ipc.WindowData) WindowState {
	return WindowState{
		Label:     w.Label,
		Exists:    w.Exists,
		Visible:   w.Visible,
		Minimized: w.Minimized,
		Error:     w.Error,
	}
}
