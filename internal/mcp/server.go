package mcp

import (
	"context"
	"encoding/json"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/frogmemo/frogmemo/internal/ipc"
)

const (
	ServerName    = "frogmemo"
	ServerVersion = "0.1.0"
)

// Daemon is the subset of the IPC client the tools call.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	Toggle() (*ipc.ToggleData, error)
	StoreGet(key string) (json.RawMessage, error)
	StoreSet(key string, value json.RawMessage) error
	StoreDelete(key string) error
	StoreList() ([]string, error)
}

// Server is the MCP server exposing the window toggle, settings store and
// memo blocks.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
}

// NewServer creates a new MCP server that forwards tool calls to daemon.
func NewServer(daemon Daemon) *Server {
	s := &Server{daemon: daemon}
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
		Name:        "toggle_window",
		Description: "Toggle the frogmemo window exactly as the global hotkey does: create it if missing, restore it if minimized, minimize it if visible, otherwise show and focus it. Returns the action taken and the state observed before acting.",
	}, s.handleToggleWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_status",
		Description: "Report the daemon's hotkey, press and toggle counters, the last action, and a fresh observation of the managed window.",
	}, s.handleWindowStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "store_get",
		Description: "Read one key from the persistent JSON settings store. Missing keys return found=false.",
	}, s.handleStoreGet)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "store_set",
		Description: "Write any JSON value under a key in the settings store. The store is saved to disk immediately.",
	}, s.handleStoreSet)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "store_delete",
		Description: "Remove a key from the settings store. Deleting a missing key reports deleted=false.",
	}, s.handleStoreDelete)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "store_list",
		Description: "List settings store keys in sorted order, optionally filtered by prefix.",
	}, s.handleStoreList)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "memo_list",
		Description: "List memo blocks (id, title, content, tags, format, showLineNumbers, height) and the available tags, optionally only those carrying one tag.",
	}, s.handleMemoList)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "memo_search",
		Description: "Search memo blocks case-insensitively in their titles, contents, tags, or all three.",
	}, s.handleMemoSearch)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "memo_format",
		Description: "Beautify a memo block in place (by id) or a piece of text. Supports json, yaml, javascript, typescript, css, html, xml, sql, markdown and python; auto detects the format when none is given.",
	}, s.handleMemoFormat)
}
