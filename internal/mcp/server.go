// Package mcp exposes the running switcher daemon as Model Context Protocol
// tools over stdio, so an assistant can inspect and drive window switching.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/wincycle/internal/ipc"
)

const (
	ServerName    = "wincycle"
	ServerVersion = "0.1.0"
)

// Daemon is the subset of the IPC client the tools call.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	ListWindows(groupByApp bool) (*ipc.WindowsData, error)
	Switch(gesture string, reverse bool) error
	Reload() error
}

// Server is the MCP server for wincycle.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    *slog.Logger
}

// NewServer creates a server that forwards tool calls to daemon.
func NewServer(daemon Daemon, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{daemon: daemon, logger: logger}
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
		Name:        "get_status",
		Description: "Report whether the wincycle daemon is running, its hotkeys, whether the hotkey is currently suppressed by the blacklist, and switch counters.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List the switchable windows the daemon currently sees, grouped by executable in front-to-back order. Set group_by_app to false to list every window as its own entry.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "switch_window",
		Description: "Switch to the next window of the focused application, exactly as one press and release of the window hotkey would. Set reverse to go to the previous window.",
	}, s.handleSwitchWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "switch_app",
		Description: "Switch to the next application, exactly as one press and release of the app hotkey would. Requires switch_apps.enable in the daemon config.",
	}, s.handleSwitchApp)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reload_config",
		Description: "Ask the daemon to re-read its config file. Returns the validation error if the new file is rejected; the running config is kept in that case.",
	}, s.handleReloadConfig)
}
