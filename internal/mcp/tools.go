package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/wincycle/internal/discovery"
	"github.com/1broseidon/wincycle/internal/ipc"
)

// handleGetStatus reports an unreachable daemon as Running=false rather
// than a tool error, so callers can check liveness.
func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	status, err := s.daemon.GetStatus()
	if err != nil {
		s.logger.Debug("mcp get_status: daemon unreachable", "error", err)
		return nil, GetStatusOutput{Running: false, Error: err.Error()}, nil
	}
	return nil, GetStatusOutput{
		Running:       true,
		PID:           status.PID,
		UptimeSeconds: status.UptimeSeconds,
		HookInstalled: status.HookInstalled,
		HotkeyActive:  status.HotkeyActive,
		WindowsHotkey: status.WindowsHotkey,
		AppsHotkey:    status.AppsHotkey,
		Foreground:    status.Foreground,
		Activations:   status.Activations,
		Failures:      status.Failures,
	}, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	groupByApp := true
	if args.GroupByApp != nil {
		groupByApp = *args.GroupByApp
	}

	data, err := s.daemon.ListWindows(groupByApp)
	if err != nil {
		return nil, ListWindowsOutput{}, fmt.Errorf("list_windows: %w", err)
	}

	out := ListWindowsOutput{Apps: make([]AppInfo, 0, len(data.Groups))}
	for _, g := range data.Groups {
		app := AppInfo{
			Executable: discovery.ExecutableName(g.Key),
			Windows:    make([]WindowInfo, 0, len(g.Windows)),
		}
		for _, w := range g.Windows {
			app.Windows = append(app.Windows, WindowInfo{ID: fmt.Sprintf("0x%x", w.ID), Title: w.Title})
		}
		out.WindowCount += len(app.Windows)
		out.Apps = append(out.Apps, app)
	}
	s.logger.Debug("mcp list_windows", "apps", len(out.Apps), "windows", out.WindowCount)
	return nil, out, nil
}

func (s *Server) handleSwitchWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args SwitchInput) (*mcpsdk.CallToolResult, SwitchOutput, error) {
	return s.switchGesture(ipc.GestureWindows, args.Reverse)
}

func (s *Server) handleSwitchApp(_ context.Context, _ *mcpsdk.CallToolRequest, args SwitchInput) (*mcpsdk.CallToolResult, SwitchOutput, error) {
	return s.switchGesture(ipc.GestureApps, args.Reverse)
}

func (s *Server) switchGesture(gesture string, reverse bool) (*mcpsdk.CallToolResult, SwitchOutput, error) {
	if err := s.daemon.Switch(gesture, reverse); err != nil {
		return nil, SwitchOutput{}, fmt.Errorf("switch %s: %w", gesture, err)
	}
	s.logger.Debug("mcp switch", "gesture", gesture, "reverse", reverse)
	return nil, SwitchOutput{Gesture: gesture, Reverse: reverse, Queued: true}, nil
}

func (s *Server) handleReloadConfig(_ context.Context, _ *mcpsdk.CallToolRequest, _ ReloadConfigInput) (*mcpsdk.CallToolResult, ReloadConfigOutput, error) {
	if err := s.daemon.Reload(); err != nil {
		return nil, ReloadConfigOutput{}, fmt.Errorf("reload_config: %w", err)
	}
	return nil, ReloadConfigOutput{Reloaded: true}, nil
}
