package mcp

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	Running       bool   `json:"running"`
	PID           int    `json:"pid,omitempty"`
	UptimeSeconds int64  `json:"uptime_seconds,omitempty"`
	HookInstalled bool   `json:"hook_installed"`
	HotkeyActive  bool   `json:"hotkey_active"`
	WindowsHotkey string `json:"windows_hotkey,omitempty"`
	AppsHotkey    string `json:"apps_hotkey,omitempty"`
	Foreground    string `json:"foreground,omitempty"`
	Activations   uint64 `json:"activations"`
	Failures      uint64 `json:"failures"`
	Error         string `json:"error,omitempty"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	GroupByApp *bool `json:"group_by_app,omitempty" jsonschema:"Group windows by executable (default: true)"`
}

// WindowInfo describes one switchable window.
type WindowInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// AppInfo is one executable's windows, frontmost first.
type AppInfo struct {
	Executable string       `json:"executable"`
	Windows    []WindowInfo `json:"windows"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Apps        []AppInfo `json:"apps"`
	WindowCount int       `json:"window_count"`
}

// SwitchInput is the input for the switch_window and switch_app tools.
type SwitchInput struct {
	Reverse bool `json:"reverse,omitempty" jsonschema:"Move backwards instead of forwards"`
}

// SwitchOutput is the output for the switch_window and switch_app tools.
type SwitchOutput struct {
	Gesture string `json:"gesture"`
	Reverse bool   `json:"reverse"`
	Queued  bool   `json:"queued"`
}

// ReloadConfigInput is the input for the reload_config tool.
type ReloadConfigInput struct{}

// ReloadConfigOutput is the output for the reload_config tool.
type ReloadConfigOutput struct {
	Reloaded bool `json:"reloaded"`
}
