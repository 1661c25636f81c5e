package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/1broseidon/wincycle/internal/command"
	"github.com/1broseidon/wincycle/internal/discovery"
	"github.com/1broseidon/wincycle/internal/hotkeys"
)

const (
	DefaultWindowsHotkey    = "alt + `"
	DefaultAppsHotkey       = "alt + tab"
	DefaultForegroundPollMS = 100

	minForegroundPollMS = 20
	maxForegroundPollMS = 5000
)

// SwitchWindows configures the "next window of the focused app" gesture.
type SwitchWindows struct {
	Hotkey             string   `yaml:"hotkey"`
	IgnoreMinimized    bool     `yaml:"ignore_minimized"`
	OnlyCurrentDesktop bool     `yaml:"only_current_desktop"`
	Blacklist          []string `yaml:"blacklist"` // executable names, case-insensitive
}

// SwitchApps configures the "next app" picker gesture.
type SwitchApps struct {
	Enable             bool   `yaml:"enable"`
	Hotkey             string `yaml:"hotkey"`
	IgnoreMinimized    bool   `yaml:"ignore_minimized"`
	OnlyCurrentDesktop bool   `yaml:"only_current_desktop"`
}

// Config is the daemon configuration.
type Config struct {
	LogLevel         string        `yaml:"log_level"`          // debug, info, warn, error
	LogFile          string        `yaml:"log_file"`           // empty = stderr
	ForegroundPollMS int           `yaml:"foreground_poll_ms"` // watcher tick
	MinWindowWidth   int           `yaml:"min_window_width"`
	MinWindowHeight  int           `yaml:"min_window_height"`
	WatchConfig      bool          `yaml:"watch_config"`
	SwitchWindows    SwitchWindows `yaml:"switch_windows"`
	SwitchApps       SwitchApps    `yaml:"switch_apps"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:         "info",
		ForegroundPollMS: DefaultForegroundPollMS,
		MinWindowWidth:   discovery.DefaultMinWidth,
		MinWindowHeight:  discovery.DefaultMinHeight,
		WatchConfig:      true,
		SwitchWindows: SwitchWindows{
			Hotkey:             DefaultWindowsHotkey,
			OnlyCurrentDesktop: true,
			Blacklist:          []string{},
		},
		SwitchApps: SwitchApps{
			Hotkey:             DefaultAppsHotkey,
			OnlyCurrentDesktop: true,
		},
	}
}

// ValidationError points at the offending key and, when loaded from a
// file, its position.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	if c.ForegroundPollMS < minForegroundPollMS || c.ForegroundPollMS > maxForegroundPollMS {
		return &ValidationError{Path: "foreground_poll_ms", Err: fmt.Errorf("foreground_poll_ms must be between %d and %d", minForegroundPollMS, maxForegroundPollMS)}
	}
	if c.MinWindowWidth < 0 {
		return &ValidationError{Path: "min_window_width", Err: fmt.Errorf("min_window_width must be >= 0")}
	}
	if c.MinWindowHeight < 0 {
		return &ValidationError{Path: "min_window_height", Err: fmt.Errorf("min_window_height must be >= 0")}
	}
	for i, name := range c.SwitchWindows.Blacklist {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: fmt.Sprintf("switch_windows.blacklist[%d]", i), Err: fmt.Errorf("executable name must not be empty")}
		}
	}

	if _, err := c.Bindings(); err != nil {
		return err
	}
	return nil
}

// Bindings parses the enabled hotkeys. Switch windows always comes first.
func (c *Config) Bindings() ([]hotkeys.Binding, error) {
	windows, err := hotkeys.ParseBinding(command.SwitchWindows, c.SwitchWindows.Hotkey)
	if err != nil {
		return nil, &ValidationError{Path: "switch_windows.hotkey", Err: err}
	}
	bindings := []hotkeys.Binding{windows}
	if !c.SwitchApps.Enable {
		return bindings, nil
	}

	apps, err := hotkeys.ParseBinding(command.SwitchApps, c.SwitchApps.Hotkey)
	if err != nil {
		return nil, &ValidationError{Path: "switch_apps.hotkey", Err: err}
	}
	if apps.String() == windows.String() {
		return nil, &ValidationError{Path: "switch_apps.hotkey", Err: fmt.Errorf("%q is already bound to switch_windows", c.SwitchApps.Hotkey)}
	}
	apps.Picker = true
	return append(bindings, apps), nil
}

// WindowsOptions returns the discovery options for the switch-windows gesture.
func (c *Config) WindowsOptions() discovery.Options {
	opts := c.baseOptions()
	opts.GroupByApp = true
	opts.IgnoreMinimized = c.SwitchWindows.IgnoreMinimized
	opts.OnlyCurrentDesktop = c.SwitchWindows.OnlyCurrentDesktop
	return opts
}

// AppsOptions returns the discovery options for the switch-apps gesture.
func (c *Config) AppsOptions() discovery.Options {
	opts := c.baseOptions()
	opts.GroupByApp = true
	opts.IgnoreMinimized = c.SwitchApps.IgnoreMinimized
	opts.OnlyCurrentDesktop = c.SwitchApps.OnlyCurrentDesktop
	return opts
}

func (c *Config) baseOptions() discovery.Options {
	opts := discovery.DefaultOptions()
	opts.MinWidth = c.MinWindowWidth
	opts.MinHeight = c.MinWindowHeight
	return opts
}

// PollInterval returns the foreground watcher tick.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.ForegroundPollMS) * time.Millisecond
}

// HotkeysEqual reports whether two configs bind the same gestures.
func (c *Config) HotkeysEqual(other *Config) bool {
	a, errA := c.Bindings()
	b, errB := other.Bindings()
	if errA != nil || errB != nil || len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].String() != b[i].String() {
			return false
		}
	}
	return true
}
