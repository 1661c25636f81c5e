package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/wincycle/internal/command"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	bindings, err := cfg.Bindings()
	if err != nil {
		t.Fatalf("Bindings: %v", err)
	}
	if len(bindings) != 1 || bindings[0].ID != command.SwitchWindows {
		t.Fatalf("expected only the switch-windows binding by default, got %v", bindings)
	}
	if bindings[0].String() != "alt+`" {
		t.Errorf("default hotkey = %q, want alt+`", bindings[0].String())
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "config.yaml")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Exists {
		t.Errorf("expected Exists=false for a missing file")
	}
	if res.Config.ForegroundPollMS != DefaultForegroundPollMS {
		t.Errorf("foreground_poll_ms = %d, want %d", res.Config.ForegroundPollMS, DefaultForegroundPollMS)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "# empty\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !res.Exists {
		t.Errorf("expected Exists=true")
	}
	if res.Config.SwitchWindows.Hotkey != DefaultWindowsHotkey {
		t.Errorf("hotkey = %q, want default", res.Config.SwitchWindows.Hotkey)
	}
}

func TestLoadFromPath_PartialSectionKeepsDefaults(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"switch_windows:",
		"  blacklist: [\"Code.exe\", \"mintty.exe\"]",
		"switch_apps:",
		"  enable: true",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.SwitchWindows.Hotkey != DefaultWindowsHotkey || !cfg.SwitchWindows.OnlyCurrentDesktop {
		t.Errorf("switch_windows defaults lost: %+v", cfg.SwitchWindows)
	}
	if len(cfg.SwitchWindows.Blacklist) != 2 {
		t.Errorf("blacklist = %v", cfg.SwitchWindows.Blacklist)
	}

	bindings, err := cfg.Bindings()
	if err != nil {
		t.Fatalf("Bindings: %v", err)
	}
	if len(bindings) != 2 || bindings[1].ID != command.SwitchApps || !bindings[1].Picker {
		t.Fatalf("expected switch-apps picker binding, got %+v", bindings)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := writeConfig(t, "unknown_key: 1\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasPosition(t *testing.T) {
	path := writeConfig(t, "log_level: info\nforeground_poll_ms: 5\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "foreground_poll_ms" {
		t.Errorf("path = %q", verr.Path)
	}
	if verr.Source.File != path || verr.Source.Line != 2 {
		t.Errorf("source = %+v, want %s line 2", verr.Source, path)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"poll too fast", func(c *Config) { c.ForegroundPollMS = 1 }, "foreground_poll_ms"},
		{"poll too slow", func(c *Config) { c.ForegroundPollMS = 60000 }, "foreground_poll_ms"},
		{"negative width", func(c *Config) { c.MinWindowWidth = -1 }, "min_window_width"},
		{"empty blacklist entry", func(c *Config) { c.SwitchWindows.Blacklist = []string{"a.exe", " "} }, "switch_windows.blacklist[1]"},
		{"unknown key", func(c *Config) { c.SwitchWindows.Hotkey = "alt + nosuchkey" }, "switch_windows.hotkey"},
		{"unknown modifier", func(c *Config) { c.SwitchWindows.Hotkey = "hyper + tab" }, "switch_windows.hotkey"},
		{"apps hotkey invalid", func(c *Config) {
			c.SwitchApps.Enable = true
			c.SwitchApps.Hotkey = "tab"
		}, "switch_apps.hotkey"},
		{"duplicate hotkeys", func(c *Config) {
			c.SwitchApps.Enable = true
			c.SwitchApps.Hotkey = " ALT+` "
		}, "already bound"},
		{"disabled apps hotkey ignored", func(c *Config) { c.SwitchApps.Hotkey = "garbage" }, ""},
		{"warning alias", func(c *Config) { c.LogLevel = "warning" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinWindowWidth = 10
	cfg.SwitchWindows.IgnoreMinimized = true
	cfg.SwitchApps.OnlyCurrentDesktop = false

	w := cfg.WindowsOptions()
	if !w.GroupByApp || !w.IgnoreMinimized || !w.OnlyCurrentDesktop || w.MinWidth != 10 {
		t.Errorf("WindowsOptions() = %+v", w)
	}
	a := cfg.AppsOptions()
	if a.IgnoreMinimized || a.OnlyCurrentDesktop || a.MinWidth != 10 {
		t.Errorf("AppsOptions() = %+v", a)
	}
	if cfg.PollInterval() != 100*time.Millisecond {
		t.Errorf("PollInterval() = %v", cfg.PollInterval())
	}
}

func TestHotkeysEqual(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()
	b.SwitchWindows.Hotkey = "Alt+`"
	if !a.HotkeysEqual(b) {
		t.Errorf("expected equivalent spellings to compare equal")
	}
	b.SwitchApps.Enable = true
	if a.HotkeysEqual(b) {
		t.Errorf("expected enabling switch_apps to change the bindings")
	}
}

func TestWriteDefault_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wincycle", "config.yaml")
	if err := WriteDefault(path, false); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	if err := WriteDefault(path, false); err == nil {
		t.Fatalf("expected second WriteDefault to refuse overwriting")
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load written default: %v", err)
	}
	if !res.Config.HotkeysEqual(DefaultConfig()) || res.Config.ForegroundPollMS != DefaultForegroundPollMS {
		t.Errorf("written defaults differ: %+v", res.Config)
	}
}

func TestWatch_CallsOnChange(t *testing.T) {
	path := writeConfig(t, "log_level: info\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, nil, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// Rewrite until seen; the interval exceeds the debounce so a write
	// does not keep postponing the callback.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(2 * watchDebounce)
	defer tick.Stop()
	for {
		if err := os.WriteFile(path, []byte("log_level: debug\n"), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
		select {
		case <-changed:
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Watch returned %v", err)
			}
			return
		case <-deadline:
			t.Fatalf("onChange was not called")
		case <-tick.C:
		}
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wincycle", "config.yaml")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, nil, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// The first writes fail until Watch has created the directory.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(2 * watchDebounce)
	defer tick.Stop()
	for {
		_ = os.WriteFile(path, []byte("log_level: debug\n"), 0644)
		select {
		case <-changed:
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Watch returned %v", err)
			}
			return
		case err := <-done:
			t.Fatalf("Watch stopped early: %v", err)
		case <-deadline:
			t.Fatalf("onChange was not called for a file created after start")
		case <-tick.C:
		}
	}
}
