//go:build linux

package startup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func useTempAutostart(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "autostart")
	prev := autostartDir
	autostartDir = func() string { return dir }
	t.Cleanup(func() { autostartDir = prev })
	return dir
}

func TestEnableDisable(t *testing.T) {
	dir := useTempAutostart(t)

	state, err := Status()
	if err != nil || state.Enabled {
		t.Fatalf("initial Status = %+v, %v", state, err)
	}

	if err := Enable("/opt/win cycle/wincycle"); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "wincycle.desktop"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(data), "[Desktop Entry]\n") {
		t.Errorf("entry does not start with the group header:\n%s", data)
	}

	state, err = Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !state.Enabled || state.Command != `"/opt/win cycle/wincycle" daemon` {
		t.Errorf("Status = %+v", state)
	}

	if err := Disable(); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	if err := Disable(); err != nil {
		t.Fatalf("second Disable: %v", err)
	}
	if state, _ := Status(); state.Enabled {
		t.Errorf("still enabled after Disable")
	}
}

func TestStatusHonorsHidden(t *testing.T) {
	dir := useTempAutostart(t)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	entry := desktopEntry("/usr/bin/wincycle") + "Hidden=true\n"
	if err := os.WriteFile(filepath.Join(dir, "wincycle.desktop"), []byte(entry), 0o644); err != nil {
		t.Fatal(err)
	}

	state, err := Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if state.Enabled {
		t.Errorf("hidden entry reported as enabled")
	}
}

func TestCommandLine(t *testing.T) {
	tests := []struct {
		exe  string
		want string
	}{
		{exe: "/usr/bin/wincycle", want: "/usr/bin/wincycle daemon"},
		{exe: `C:\Program Files\wincycle\wincycle.exe`, want: `"C:\Program Files\wincycle\wincycle.exe" daemon`},
	}
	for _, tt := range tests {
		if got := CommandLine(tt.exe); got != tt.want {
			t.Errorf("CommandLine(%q) = %q, want %q", tt.exe, got, tt.want)
		}
	}
}
