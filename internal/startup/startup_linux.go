//go:build linux

package startup

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// autostartDir is overridden in tests.
var autostartDir = func() string {
	return filepath.Join(xdg.ConfigHome, "autostart")
}

func desktopPath() string {
	return filepath.Join(autostartDir(), appName+".desktop")
}

// desktopEntry renders an XDG autostart entry.
func desktopEntry(exe string) string {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	b.WriteString("Name=wincycle\n")
	b.WriteString("Comment=Cycle through windows of the focused application\n")
	fmt.Fprintf(&b, "Exec=%s\n", CommandLine(exe))
	b.WriteString("Terminal=false\n")
	b.WriteString("X-GNOME-Autostart-enabled=true\n")
	return b.String()
}

// Enable writes the autostart desktop entry for exe.
func Enable(exe string) error {
	path := desktopPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create autostart dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(desktopEntry(exe)), 0o644); err != nil {
		return fmt.Errorf("write autostart entry: %w", err)
	}
	return nil
}

// Disable removes the autostart entry. Removing a missing entry is not an error.
func Disable() error {
	if err := os.Remove(desktopPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove autostart entry: %w", err)
	}
	return nil
}

// Status reports whether the autostart entry exists and its Exec line.
func Status() (State, error) {
	path := desktopPath()
	state := State{Location: path}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return state, nil
	}
	if err != nil {
		return state, fmt.Errorf("open autostart entry: %w", err)
	}
	defer f.Close()

	state.Enabled = true
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if cmd, ok := strings.CutPrefix(line, "Exec="); ok {
			state.Command = cmd
		}
		if line == "Hidden=true" || line == "X-GNOME-Autostart-enabled=false" {
			state.Enabled = false
		}
	}
	if err := scanner.Err(); err != nil {
		return state, fmt.Errorf("read autostart entry: %w", err)
	}
	return state, nil
}
