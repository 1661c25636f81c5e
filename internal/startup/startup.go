// Package startup registers the daemon to launch at login.
package startup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const appName = "wincycle"

// ErrUnsupported is returned on platforms without a login-item mechanism.
var ErrUnsupported = errors.New("startup: launch at login is not supported on this platform")

// State describes the current registration.
type State struct {
	Enabled bool
	Command string
	// Location is the registry value or file holding the entry.
	Location string
}

// CommandLine returns the command that starts the daemon from exe.
func CommandLine(exe string) string {
	if strings.ContainsAny(exe, " \t") {
		exe = `"` + exe + `"`
	}
	return exe + " daemon"
}

// Executable returns the absolute path of the running binary.
func Executable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return exe, nil
}
