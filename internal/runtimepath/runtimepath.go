// Package runtimepath locates the daemon's per-user runtime files.
package runtimepath

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/adrg/xdg"
)

const appName = "wincycle"

// Dir returns the per-user runtime directory, creating it with mode 0700.
// Priority:
// 1) $XDG_RUNTIME_DIR/wincycle (if set)
// 2) the platform runtime directory reported by xdg
// 3) <tmp>/wincycle-runtime-<uid>
func Dir() (string, error) {
	base := os.Getenv("XDG_RUNTIME_DIR")
	if base == "" {
		base = xdg.RuntimeDir
	}
	if base != "" {
		dir := filepath.Join(base, appName)
		if err := os.MkdirAll(dir, 0700); err == nil {
			return dir, nil
		}
	}

	dir := filepath.Join(os.TempDir(), fmt.Sprintf("%s-runtime-%d", appName, os.Getuid()))
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return dir, nil
}

// SocketPath returns the daemon IPC socket path.
func SocketPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName+".sock"), nil
}

// LockPath returns the single-instance lock file path.
func LockPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName+".lock"), nil
}

var invalidUsernameRune = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeUsername normalizes a user name for use in pipe and mutex names.
func SanitizeUsername(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return invalidUsernameRune.ReplaceAllString(value, "_")
}

// PipeName returns the named pipe path for username.
func PipeName(username string) string {
	return `\\.\pipe\` + appName + "-" + SanitizeUsername(username)
}

// MutexName returns the single-instance mutex name for username.
func MutexName(username string) string {
	return `Local\` + appName + "-" + SanitizeUsername(username)
}

// Username returns the current login name, preferring USERNAME.
func Username() string {
	if name := strings.TrimSpace(os.Getenv("USERNAME")); name != "" {
		return name
	}
	if current, err := user.Current(); err == nil {
		return current.Username
	}
	return ""
}
