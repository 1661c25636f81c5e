//go:build windows

package startup

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const runKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`

// Enable adds a per-user Run entry for exe.
func Enable(exe string) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open Run key: %w", err)
	}
	defer key.Close()

	if err := key.SetStringValue(appName, CommandLine(exe)); err != nil {
		return fmt.Errorf("write Run value: %w", err)
	}
	return nil
}

// Disable removes the Run entry. Removing a missing entry is not an error.
func Disable() error {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open Run key: %w", err)
	}
	defer key.Close()

	if err := key.DeleteValue(appName); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("delete Run value: %w", err)
	}
	return nil
}

// Status reports whether the Run entry exists.
func Status() (State, error) {
	state := State{Location: `HKCU\` + runKeyPath + `\` + appName}
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.QUERY_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return state, nil
	}
	if err != nil {
		return state, fmt.Errorf("open Run key: %w", err)
	}
	defer key.Close()

	value, _, err := key.GetStringValue(appName)
	if errors.Is(err, registry.ErrNotExist) {
		return state, nil
	}
	if err != nil {
		return state, fmt.Errorf("read Run value: %w", err)
	}
	state.Enabled = true
	state.Command = value
	return state, nil
}
