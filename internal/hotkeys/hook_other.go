//go:build !linux && !windows

package hotkeys

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/wincycle/internal/command"
	"github.com/1broseidon/wincycle/internal/platform"
)

// Hook is unavailable on this platform.
type Hook struct {
	interp *Interpreter
}

// NewHook returns a hook whose Start always fails.
func NewHook(_ platform.Backend, interp *Interpreter, _ *slog.Logger) *Hook {
	return &Hook{interp: interp}
}

// Start reports that global keyboard hooks are unsupported.
func (h *Hook) Start() error {
	return fmt.Errorf("keyboard hook: %w", platform.ErrUnsupported)
}

// Stop is a no-op.
func (h *Hook) Stop() error { return nil }

// Enable toggles the interpreter flag only.
func (h *Hook) Enable(id command.BindingID) error {
	h.interp.SetEnabled(id, true)
	return nil
}

// Disable toggles the interpreter flag only.
func (h *Hook) Disable(id command.BindingID) error {
	h.interp.SetEnabled(id, false)
	return nil
}
