// Package foreground disables the switch-windows hotkey while a blacklisted
// application has focus, so that application receives the key combination.
package foreground

import (
	"log/slog"
	"strings"

	"github.com/1broseidon/wincycle/internal/command"
)

// Registrar turns a hotkey binding on and off.
type Registrar interface {
	Enable(id command.BindingID) error
	Disable(id command.BindingID) error
}

// Guard tracks the foreground executable and toggles one binding. It is
// driven by the control loop and is not safe for concurrent use.
type Guard struct {
	reg       Registrar
	binding   command.BindingID
	blacklist map[string]bool
	last      string
	active    bool
	pending   bool
	logger    *slog.Logger
}

// NewGuard creates a guard for binding, which is assumed to be registered.
func NewGuard(reg Registrar, binding command.BindingID, blacklist []string, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Guard{
		reg:     reg,
		binding: binding,
		active:  true,
		logger:  logger,
	}
	g.blacklist = normalizeList(blacklist)
	return g
}

// Active reports whether the binding is currently registered.
func (g *Guard) Active() bool {
	return g.active
}

// Foreground returns the last observed executable name.
func (g *Guard) Foreground() string {
	return g.last
}

// Pending reports whether the last toggle failed and is waiting for a retry.
func (g *Guard) Pending() bool {
	return g.pending
}

// Observe handles a focus change. Repeated observations of the same
// executable are ignored unless the previous toggle failed.
func (g *Guard) Observe(executable string) {
	exe := strings.ToLower(strings.TrimSpace(executable))
	if exe == g.last && !g.pending {
		return
	}
	g.last = exe
	g.apply()
}

// UpdateBlacklist replaces the blacklist and re-evaluates the current
// foreground executable against it.
func (g *Guard) UpdateBlacklist(blacklist []string) {
	g.blacklist = normalizeList(blacklist)
	if g.last != "" {
		g.apply()
	}
}

func (g *Guard) apply() {
	blocked := g.blacklist[g.last]
	g.pending = false
	switch {
	case blocked && g.active:
		if err := g.reg.Disable(g.binding); err != nil {
			g.logger.Error("failed to disable hotkey", "binding", g.binding, "executable", g.last, "error", err)
			g.pending = true
			return
		}
		g.active = false
		g.logger.Info("hotkey disabled for blacklisted app", "binding", g.binding, "executable", g.last)
	case !blocked && !g.active:
		if err := g.reg.Enable(g.binding); err != nil {
			g.logger.Error("failed to enable hotkey", "binding", g.binding, "executable", g.last, "error", err)
			g.pending = true
			return
		}
		g.active = true
		g.logger.Info("hotkey enabled", "binding", g.binding, "executable", g.last)
	}
}

func normalizeList(list []string) map[string]bool {
	out := make(map[string]bool, len(list))
	for _, name := range list {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			out[name] = true
		}
	}
	return out
}
